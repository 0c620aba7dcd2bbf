package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"onlinewatch/internal/log"
	"onlinewatch/internal/monitor"
)

var errOffline = errors.New("host is offline")

func newCheckCommand(root *rootOptions) *cobra.Command {
	var (
		output   string
		exitCode bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a single connectivity cycle and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := root.load(cmd.Flags())
			if err != nil {
				return err
			}
			defer log.Sync(logger)

			rt, err := newRuntime(cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			rt.app.Lifecycle().Pin()
			defer rt.app.Lifecycle().Unpin()

			res := rt.poller.RunOnce(cmd.Context())
			if res.Aborted {
				return fmt.Errorf("check aborted: %w", res.Err)
			}
			if err := printCycle(cmd.OutOrStdout(), output, res); err != nil {
				return err
			}
			if exitCode && !res.Online {
				return errOffline
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table or json).")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "Exit with an error when the host is offline.")
	return cmd
}

func printCycle(w io.Writer, format string, res monitor.CycleResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "table", "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	status := "-"
	if res.Probed {
		status = strconv.Itoa(res.StatusCode)
	}
	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("ONLINE", res.Online)
	table.AddRow("RADIO", res.RadioUp)
	table.AddRow("STATUS", status)
	table.AddRow("LATENCY", res.Latency.String())
	table.AddRow("SINCE", res.State.Since())
	_, err := fmt.Fprintln(w, table)
	return err
}
