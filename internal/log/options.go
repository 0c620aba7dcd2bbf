package log

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Options configures the zap logger.
type Options struct {
	// Name is prefixed to every entry as the logger name.
	Name string `yaml:"name"`

	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "console" or "json".
	Format string `yaml:"format"`

	EnableColor   bool `yaml:"enable_color"`
	DisableCaller bool `yaml:"disable_caller"`
	CallerSkip    int  `yaml:"caller_skip"`

	// OutputPaths lists zap sinks, e.g. "stderr" or a file path.
	OutputPaths []string `yaml:"output_paths"`
}

// NewOptions returns the defaults used when no log section is configured.
func NewOptions() *Options {
	return &Options{
		Level:       "info",
		Format:      "console",
		EnableColor: true,
		CallerSkip:  1,
		OutputPaths: []string{"stderr"},
	}
}

// Validate reports option values zap cannot use.
func (o *Options) Validate() []error {
	var errs []error
	switch o.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log format %q must be console or json", o.Format))
	}
	switch o.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log level %q is not supported", o.Level))
	}
	if o.CallerSkip < 0 {
		errs = append(errs, fmt.Errorf("log caller skip must be >= 0"))
	}
	return errs
}

// AddFlags binds the options to fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Name, "log.name", o.Name, "Optional logger name.")
	fs.StringVar(&o.Level, "log.level", o.Level, "Minimum log level (debug, info, warn, error).")
	fs.StringVar(&o.Format, "log.format", o.Format, "Log output format (console or json).")
	fs.BoolVar(&o.EnableColor, "log.enable-color", o.EnableColor, "Colorize levels in console format.")
	fs.BoolVar(&o.DisableCaller, "log.disable-caller", o.DisableCaller, "Omit file and line from entries.")
	fs.StringSliceVar(&o.OutputPaths, "log.output-paths", o.OutputPaths, "Log sinks (stderr, stdout or file paths).")
}
