package monitor

import (
	"context"
	"errors"

	"github.com/looplab/fsm"

	"onlinewatch/internal/models"
)

const (
	eventWentOnline  = "went_online"
	eventWentOffline = "went_offline"
)

// newPhaseMachine builds the unknown/online/offline machine. onEnter runs
// for every real phase change with the cycle that caused it.
func newPhaseMachine(onEnter func(ctx context.Context, from, to models.Phase, cycle CycleResult)) *fsm.FSM {
	all := []string{string(models.PhaseUnknown), string(models.PhaseOnline), string(models.PhaseOffline)}

	return fsm.NewFSM(
		string(models.PhaseUnknown),
		fsm.Events{
			{Name: eventWentOnline, Src: all, Dst: string(models.PhaseOnline)},
			{Name: eventWentOffline, Src: all, Dst: string(models.PhaseOffline)},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				var cycle CycleResult
				if len(e.Args) > 0 {
					cycle, _ = e.Args[0].(CycleResult)
				}
				onEnter(ctx, models.Phase(e.Src), models.Phase(e.Dst), cycle)
			},
		},
	)
}

// advancePhase fires the event matching online. Staying in the same phase is not an error.
func advancePhase(ctx context.Context, machine *fsm.FSM, online bool, cycle CycleResult) error {
	event := eventWentOffline
	if online {
		event = eventWentOnline
	}
	err := machine.Event(ctx, event, cycle)
	var noTransition fsm.NoTransitionError
	if err != nil && errors.As(err, &noTransition) {
		return nil
	}
	return err
}
