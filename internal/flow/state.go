package flow

import (
	"errors"
	"log/slog"
	"time"

	"github.com/kula-app/webhook-qualifier/internal/webhook"
)

// State is a step of the qualifier flow
type State string

// States in the order a successful run visits them; Failed is terminal and
// reachable from every non-terminal state.
const (
	StateStart          State = "start"
	StateRegistered     State = "registered"
	StateAnswerComputed State = "answer_computed"
	StateSubmitted      State = "submitted"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// Outcome is the terminal report of a run
type Outcome struct {
	// State is StateDone or StateFailed
	State State

	// Failure is the cause of StateFailed, nil otherwise
	Failure error

	// Result is the submission response; zero unless the run reached StateSubmitted
	Result webhook.Result

	// Trace lists every state the run visited, in order
	Trace []State

	// Duration is the wall time of the run
	Duration time.Duration
}

// Err returns the failure of the run, or nil if it completed
func (o Outcome) Err() error {
	if o.State == StateFailed && o.Failure == nil {
		return errors.New("flow failed")
	}
	return o.Failure
}

// LogValue summarises the outcome without the submission body
func (o Outcome) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("state", string(o.State)),
		slog.Duration("duration", o.Duration),
	}
	if o.Result.StatusCode != 0 {
		attrs = append(attrs, slog.Int("status_code", o.Result.StatusCode))
	}
	if o.Failure != nil {
		attrs = append(attrs, slog.String("error", o.Failure.Error()))
	}
	return slog.GroupValue(attrs...)
}

func (o *Outcome) transition(to State) {
	o.State = to
	o.Trace = append(o.Trace, to)
}

func (o *Outcome) fail(err error) {
	o.Failure = err
	o.transition(StateFailed)
}
