package synclog

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State constants for statekit integration.
// These must remain untyped string constants for statekit.StateID compatibility.
const (
	StateInProgress = "in_progress"
	StateSuccess    = "success"
	StatePartial    = "partial"
	StateError      = "error"
)

var concludeEvents = map[string]string{
	StateSuccess: "succeed",
	StatePartial: "degrade",
	StateError:   "fail",
}

type lifecycleContext struct{}

type lifecycle struct {
	interpreter *statekit.Interpreter[lifecycleContext]
}

func newLifecycle(initial string) (*lifecycle, error) {
	builder := statekit.NewMachine[lifecycleContext]("sync-log").
		WithInitial(statekit.StateID(initial)).
		WithContext(lifecycleContext{})

	builder.State(StateInProgress).
		On("succeed").Target(StateSuccess).
		On("degrade").Target(StatePartial).
		On("fail").Target(StateError).
		Done()

	// Final outcomes only loop back on themselves.
	builder.State(StateSuccess).
		On("succeed").Target(StateSuccess).
		Done()
	builder.State(StatePartial).
		On("degrade").Target(StatePartial).
		Done()
	builder.State(StateError).
		On("fail").Target(StateError).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build sync log state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return &lifecycle{interpreter: interpreter}, nil
}

func (l *lifecycle) current() string {
	return string(l.interpreter.State().Value)
}

func (l *lifecycle) transition(target string) error {
	event, ok := concludeEvents[target]
	if !ok {
		return fmt.Errorf("sync log cannot conclude as %q", target)
	}
	before := l.current()
	l.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if l.current() == before {
		return fmt.Errorf("%w: status is %s", ErrAlreadyConcluded, before)
	}
	return nil
}
