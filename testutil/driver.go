// Package testutil drives machines through scripted event sequences in tests.
package testutil

import (
	"context"
	"testing"

	"github.com/comalice/fsmtable"
)

// Step is one dispatch and the outcome it must produce.
type Step struct {
	Event      fsmtable.EventID
	Payload    any
	Want       fsmtable.StateID
	Transition bool // false: the event must be rejected
}

// Drive dispatches each step in order and fails tb on the first step whose
// outcome or resulting state differs from the expectation.
func Drive(tb testing.TB, ctx context.Context, m *fsmtable.Machine, steps []Step) []fsmtable.Outcome {
	tb.Helper()
	t := m.Table()
	outcomes := make([]fsmtable.Outcome, 0, len(steps))
	for i, s := range steps {
		out := m.Dispatch(ctx, fsmtable.Event{ID: s.Event, Payload: s.Payload})
		outcomes = append(outcomes, out)
		if out.Transitioned() != s.Transition {
			tb.Fatalf("step %d (%s): transitioned = %v, want %v: %v",
				i, t.EventName(s.Event), out.Transitioned(), s.Transition, out)
		}
		if m.CurrentState() != s.Want {
			tb.Fatalf("step %d (%s): state = %s, want %s",
				i, t.EventName(s.Event), t.StateName(m.CurrentState()), t.StateName(s.Want))
		}
	}
	return outcomes
}

// Cycle builds steps that send ev once per state in path, expecting a
// transition into each.
func Cycle(ev fsmtable.EventID, path ...fsmtable.StateID) []Step {
	steps := make([]Step, 0, len(path))
	for _, s := range path {
		steps = append(steps, Step{Event: ev, Want: s, Transition: true})
	}
	return steps
}
