package fsmtable

import (
	"context"
	"fmt"
)

// Result tells whether a dispatch changed state.
type Result int

const (
	ResultTransitioned Result = iota + 1
	ResultRejected
)

func (r Result) String() string {
	switch r {
	case ResultTransitioned:
		return "transitioned"
	case ResultRejected:
		return "rejected"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// RejectReason explains a rejected dispatch.
type RejectReason int

const (
	// ReasonNoRule: no rule matches (current state, event).
	ReasonNoRule RejectReason = iota + 1
	// ReasonGuardsFailed: rules match but every guard returned false.
	ReasonGuardsFailed
)

func (r RejectReason) String() string {
	switch r {
	case ReasonNoRule:
		return "no rule"
	case ReasonGuardsFailed:
		return "guards failed"
	default:
		return fmt.Sprintf("RejectReason(%d)", int(r))
	}
}

// Outcome is the value returned by Dispatch. A rejection is a regular
// outcome, not an error.
type Outcome struct {
	Result Result
	Event  Event
	From   StateID      // state before the dispatch
	State  StateID      // state after the dispatch
	Rule   int          // position of the fired rule, -1 when rejected
	Reason RejectReason // zero when transitioned

	table *Table
}

// Transitioned reports whether a rule fired.
func (o Outcome) Transitioned() bool { return o.Result == ResultTransitioned }

// Rejected reports whether the event was rejected.
func (o Outcome) Rejected() bool { return o.Result == ResultRejected }

// StateName is the name of the state after the dispatch.
func (o Outcome) StateName() string { return o.name(o.State) }

// FromName is the name of the state before the dispatch.
func (o Outcome) FromName() string { return o.name(o.From) }

// EventName is the name of the dispatched event.
func (o Outcome) EventName() string {
	if o.table == nil {
		return fmt.Sprintf("Event(%d)", int(o.Event.ID))
	}
	return o.table.EventName(o.Event.ID)
}

func (o Outcome) name(id StateID) string {
	if o.table == nil {
		return fmt.Sprintf("State(%d)", int(id))
	}
	return o.table.StateName(id)
}

func (o Outcome) String() string {
	if o.Transitioned() {
		return fmt.Sprintf("%s -%s-> %s", o.FromName(), o.EventName(), o.StateName())
	}
	return fmt.Sprintf("no transition from state %s on event %s (%s)", o.StateName(), o.EventName(), o.Reason)
}

// Observer is told about every outcome, after hooks and actions have run.
type Observer interface {
	Observe(ctx context.Context, o Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, o Outcome)

func (f ObserverFunc) Observe(ctx context.Context, o Outcome) { f(ctx, o) }
