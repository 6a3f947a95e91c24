package fsmtable

import "context"

// StateID identifies a state. The set of valid values is whatever a Table declares.
type StateID int

// EventID identifies an event kind.
type EventID int

// NoEvent is the event passed to hooks run by Start and Stop, where no
// dispatched event is involved. It can never be declared on a Table.
const NoEvent EventID = -1

// Event is a stimulus dispatched to a Machine.
type Event struct {
	ID      EventID
	Payload any
}

// Guard gates a rule. Guards must be pure and must return promptly.
type Guard func(ctx context.Context, evt Event, from StateID, to StateID) bool

// Action runs during a transition, after the exit hook and before the entry hook.
type Action func(ctx context.Context, evt Event, from StateID, to StateID)

// Hook is an entry or exit hook attached to a state.
type Hook func(ctx context.Context, evt Event, from StateID, to StateID)

// StateDef declares a state and its optional hooks.
type StateDef struct {
	ID      StateID
	Name    string
	OnEntry Hook
	OnExit  Hook
}

// EventDef declares an event kind.
type EventDef struct {
	ID   EventID
	Name string
}

// Rule is one row of the transition table.
type Rule struct {
	Name   string
	Source StateID
	Event  EventID
	Target StateID
	Guard  Guard  // nil --> always true
	Action Action // nil --> do nothing

	// Labels for export and logs; they do not affect dispatch.
	GuardName  string
	ActionName string
}

// StateOption configures a StateDef.
type StateOption func(*StateDef)

// OnEntry sets the entry hook of a state.
func OnEntry(h Hook) StateOption {
	return func(s *StateDef) {
		s.OnEntry = h
	}
}

// OnExit sets the exit hook of a state.
func OnExit(h Hook) StateOption {
	return func(s *StateDef) {
		s.OnExit = h
	}
}

// RuleOption configures a Rule.
type RuleOption func(*Rule)

// WithGuard sets the guard of a rule.
func WithGuard(g Guard) RuleOption {
	return func(r *Rule) {
		r.Guard = g
	}
}

// WithGuardName labels the guard of a rule.
func WithGuardName(name string) RuleOption {
	return func(r *Rule) {
		r.GuardName = name
	}
}

// WithAction sets the action of a rule. Repeated options run in order.
func WithAction(a Action) RuleOption {
	return func(r *Rule) {
		if a == nil {
			return
		}
		if r.Action == nil {
			r.Action = a
			return
		}
		prev := r.Action
		r.Action = func(ctx context.Context, evt Event, from, to StateID) {
			prev(ctx, evt, from, to)
			a(ctx, evt, from, to)
		}
	}
}

// WithActionName labels the action of a rule.
func WithActionName(name string) RuleOption {
	return func(r *Rule) {
		r.ActionName = name
	}
}

// Named sets a human readable rule name.
func Named(name string) RuleOption {
	return func(r *Rule) {
		r.Name = name
	}
}
