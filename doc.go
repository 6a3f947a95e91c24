// Package fsmtable is a small table-driven finite state machine engine.
//
// A Table is declared once with a TableBuilder: states (with optional entry
// and exit hooks), event kinds, and ordered transition rules carrying an
// optional guard and action. Build validates every reference, so a table
// naming an undeclared state or event fails at construction, never during
// dispatch.
//
// A Machine holds the current state of one instance. Dispatch is synchronous:
//
//	exit(source) -> action -> current = target -> entry(target)
//
// When no rule matches, or every matching guard is false, Dispatch returns a
// Rejected Outcome and the state is unchanged.
//
//	t, err := fsmtable.NewTableBuilder().
//		State(Red, "Red").
//		State(Green, "Green").
//		Event(Timer, "TimerExpires").
//		Rule(Red, Timer, Green).
//		Rule(Green, Timer, Red).
//		Build()
//	m, err := fsmtable.New(t, Red)
//	out := m.Send(ctx, Timer) // Red -TimerExpires-> Green
package fsmtable
