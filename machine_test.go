package fsmtable_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/comalice/fsmtable"
	"github.com/comalice/fsmtable/testutil"
)

const (
	red StateID = iota
	yellow
	green
)

const (
	timer EventID = iota
	car
)

// recorder collects hook and action calls in the order they happen.
type recorder struct {
	calls []string
}

func (r *recorder) hook(label string) Hook {
	return func(ctx context.Context, evt Event, from, to StateID) {
		r.calls = append(r.calls, label)
	}
}

func (r *recorder) action(label string) Action {
	return func(ctx context.Context, evt Event, from, to StateID) {
		r.calls = append(r.calls, label)
	}
}

func constGuard(v bool) Guard {
	return func(context.Context, Event, StateID, StateID) bool { return v }
}

func lightTable(t *testing.T, rec *recorder, carWaiting Guard) *Table {
	t.Helper()
	b := NewTableBuilder()
	for i, name := range []string{"Red", "Yellow", "Green"} {
		b.State(StateID(i), name, OnEntry(rec.hook("enter "+name)), OnExit(rec.hook("exit "+name)))
	}
	table, err := b.
		Event(timer, "TimerExpires").
		Event(car, "CarDetected").
		Rule(red, timer, green, WithAction(rec.action("green on"))).
		Rule(green, timer, yellow, WithAction(rec.action("yellow on"))).
		Rule(green, car, red, WithGuard(carWaiting), WithAction(rec.action("red on"))).
		Rule(yellow, timer, red, WithAction(rec.action("red on"))).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestDispatchOrder(t *testing.T) {
	rec := &recorder{}
	m, err := New(lightTable(t, rec, nil), red)
	if err != nil {
		t.Fatal(err)
	}

	out := m.Send(context.Background(), timer)
	if !out.Transitioned() {
		t.Fatalf("expected transition, got %v", out)
	}
	want := []string{"exit Red", "green on", "enter Green"}
	if strings.Join(rec.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
	if m.CurrentState() != green {
		t.Errorf("state = %d, want Green", m.CurrentState())
	}
	if out.From != red || out.State != green || out.Rule != 0 {
		t.Errorf("unexpected outcome fields: %+v", out)
	}
}

func TestTrafficLightCycle(t *testing.T) {
	m, err := New(lightTable(t, &recorder{}, constGuard(true)), red)
	if err != nil {
		t.Fatal(err)
	}

	testutil.Drive(t, context.Background(), m, []testutil.Step{
		{Event: timer, Want: green, Transition: true},
		{Event: timer, Want: yellow, Transition: true},
		{Event: timer, Want: red, Transition: true},
		{Event: car, Want: red},
		{Event: timer, Want: green, Transition: true},
		{Event: car, Want: red, Transition: true},
	})
}

func TestRejectedLeavesStateAndRunsNothing(t *testing.T) {
	rec := &recorder{}
	m, err := New(lightTable(t, rec, nil), red)
	if err != nil {
		t.Fatal(err)
	}

	out := m.Send(context.Background(), car)
	if !out.Rejected() {
		t.Fatalf("expected rejection, got %v", out)
	}
	if out.Reason != ReasonNoRule {
		t.Errorf("reason = %v, want %v", out.Reason, ReasonNoRule)
	}
	if out.Rule != -1 {
		t.Errorf("rule = %d, want -1", out.Rule)
	}
	if len(rec.calls) != 0 {
		t.Errorf("expected no hooks or actions, got %v", rec.calls)
	}
	if m.CurrentState() != red {
		t.Errorf("state changed to %d", m.CurrentState())
	}
	if got := out.String(); got != "no transition from state Red on event CarDetected (no rule)" {
		t.Errorf("String() = %q", got)
	}
}

func TestUndeclaredPairsRejectIdempotently(t *testing.T) {
	table := lightTable(t, &recorder{}, nil)
	var swept []string
	states := []StateID{red, yellow, green}
	events := []EventID{timer, car}

	for _, s := range states {
		for _, e := range events {
			if hasRule(table, s, e) {
				continue
			}
			name := table.StateName(s) + "/" + table.EventName(e)
			swept = append(swept, name)
			t.Run(name, func(t *testing.T) {
				rec := &recorder{}
				m, err := New(lightTable(t, rec, nil), s)
				if err != nil {
					t.Fatal(err)
				}
				ctx := context.Background()

				a := m.Send(ctx, e)
				b := m.Send(ctx, e)
				if !a.Rejected() || a.Reason != ReasonNoRule {
					t.Fatalf("first dispatch: %v", a)
				}
				if a != b {
					t.Errorf("outcomes differ: %+v vs %+v", a, b)
				}
				if m.CurrentState() != s {
					t.Errorf("state = %d, want %d", m.CurrentState(), s)
				}
				if len(rec.calls) != 0 {
					t.Errorf("expected no hooks or actions, got %v", rec.calls)
				}
			})
		}
	}
	if got := strings.Join(swept, ","); got != "Red/CarDetected,Yellow/CarDetected" {
		t.Errorf("swept pairs = %s", got)
	}
}

func hasRule(t *Table, s StateID, e EventID) bool {
	for _, r := range t.RulesFrom(s) {
		if r.Event == e {
			return true
		}
	}
	return false
}

func TestFalseGuardRejects(t *testing.T) {
	rec := &recorder{}
	m, err := New(lightTable(t, rec, constGuard(false)), green)
	if err != nil {
		t.Fatal(err)
	}

	out := m.Send(context.Background(), car)
	if !out.Rejected() || out.Reason != ReasonGuardsFailed {
		t.Fatalf("expected guards-failed rejection, got %v", out)
	}
	if m.CurrentState() != green {
		t.Errorf("state changed to %d", m.CurrentState())
	}
	if len(rec.calls) != 0 {
		t.Errorf("expected no hooks or actions, got %v", rec.calls)
	}
}

func TestFirstTrueGuardWins(t *testing.T) {
	const (
		closed StateID = iota
		open
		locked
	)
	const push EventID = 0

	var evaluated []string
	guard := func(label string, v bool) Guard {
		return func(context.Context, Event, StateID, StateID) bool {
			evaluated = append(evaluated, label)
			return v
		}
	}

	table, err := NewTableBuilder().
		State(closed, "Closed").
		State(open, "Open").
		State(locked, "Locked").
		Event(push, "Push").
		Rule(closed, push, locked, WithGuard(guard("first", false))).
		Rule(closed, push, open, WithGuard(guard("second", true))).
		Rule(closed, push, locked, WithGuard(guard("third", true))).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	m, _ := New(table, closed)
	out := m.Send(context.Background(), push)
	if m.CurrentState() != open {
		t.Errorf("state = %s, want Open", table.StateName(m.CurrentState()))
	}
	if out.Rule != 1 {
		t.Errorf("rule = %d, want 1", out.Rule)
	}
	if strings.Join(evaluated, ",") != "first,second" {
		t.Errorf("guards evaluated = %v, want [first second]", evaluated)
	}
}

func TestSelfTransitionRunsExitAndEntry(t *testing.T) {
	rec := &recorder{}
	table, err := NewTableBuilder().
		State(0, "Idle", OnEntry(rec.hook("enter")), OnExit(rec.hook("exit"))).
		Event(0, "Tick").
		Rule(0, 0, 0, WithAction(rec.action("act"))).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	m, _ := New(table, 0)
	m.Send(context.Background(), 0)

	if got := strings.Join(rec.calls, ","); got != "exit,act,enter" {
		t.Errorf("calls = %s, want exit,act,enter", got)
	}
}

func TestHooksAndActionSeeEventAndEndpoints(t *testing.T) {
	type seen struct {
		from, to StateID
		payload  any
	}
	got := map[string]seen{}
	capture := func(label string) func(context.Context, Event, StateID, StateID) {
		return func(ctx context.Context, evt Event, from, to StateID) {
			got[label] = seen{from: from, to: to, payload: evt.Payload}
		}
	}

	table, err := NewTableBuilder().
		State(0, "A", OnExit(capture("exit"))).
		State(1, "B", OnEntry(capture("entry"))).
		Event(0, "Go").
		Rule(0, 0, 1, WithAction(capture("action"))).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	m, _ := New(table, 0)
	m.Dispatch(context.Background(), Event{ID: 0, Payload: 42})

	want := seen{from: 0, to: 1, payload: 42}
	for _, label := range []string{"exit", "action", "entry"} {
		if got[label] != want {
			t.Errorf("%s saw %+v, want %+v", label, got[label], want)
		}
	}
	if m.CurrentState() != 1 {
		t.Errorf("state after dispatch = %d, want 1", m.CurrentState())
	}
}

func TestActionRunsBeforeStateUpdate(t *testing.T) {
	var m *Machine
	var during StateID = -1

	table, err := NewTableBuilder().
		State(0, "A").
		State(1, "B", OnEntry(func(context.Context, Event, StateID, StateID) {
			if m.CurrentState() != 1 {
				t.Errorf("entry hook ran before state update")
			}
		})).
		Event(0, "Go").
		Rule(0, 0, 1, WithAction(func(context.Context, Event, StateID, StateID) {
			during = m.CurrentState()
		})).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	m, _ = New(table, 0)
	m.Send(context.Background(), 0)

	if during != 0 {
		t.Errorf("action saw state %d, want 0", during)
	}
}

func TestStartStop(t *testing.T) {
	ctx := context.Background()
	var events []EventID
	rec := &recorder{}
	table, err := NewTableBuilder().
		State(0, "A",
			OnEntry(func(ctx context.Context, evt Event, from, to StateID) {
				events = append(events, evt.ID)
				rec.calls = append(rec.calls, "enter A")
			}),
			OnExit(rec.hook("exit A"))).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	m, _ := New(table, 0)
	if err := m.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.Start(ctx); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start: got %v, want ErrAlreadyStarted", err)
	}
	m.Stop(ctx)
	m.Stop(ctx)

	if got := strings.Join(rec.calls, ","); got != "enter A,exit A" {
		t.Errorf("calls = %s", got)
	}
	if len(events) != 1 || events[0] != NoEvent {
		t.Errorf("entry hook events = %v, want [NoEvent]", events)
	}
}

func TestWithEntryOnStartDisabled(t *testing.T) {
	rec := &recorder{}
	table, _ := NewTableBuilder().
		State(0, "A", OnEntry(rec.hook("enter")), OnExit(rec.hook("exit"))).
		Build()

	m, _ := New(table, 0, WithEntryOnStart(false))
	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatal(err)
	}
	m.Stop(ctx)
	if len(rec.calls) != 0 {
		t.Errorf("expected no hooks, got %v", rec.calls)
	}
}

func TestUnknownEventIsRejected(t *testing.T) {
	m, _ := New(lightTable(t, &recorder{}, nil), red)
	out := m.Send(context.Background(), EventID(99))
	if !out.Rejected() || out.Reason != ReasonNoRule {
		t.Fatalf("got %v", out)
	}
	if out.EventName() != "Event(99)" {
		t.Errorf("EventName = %q", out.EventName())
	}
}

func TestCan(t *testing.T) {
	rec := &recorder{}
	ctx := context.Background()
	m, _ := New(lightTable(t, rec, constGuard(false)), green)

	if !m.Can(ctx, Event{ID: timer}) {
		t.Error("Can(timer) from Green should be true")
	}
	if m.Can(ctx, Event{ID: car}) {
		t.Error("Can(car) with false guard should be false")
	}
	if len(rec.calls) != 0 || m.CurrentState() != green {
		t.Errorf("Can must not run hooks or change state: %v", rec.calls)
	}
}

func TestObserversSeeEveryOutcome(t *testing.T) {
	var seen []Outcome
	obs := ObserverFunc(func(ctx context.Context, o Outcome) { seen = append(seen, o) })

	m, _ := New(lightTable(t, &recorder{}, nil), red, WithObserver(obs), WithObserver(nil))
	ctx := context.Background()
	m.Send(ctx, timer)
	m.Send(ctx, car)

	if len(seen) != 2 {
		t.Fatalf("observed %d outcomes, want 2", len(seen))
	}
	if seen[0].String() != "Red -TimerExpires-> Green" {
		t.Errorf("first = %q", seen[0].String())
	}
	if !seen[1].Rejected() {
		t.Errorf("second should be rejected: %v", seen[1])
	}
}

func TestReentrantDispatchPanics(t *testing.T) {
	var m *Machine
	table, err := NewTableBuilder().
		State(0, "A").
		State(1, "B", OnEntry(func(ctx context.Context, evt Event, from, to StateID) {
			m.Send(ctx, 0)
		})).
		Event(0, "Go").
		Rule(0, 0, 1).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	m, _ = New(table, 0)

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrReentrantDispatch) {
			t.Fatalf("recovered %v, want ErrReentrantDispatch", r)
		}
	}()
	m.Send(context.Background(), 0)
	t.Fatal("expected panic")
}

func TestNewRejectsBadInitial(t *testing.T) {
	table := lightTable(t, &recorder{}, nil)

	if _, err := New(table, StateID(7)); !errors.Is(err, ErrUnknownState) || !errors.Is(err, ErrMalformedTable) {
		t.Errorf("undeclared initial: got %v", err)
	}
	if _, err := New(nil, red); !errors.Is(err, ErrMalformedTable) {
		t.Errorf("nil table: got %v", err)
	}
}

func TestMachinesShareTable(t *testing.T) {
	table := lightTable(t, &recorder{}, nil)
	a, _ := New(table, red)
	b, _ := New(table, red)

	a.Send(context.Background(), timer)
	if a.CurrentState() != green || b.CurrentState() != red {
		t.Errorf("machines are not independent: a=%d b=%d", a.CurrentState(), b.CurrentState())
	}
}
