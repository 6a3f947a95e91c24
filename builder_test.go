package fsmtable_test

import (
	"errors"
	"strings"
	"testing"

	. "github.com/comalice/fsmtable"
)

func TestBuildValidTable(t *testing.T) {
	table, err := NewTableBuilder().
		State(red, "Red").
		State(green, "Green").
		Event(timer, "TimerExpires").
		Rule(red, timer, green, Named("go"), WithGuardName("ready"), WithActionName("lamp")).
		Rule(green, timer, red).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	if n := len(table.States()); n != 2 {
		t.Errorf("states = %d, want 2", n)
	}
	if n := len(table.Rules()); n != 2 {
		t.Errorf("rules = %d, want 2", n)
	}
	r, ok := table.Rule(0)
	if !ok || r.Name != "go" || r.GuardName != "ready" || r.ActionName != "lamp" {
		t.Errorf("rule 0 = %+v", r)
	}
	if _, ok := table.Rule(2); ok {
		t.Error("Rule(2) should be out of range")
	}
	if got := table.RulesFrom(green); len(got) != 1 || got[0].Target != red {
		t.Errorf("RulesFrom(Green) = %+v", got)
	}

	if id, ok := table.LookupState("Green"); !ok || id != green {
		t.Errorf("LookupState(Green) = %d, %v", id, ok)
	}
	if id, ok := table.LookupEvent("TimerExpires"); !ok || id != timer {
		t.Errorf("LookupEvent(TimerExpires) = %d, %v", id, ok)
	}
	if _, ok := table.LookupState("Blue"); ok {
		t.Error("LookupState(Blue) should fail")
	}
	if got := table.StateName(StateID(9)); got != "State(9)" {
		t.Errorf("StateName(9) = %q", got)
	}
	if got := table.EventName(NoEvent); got != "<none>" {
		t.Errorf("EventName(NoEvent) = %q", got)
	}
}

func TestBuildTableIsImmutable(t *testing.T) {
	b := NewTableBuilder().
		State(red, "Red").
		Event(timer, "TimerExpires").
		Rule(red, timer, red)
	table, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	b.State(green, "Green").Rule(red, timer, green)
	rules := table.Rules()
	rules[0].Target = green

	if table.HasState(green) {
		t.Error("builder changes leaked into the built table")
	}
	if r, _ := table.Rule(0); r.Target != red {
		t.Error("Rules() returned the backing slice")
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *TableBuilder
		wantIs  error
		wantMsg string
	}{
		{
			name:    "no states",
			build:   NewTableBuilder,
			wantMsg: "no states declared",
		},
		{
			name: "duplicate state id",
			build: func() *TableBuilder {
				return NewTableBuilder().State(red, "Red").State(red, "Crimson")
			},
			wantMsg: "state 0 declared twice",
		},
		{
			name: "duplicate state name",
			build: func() *TableBuilder {
				return NewTableBuilder().State(red, "Red").State(green, "Red")
			},
			wantMsg: `state name "Red" used twice`,
		},
		{
			name: "unnamed state",
			build: func() *TableBuilder {
				return NewTableBuilder().State(red, "")
			},
			wantMsg: "state 0 has no name",
		},
		{
			name: "reserved event id",
			build: func() *TableBuilder {
				return NewTableBuilder().State(red, "Red").Event(NoEvent, "Nothing")
			},
			wantMsg: "reserved id",
		},
		{
			name: "duplicate event name",
			build: func() *TableBuilder {
				return NewTableBuilder().State(red, "Red").Event(timer, "T").Event(car, "T")
			},
			wantMsg: `event name "T" used twice`,
		},
		{
			name: "undeclared target",
			build: func() *TableBuilder {
				return NewTableBuilder().State(red, "Red").Event(timer, "T").Rule(red, timer, green)
			},
			wantIs:  ErrUnknownState,
			wantMsg: "rule 0: target",
		},
		{
			name: "undeclared source",
			build: func() *TableBuilder {
				return NewTableBuilder().State(red, "Red").Event(timer, "T").Rule(yellow, timer, red)
			},
			wantIs:  ErrUnknownState,
			wantMsg: "rule 0: source",
		},
		{
			name: "undeclared event",
			build: func() *TableBuilder {
				return NewTableBuilder().State(red, "Red").Rule(red, car, red)
			},
			wantIs:  ErrUnknownEvent,
			wantMsg: "rule 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := tt.build().Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if table != nil {
				t.Error("expected nil table on error")
			}
			if !errors.Is(err, ErrMalformedTable) {
				t.Errorf("error %v does not wrap ErrMalformedTable", err)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("error %v does not wrap %v", err, tt.wantIs)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestBuildReportsEveryProblem(t *testing.T) {
	_, err := NewTableBuilder().
		State(red, "Red").
		Event(timer, "T").
		Rule(red, timer, green).
		Rule(yellow, car, red).
		Build()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"rule 0: target", "rule 1: source", "rule 1: unknown event"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}
