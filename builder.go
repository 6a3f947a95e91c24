package fsmtable

import (
	"errors"
	"fmt"
)

// TableBuilder collects state, event and rule declarations and validates
// them into a Table.
type TableBuilder struct {
	states []StateDef
	events []EventDef
	rules  []Rule
}

// NewTableBuilder creates an empty builder.
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{}
}

// State declares a state.
func (b *TableBuilder) State(id StateID, name string, opts ...StateOption) *TableBuilder {
	s := StateDef{ID: id, Name: name}
	for _, opt := range opts {
		opt(&s)
	}
	b.states = append(b.states, s)
	return b
}

// Event declares an event kind.
func (b *TableBuilder) Event(id EventID, name string) *TableBuilder {
	b.events = append(b.events, EventDef{ID: id, Name: name})
	return b
}

// Rule appends a transition rule. Rules sharing a (source, event) pair are
// tried in the order they are added.
func (b *TableBuilder) Rule(from StateID, event EventID, to StateID, opts ...RuleOption) *TableBuilder {
	r := Rule{
		Source: from,
		Event:  event,
		Target: to,
	}
	for _, opt := range opts {
		opt(&r)
	}
	b.rules = append(b.rules, r)
	return b
}

// Build validates the declarations and returns the Table. Every problem
// found is reported; the error wraps ErrMalformedTable.
func (b *TableBuilder) Build() (*Table, error) {
	t := &Table{
		states:     append([]StateDef(nil), b.states...),
		stateIndex: make(map[StateID]int, len(b.states)),
		stateNames: make(map[string]StateID, len(b.states)),
		events:     append([]EventDef(nil), b.events...),
		eventIndex: make(map[EventID]int, len(b.events)),
		eventNames: make(map[string]EventID, len(b.events)),
		rules:      append([]Rule(nil), b.rules...),
		index:      make(map[ruleKey][]int),
	}

	var errs []error
	if len(t.states) == 0 {
		errs = append(errs, errors.New("no states declared"))
	}

	for i, s := range t.states {
		if _, dup := t.stateIndex[s.ID]; dup {
			errs = append(errs, fmt.Errorf("state %d declared twice", int(s.ID)))
			continue
		}
		t.stateIndex[s.ID] = i
		switch {
		case s.Name == "":
			errs = append(errs, fmt.Errorf("state %d has no name", int(s.ID)))
		case t.hasStateName(s.Name):
			errs = append(errs, fmt.Errorf("state name %q used twice", s.Name))
		default:
			t.stateNames[s.Name] = s.ID
		}
	}

	for i, e := range t.events {
		if e.ID == NoEvent {
			errs = append(errs, fmt.Errorf("event %q uses the reserved id %d", e.Name, int(NoEvent)))
			continue
		}
		if _, dup := t.eventIndex[e.ID]; dup {
			errs = append(errs, fmt.Errorf("event %d declared twice", int(e.ID)))
			continue
		}
		t.eventIndex[e.ID] = i
		switch {
		case e.Name == "":
			errs = append(errs, fmt.Errorf("event %d has no name", int(e.ID)))
		case t.hasEventName(e.Name):
			errs = append(errs, fmt.Errorf("event name %q used twice", e.Name))
		default:
			t.eventNames[e.Name] = e.ID
		}
	}

	for i, r := range t.rules {
		ok := true
		if !t.HasState(r.Source) {
			errs = append(errs, fmt.Errorf("rule %d: source: %w %d", i, ErrUnknownState, int(r.Source)))
			ok = false
		}
		if !t.HasEvent(r.Event) {
			errs = append(errs, fmt.Errorf("rule %d: %w %d", i, ErrUnknownEvent, int(r.Event)))
			ok = false
		}
		if !t.HasState(r.Target) {
			errs = append(errs, fmt.Errorf("rule %d: target: %w %d", i, ErrUnknownState, int(r.Target)))
			ok = false
		}
		if ok {
			k := ruleKey{state: r.Source, event: r.Event}
			t.index[k] = append(t.index[k], i)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTable, errors.Join(errs...))
	}
	return t, nil
}

func (t *Table) hasStateName(name string) bool {
	_, ok := t.stateNames[name]
	return ok
}

func (t *Table) hasEventName(name string) bool {
	_, ok := t.eventNames[name]
	return ok
}
