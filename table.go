package fsmtable

import "fmt"

type ruleKey struct {
	state StateID
	event EventID
}

// Table is an immutable transition table. Build one with TableBuilder; a
// single Table may back any number of machines.
type Table struct {
	states     []StateDef
	stateIndex map[StateID]int
	stateNames map[string]StateID

	events     []EventDef
	eventIndex map[EventID]int
	eventNames map[string]EventID

	rules []Rule
	index map[ruleKey][]int // (source, event) -> rule positions, declaration order
}

// States returns the declared states in declaration order.
func (t *Table) States() []StateDef {
	return append([]StateDef(nil), t.states...)
}

// Events returns the declared events in declaration order.
func (t *Table) Events() []EventDef {
	return append([]EventDef(nil), t.events...)
}

// Rules returns the transition rules in declaration order.
func (t *Table) Rules() []Rule {
	return append([]Rule(nil), t.rules...)
}

// Rule returns the rule at position i.
func (t *Table) Rule(i int) (Rule, bool) {
	if i < 0 || i >= len(t.rules) {
		return Rule{}, false
	}
	return t.rules[i], true
}

// RulesFrom returns the rules whose source is the given state.
func (t *Table) RulesFrom(id StateID) []Rule {
	var out []Rule
	for _, r := range t.rules {
		if r.Source == id {
			out = append(out, r)
		}
	}
	return out
}

// HasState reports whether id is a declared state.
func (t *Table) HasState(id StateID) bool {
	_, ok := t.stateIndex[id]
	return ok
}

// HasEvent reports whether id is a declared event.
func (t *Table) HasEvent(id EventID) bool {
	_, ok := t.eventIndex[id]
	return ok
}

// StateName returns the declared name of a state.
func (t *Table) StateName(id StateID) string {
	if i, ok := t.stateIndex[id]; ok {
		return t.states[i].Name
	}
	return fmt.Sprintf("State(%d)", int(id))
}

// EventName returns the declared name of an event.
func (t *Table) EventName(id EventID) string {
	if id == NoEvent {
		return "<none>"
	}
	if i, ok := t.eventIndex[id]; ok {
		return t.events[i].Name
	}
	return fmt.Sprintf("Event(%d)", int(id))
}

// LookupState resolves a state by name.
func (t *Table) LookupState(name string) (StateID, bool) {
	id, ok := t.stateNames[name]
	return id, ok
}

// LookupEvent resolves an event by name.
func (t *Table) LookupEvent(name string) (EventID, bool) {
	id, ok := t.eventNames[name]
	return id, ok
}

func (t *Table) state(id StateID) (StateDef, bool) {
	i, ok := t.stateIndex[id]
	if !ok {
		return StateDef{}, false
	}
	return t.states[i], true
}

func (t *Table) candidates(state StateID, event EventID) []int {
	return t.index[ruleKey{state: state, event: event}]
}
