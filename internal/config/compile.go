package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/comalice/fsmtable"
	"github.com/comalice/fsmtable/internal/registry"
)

// Compile resolves names through reg and builds the table. States and events
// get sequential IDs in declaration order, starting at zero.
func (c *TableConfig) Compile(reg *registry.Registry) (*Compiled, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	stateIDs := make(map[string]fsmtable.StateID, len(c.States))
	eventIDs := make(map[string]fsmtable.EventID, len(c.Events))
	b := fsmtable.NewTableBuilder()

	var errs []error
	for i, s := range c.States {
		id := fsmtable.StateID(i)
		stateIDs[s.Name] = id

		var opts []fsmtable.StateOption
		if len(s.Entry) > 0 {
			h, err := reg.Hooks(s.Entry...)
			if err != nil {
				errs = append(errs, fmt.Errorf("state %q entry: %w", s.Name, err))
			}
			opts = append(opts, fsmtable.OnEntry(h))
		}
		if len(s.Exit) > 0 {
			h, err := reg.Hooks(s.Exit...)
			if err != nil {
				errs = append(errs, fmt.Errorf("state %q exit: %w", s.Name, err))
			}
			opts = append(opts, fsmtable.OnExit(h))
		}
		b.State(id, s.Name, opts...)
	}

	for i, e := range c.Events {
		id := fsmtable.EventID(i)
		eventIDs[e] = id
		b.Event(id, e)
	}

	for i, t := range c.Transitions {
		opts := []fsmtable.RuleOption{fsmtable.Named(t.Name)}
		if refs := t.GuardRefs(); len(refs) > 0 {
			g, err := reg.Guards(refs...)
			if err != nil {
				errs = append(errs, fmt.Errorf("transition %d guard: %w", i, err))
			}
			opts = append(opts, fsmtable.WithGuard(g), fsmtable.WithGuardName(strings.Join(refs, " && ")))
		}
		if len(t.Actions) > 0 {
			a, err := reg.Actions(t.Actions...)
			if err != nil {
				errs = append(errs, fmt.Errorf("transition %d actions: %w", i, err))
			}
			opts = append(opts, fsmtable.WithAction(a), fsmtable.WithActionName(strings.Join(t.Actions, ", ")))
		}
		b.Rule(stateIDs[t.From], eventIDs[t.Event], stateIDs[t.To], opts...)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", fsmtable.ErrMalformedTable, errors.Join(errs...))
	}

	table, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &Compiled{
		ID:      c.ID,
		Table:   table,
		Initial: stateIDs[c.Initial],
	}, nil
}

// NewMachine compiles the document and creates a machine in its initial state.
func (c *TableConfig) NewMachine(reg *registry.Registry, opts ...fsmtable.Option) (*fsmtable.Machine, error) {
	compiled, err := c.Compile(reg)
	if err != nil {
		return nil, err
	}
	return fsmtable.New(compiled.Table, compiled.Initial, opts...)
}
