package fsmtable

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Machine runs a Table. Its only mutable domain data is the current state.
// A Machine is not safe for concurrent use.
type Machine struct {
	table   *Table
	current StateID

	logger       *zap.Logger
	observers    []Observer
	entryOnStart bool

	started     bool
	dispatching bool
}

// New creates a machine in the given initial state.
func New(table *Table, initial StateID, opts ...Option) (*Machine, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil table", ErrMalformedTable)
	}
	if !table.HasState(initial) {
		return nil, fmt.Errorf("%w: initial: %w %d", ErrMalformedTable, ErrUnknownState, int(initial))
	}

	m := &Machine{
		table:        table,
		current:      initial,
		logger:       zap.NewNop(),
		entryOnStart: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Table returns the table backing the machine.
func (m *Machine) Table() *Table {
	return m.table
}

// CurrentState returns the current state.
func (m *Machine) CurrentState() StateID {
	return m.current
}

// Start enters the initial state, running its entry hook. Dispatch does not
// require Start.
func (m *Machine) Start(ctx context.Context) error {
	if m.started {
		return ErrAlreadyStarted
	}
	m.started = true
	if m.entryOnStart {
		m.enterState(ctx, Event{ID: NoEvent}, m.current, m.current)
	}
	return nil
}

// Stop runs the exit hook of the current state. The machine keeps its state.
func (m *Machine) Stop(ctx context.Context) {
	if !m.started {
		return
	}
	m.started = false
	if m.entryOnStart {
		m.exitState(ctx, Event{ID: NoEvent}, m.current, m.current)
	}
}

// Send dispatches an event without payload.
func (m *Machine) Send(ctx context.Context, id EventID) Outcome {
	return m.Dispatch(ctx, Event{ID: id})
}

// Dispatch processes one event to completion. The first rule for (current
// state, event) whose guard holds fires: exit hook, action, state update,
// entry hook. Otherwise the state is unchanged and the outcome is Rejected.
func (m *Machine) Dispatch(ctx context.Context, evt Event) Outcome {
	if m.dispatching {
		panic(fmt.Errorf("%w: event %s in state %s", ErrReentrantDispatch,
			m.table.EventName(evt.ID), m.table.StateName(m.current)))
	}
	m.dispatching = true
	defer func() { m.dispatching = false }()

	from := m.current
	m.logger.Debug("processing event",
		zap.String("event", m.table.EventName(evt.ID)),
		zap.String("state", m.table.StateName(from)))

	idx, reason := m.pickRule(ctx, evt)

	var out Outcome
	if idx < 0 {
		m.logger.Debug("no transition",
			zap.String("event", m.table.EventName(evt.ID)),
			zap.String("state", m.table.StateName(from)),
			zap.Stringer("reason", reason))
		out = Outcome{
			Result: ResultRejected,
			Event:  evt,
			From:   from,
			State:  from,
			Rule:   -1,
			Reason: reason,
			table:  m.table,
		}
	} else {
		m.doTransition(ctx, &m.table.rules[idx], evt)
		out = Outcome{
			Result: ResultTransitioned,
			Event:  evt,
			From:   from,
			State:  m.current,
			Rule:   idx,
			table:  m.table,
		}
	}

	for _, o := range m.observers {
		o.Observe(ctx, out)
	}
	return out
}

// Can reports whether dispatching evt now would fire a rule. Guards are
// evaluated; no hook or action runs.
func (m *Machine) Can(ctx context.Context, evt Event) bool {
	idx, _ := m.pickRule(ctx, evt)
	return idx >= 0
}

// pickRule grabs the _first_ rule whose guard holds, in declaration order.
func (m *Machine) pickRule(ctx context.Context, evt Event) (int, RejectReason) {
	cands := m.table.candidates(m.current, evt.ID)
	if len(cands) == 0 {
		return -1, ReasonNoRule
	}
	for _, i := range cands {
		r := &m.table.rules[i]
		if r.Guard == nil || r.Guard(ctx, evt, r.Source, r.Target) {
			return i, 0
		}
		m.logger.Debug("guard rejected transition",
			zap.Int("rule", i),
			zap.String("guard", r.GuardName),
			zap.String("from", m.table.StateName(r.Source)),
			zap.String("to", m.table.StateName(r.Target)))
	}
	return -1, ReasonGuardsFailed
}

func (m *Machine) doTransition(ctx context.Context, r *Rule, evt Event) {
	from, to := r.Source, r.Target
	m.logger.Debug("executing transition",
		zap.String("rule", r.Name),
		zap.String("from", m.table.StateName(from)),
		zap.String("to", m.table.StateName(to)),
		zap.String("event", m.table.EventName(evt.ID)))

	m.exitState(ctx, evt, from, to)
	if r.Action != nil {
		r.Action(ctx, evt, from, to)
	}
	m.current = to
	m.enterState(ctx, evt, from, to)
}

func (m *Machine) enterState(ctx context.Context, evt Event, from, to StateID) {
	if s, ok := m.table.state(to); ok && s.OnEntry != nil {
		s.OnEntry(ctx, evt, from, to)
	}
}

func (m *Machine) exitState(ctx context.Context, evt Event, from, to StateID) {
	if s, ok := m.table.state(from); ok && s.OnExit != nil {
		s.OnExit(ctx, evt, from, to)
	}
}
