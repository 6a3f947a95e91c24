// Package registry maps names to guards, actions and hooks so that table
// documents can refer to Go functions.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/comalice/fsmtable"
)

var (
	ErrUnknownGuard  = errors.New("unknown guard")
	ErrUnknownAction = errors.New("unknown action")
	ErrUnknownHook   = errors.New("unknown hook")
	ErrDuplicateName = errors.New("name already registered")
	ErrInvalidEntry  = errors.New("invalid registry entry")
)

// Registry holds named guards, actions and hooks.
type Registry struct {
	guards  map[string]fsmtable.Guard
	actions map[string]fsmtable.Action
	hooks   map[string]fsmtable.Hook
	logger  *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger wraps every action and hook returned by the registry with
// debug logging.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		guards:  make(map[string]fsmtable.Guard),
		actions: make(map[string]fsmtable.Action),
		hooks:   make(map[string]fsmtable.Hook),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterGuard adds a named guard.
func (r *Registry) RegisterGuard(name string, g fsmtable.Guard) error {
	if err := checkEntry(name, g == nil); err != nil {
		return err
	}
	if _, ok := r.guards[name]; ok {
		return fmt.Errorf("guard %q: %w", name, ErrDuplicateName)
	}
	r.guards[name] = g
	return nil
}

// RegisterAction adds a named action.
func (r *Registry) RegisterAction(name string, a fsmtable.Action) error {
	if err := checkEntry(name, a == nil); err != nil {
		return err
	}
	if _, ok := r.actions[name]; ok {
		return fmt.Errorf("action %q: %w", name, ErrDuplicateName)
	}
	r.actions[name] = a
	return nil
}

// RegisterHook adds a named entry/exit hook.
func (r *Registry) RegisterHook(name string, h fsmtable.Hook) error {
	if err := checkEntry(name, h == nil); err != nil {
		return err
	}
	if _, ok := r.hooks[name]; ok {
		return fmt.Errorf("hook %q: %w", name, ErrDuplicateName)
	}
	r.hooks[name] = h
	return nil
}

func checkEntry(name string, isNil bool) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidEntry)
	}
	if name[0] == '!' {
		return fmt.Errorf("%w: name %q may not start with '!'", ErrInvalidEntry, name)
	}
	if isNil {
		return fmt.Errorf("%w: %q is nil", ErrInvalidEntry, name)
	}
	return nil
}

// Guard resolves a guard reference. A leading '!' negates the named guard.
func (r *Registry) Guard(ref string) (fsmtable.Guard, error) {
	negate := false
	name := ref
	if len(name) > 0 && name[0] == '!' {
		negate, name = true, name[1:]
	}
	g, ok := r.guards[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownGuard, ref)
	}
	if negate {
		return Not(g), nil
	}
	return g, nil
}

// Guards resolves several references into one guard that holds when all do.
func (r *Registry) Guards(refs ...string) (fsmtable.Guard, error) {
	gs := make([]fsmtable.Guard, 0, len(refs))
	for _, ref := range refs {
		g, err := r.Guard(ref)
		if err != nil {
			return nil, err
		}
		gs = append(gs, g)
	}
	return All(gs...), nil
}

// Actions resolves action names into a single action running them in order.
func (r *Registry) Actions(names ...string) (fsmtable.Action, error) {
	as := make([]fsmtable.Action, 0, len(names))
	for _, name := range names {
		a, ok := r.actions[name]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownAction, name)
		}
		if r.logger != nil {
			a = LoggingAction(r.logger, name, a)
		}
		as = append(as, a)
	}
	return Sequence(as...), nil
}

// Hooks resolves hook names into a single hook running them in order.
func (r *Registry) Hooks(names ...string) (fsmtable.Hook, error) {
	hs := make([]fsmtable.Hook, 0, len(names))
	for _, name := range names {
		h, ok := r.hooks[name]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownHook, name)
		}
		if r.logger != nil {
			h = LoggingHook(r.logger, name, h)
		}
		hs = append(hs, h)
	}
	return SequenceHooks(hs...), nil
}

// Names lists the registered names of each kind, sorted.
func (r *Registry) Names() (guards, actions, hooks []string) {
	return sortedKeys(r.guards), sortedKeys(r.actions), sortedKeys(r.hooks)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Not negates a guard.
func Not(g fsmtable.Guard) fsmtable.Guard {
	return func(ctx context.Context, evt fsmtable.Event, from, to fsmtable.StateID) bool {
		return !g(ctx, evt, from, to)
	}
}

// All combines guards with AND logic. No guards yields nil (always true).
func All(guards ...fsmtable.Guard) fsmtable.Guard {
	switch len(guards) {
	case 0:
		return nil
	case 1:
		return guards[0]
	}
	return func(ctx context.Context, evt fsmtable.Event, from, to fsmtable.StateID) bool {
		for _, g := range guards {
			if !g(ctx, evt, from, to) {
				return false
			}
		}
		return true
	}
}

// Sequence runs actions in order. No actions yields nil.
func Sequence(actions ...fsmtable.Action) fsmtable.Action {
	switch len(actions) {
	case 0:
		return nil
	case 1:
		return actions[0]
	}
	return func(ctx context.Context, evt fsmtable.Event, from, to fsmtable.StateID) {
		for _, a := range actions {
			a(ctx, evt, from, to)
		}
	}
}

// SequenceHooks runs hooks in order. No hooks yields nil.
func SequenceHooks(hooks ...fsmtable.Hook) fsmtable.Hook {
	switch len(hooks) {
	case 0:
		return nil
	case 1:
		return hooks[0]
	}
	return func(ctx context.Context, evt fsmtable.Event, from, to fsmtable.StateID) {
		for _, h := range hooks {
			h(ctx, evt, from, to)
		}
	}
}

// LoggingAction logs before and after delegating to the inner action.
func LoggingAction(logger *zap.Logger, name string, inner fsmtable.Action) fsmtable.Action {
	return func(ctx context.Context, evt fsmtable.Event, from, to fsmtable.StateID) {
		logger.Debug("executing action", zap.String("action", name))
		start := time.Now()
		inner(ctx, evt, from, to)
		logger.Debug("action completed", zap.String("action", name), zap.Duration("took", time.Since(start)))
	}
}

// LoggingHook logs before delegating to the inner hook.
func LoggingHook(logger *zap.Logger, name string, inner fsmtable.Hook) fsmtable.Hook {
	return func(ctx context.Context, evt fsmtable.Event, from, to fsmtable.StateID) {
		logger.Debug("running hook", zap.String("hook", name))
		inner(ctx, evt, from, to)
	}
}
