// Package trafficlight is the worked example: a three-light controller
// driven by a timer and a car sensor.
package trafficlight

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/comalice/fsmtable"
	"github.com/comalice/fsmtable/internal/config"
	"github.com/comalice/fsmtable/internal/registry"
)

const (
	Red fsmtable.StateID = iota
	Yellow
	Green
)

const (
	TimerExpires fsmtable.EventID = iota
	CarDetected
)

// Registry names used by trafficlight.yaml.
const (
	GuardIsCarWaiting  = "is-car-waiting"
	ActionTurnOnRed    = "turn-on-red"
	ActionTurnOnYellow = "turn-on-yellow"
	ActionTurnOnGreen  = "turn-on-green"
)

//go:embed trafficlight.yaml
var tableYAML []byte

var lightNames = map[fsmtable.StateID]string{
	Red:    "Red",
	Yellow: "Yellow",
	Green:  "Green",
}

// IsCarWaiting would read the road sensor; the controller has none, so a
// car is always waiting.
func IsCarWaiting(context.Context, fsmtable.Event, fsmtable.StateID, fsmtable.StateID) bool {
	return true
}

// NewTable builds the controller table in Go. It is equivalent to the
// embedded YAML document compiled against Register.
func NewTable(l *Lights) (*fsmtable.Table, error) {
	if l == nil {
		l = Discard()
	}
	b := fsmtable.NewTableBuilder()
	for _, id := range []fsmtable.StateID{Red, Yellow, Green} {
		name := lightNames[id]
		b.State(id, name,
			fsmtable.OnEntry(l.EnterHook(name)),
			fsmtable.OnExit(l.ExitHook(name)),
		)
	}
	return b.
		Event(TimerExpires, "TimerExpires").
		Event(CarDetected, "CarDetected").
		Rule(Red, TimerExpires, Green,
			fsmtable.WithAction(l.TurnOn("Green")), fsmtable.WithActionName(ActionTurnOnGreen)).
		Rule(Green, TimerExpires, Yellow,
			fsmtable.WithAction(l.TurnOn("Yellow")), fsmtable.WithActionName(ActionTurnOnYellow)).
		Rule(Green, CarDetected, Red,
			fsmtable.WithGuard(IsCarWaiting), fsmtable.WithGuardName(GuardIsCarWaiting),
			fsmtable.WithAction(l.TurnOn("Red")), fsmtable.WithActionName(ActionTurnOnRed)).
		Rule(Yellow, TimerExpires, Red,
			fsmtable.WithAction(l.TurnOn("Red")), fsmtable.WithActionName(ActionTurnOnRed)).
		Build()
}

// Register adds the controller's guard, actions and per-light hooks to reg.
// Hooks are named enter-<light> and exit-<light> in lower case.
func Register(reg *registry.Registry, l *Lights) error {
	if l == nil {
		l = Discard()
	}
	if err := reg.RegisterGuard(GuardIsCarWaiting, IsCarWaiting); err != nil {
		return err
	}
	for name, action := range map[string]string{
		"Red":    ActionTurnOnRed,
		"Yellow": ActionTurnOnYellow,
		"Green":  ActionTurnOnGreen,
	} {
		if err := reg.RegisterAction(action, l.TurnOn(name)); err != nil {
			return err
		}
		if err := reg.RegisterHook(EnterHookName(name), l.EnterHook(name)); err != nil {
			return err
		}
		if err := reg.RegisterHook(ExitHookName(name), l.ExitHook(name)); err != nil {
			return err
		}
	}
	return nil
}

// EnterHookName is the registry name of a light's entry hook.
func EnterHookName(light string) string { return "enter-" + strings.ToLower(light) }

// ExitHookName is the registry name of a light's exit hook.
func ExitHookName(light string) string { return "exit-" + strings.ToLower(light) }

// DefaultConfig returns the embedded table document.
func DefaultConfig() (*config.TableConfig, error) {
	cfg, err := config.Parse(tableYAML)
	if err != nil {
		return nil, fmt.Errorf("embedded table: %w", err)
	}
	return cfg, nil
}
