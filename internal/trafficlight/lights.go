package trafficlight

import (
	"context"
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/comalice/fsmtable"
)

var lightColors = map[string]string{
	"Red":    "#ef4444",
	"Yellow": "#eab308",
	"Green":  "#22c55e",
}

// Lights is the controller's output side: it narrates hooks, actions and
// outcomes to a writer, colouring light names for the terminal profile.
type Lights struct {
	out     io.Writer
	profile termenv.Profile
}

// NewLights writes narration to out. Use termenv.Ascii for plain text.
func NewLights(out io.Writer, profile termenv.Profile) *Lights {
	return &Lights{out: out, profile: profile}
}

// Discard returns Lights that print nothing.
func Discard() *Lights {
	return NewLights(io.Discard, termenv.Ascii)
}

func (l *Lights) paint(name string) string {
	hex, ok := lightColors[name]
	if !ok {
		return name
	}
	return l.profile.String(name).Foreground(l.profile.Color(hex)).String()
}

func (l *Lights) printf(format string, args ...any) {
	fmt.Fprintf(l.out, format, args...)
}

// EnterHook announces entering a light.
func (l *Lights) EnterHook(light string) fsmtable.Hook {
	return func(context.Context, fsmtable.Event, fsmtable.StateID, fsmtable.StateID) {
		l.printf("Entering %s state.\n", l.paint(light))
	}
}

// ExitHook announces leaving a light.
func (l *Lights) ExitHook(light string) fsmtable.Hook {
	return func(context.Context, fsmtable.Event, fsmtable.StateID, fsmtable.StateID) {
		l.printf("Leaving %s state.\n", l.paint(light))
	}
}

// TurnOn switches a lamp on.
func (l *Lights) TurnOn(light string) fsmtable.Action {
	return func(context.Context, fsmtable.Event, fsmtable.StateID, fsmtable.StateID) {
		l.printf("Action: Turning on %s Light.\n", l.paint(light))
	}
}

// Current prints the current state of m.
func (l *Lights) Current(m *fsmtable.Machine) {
	l.printf("Current State: %s\n", l.paint(m.Table().StateName(m.CurrentState())))
}

// Outcome prints rejected outcomes; transitions were already narrated by
// the hooks.
func (l *Lights) Outcome(o fsmtable.Outcome) {
	if o.Rejected() {
		l.printf("No transition from state %s on event %s\n", l.paint(o.StateName()), o.EventName())
	}
}

// Caption prints a blank line and a step caption.
func (l *Lights) Caption(text string) {
	l.printf("\n%s\n", text)
}
