package trafficlight

import (
	"context"
	"fmt"

	"github.com/comalice/fsmtable"
)

// Step is one captioned group of events in a scripted run.
type Step struct {
	Caption   string
	Events    []string
	ShowState bool
}

// DemoScript walks every light and both rejection and guarded paths.
func DemoScript() []Step {
	return []Step{
		{Caption: "Processing TimerExpires event (Red -> Green)...", Events: []string{"TimerExpires"}, ShowState: true},
		{Caption: "Processing TimerExpires event (Green -> Yellow)...", Events: []string{"TimerExpires"}, ShowState: true},
		{Caption: "Processing TimerExpires event (Yellow -> Red)...", Events: []string{"TimerExpires"}, ShowState: true},
		{Caption: "Processing CarDetected event (Red -> No transition)...", Events: []string{"CarDetected"}, ShowState: true},
		{
			Caption:   "Cycling back to Green to demonstrate CarDetected transition...",
			Events:    []string{"TimerExpires", "TimerExpires", "TimerExpires", "TimerExpires"},
			ShowState: true,
		},
		{Caption: "Processing CarDetected event (Green -> Red)...", Events: []string{"CarDetected"}, ShowState: true},
	}
}

// Play starts m, runs the steps and stops m. Event names are resolved
// against the machine's table before anything is dispatched.
func Play(ctx context.Context, m *fsmtable.Machine, l *Lights, steps []Step) ([]fsmtable.Outcome, error) {
	table := m.Table()
	resolved := make([][]fsmtable.EventID, len(steps))
	for i, s := range steps {
		for _, name := range s.Events {
			id, ok := table.LookupEvent(name)
			if !ok {
				return nil, fmt.Errorf("step %d: %w %q", i, fsmtable.ErrUnknownEvent, name)
			}
			resolved[i] = append(resolved[i], id)
		}
	}

	if err := m.Start(ctx); err != nil {
		return nil, err
	}
	defer m.Stop(ctx)
	l.Current(m)

	var outcomes []fsmtable.Outcome
	for i, s := range steps {
		if s.Caption != "" {
			l.Caption(s.Caption)
		}
		for _, id := range resolved[i] {
			o := m.Send(ctx, id)
			l.Outcome(o)
			outcomes = append(outcomes, o)
		}
		if s.ShowState {
			l.Current(m)
		}
	}
	return outcomes, nil
}
