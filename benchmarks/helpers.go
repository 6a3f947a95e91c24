// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/comalice/fsmtable"
	"github.com/comalice/fsmtable/internal/config"
)

// Tick is the only event of the generated tables.
const Tick fsmtable.EventID = 0

// GenFlatTable creates n states cycling via Tick.
func GenFlatTable(n int) (*fsmtable.Table, error) {
	if n < 1 {
		n = 1
	}
	b := fsmtable.NewTableBuilder().Event(Tick, "tick")
	for i := 0; i < n; i++ {
		b.State(fsmtable.StateID(i), fmt.Sprintf("s%d", i))
		b.Rule(fsmtable.StateID(i), Tick, fsmtable.StateID((i+1)%n))
	}
	return b.Build()
}

// GenWideTable creates a two-state table where state 0 has numRules guarded
// rules on Tick and only the last guard holds.
func GenWideTable(numRules int) (*fsmtable.Table, error) {
	if numRules < 1 {
		numRules = 1
	}
	no := func(context.Context, fsmtable.Event, fsmtable.StateID, fsmtable.StateID) bool { return false }
	yes := func(context.Context, fsmtable.Event, fsmtable.StateID, fsmtable.StateID) bool { return true }

	b := fsmtable.NewTableBuilder().
		State(0, "from").
		State(1, "to").
		Event(Tick, "tick")
	for i := 0; i < numRules-1; i++ {
		b.Rule(0, Tick, 1, fsmtable.WithGuard(no))
	}
	return b.
		Rule(0, Tick, 1, fsmtable.WithGuard(yes)).
		Rule(1, Tick, 0).
		Build()
}

// GenTableYAML creates a flat table document with numStates states.
func GenTableYAML(numStates int) []byte {
	doc := config.TableConfig{
		ID:      fmt.Sprintf("flat_%d", numStates),
		Initial: "s0",
		Events:  []string{"tick"},
	}
	for i := 0; i < numStates; i++ {
		doc.States = append(doc.States, config.StateConfig{Name: fmt.Sprintf("s%d", i)})
		doc.Transitions = append(doc.Transitions, config.TransitionConfig{
			From:  fmt.Sprintf("s%d", i),
			Event: "tick",
			To:    fmt.Sprintf("s%d", (i+1)%numStates),
		})
	}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		panic(err)
	}
	return data
}
