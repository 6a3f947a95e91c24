// Package config reads declarative transition tables from YAML and compiles
// them into fsmtable tables.
//
// Guards, actions and hooks are referenced by name and resolved through a
// registry.Registry at compile time; an unresolved name fails the compile.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/comalice/fsmtable"
)

// TableConfig is a complete table document.
type TableConfig struct {
	Version     string             `json:"version,omitempty" yaml:"version,omitempty"`
	ID          string             `json:"id" yaml:"id"`
	Initial     string             `json:"initial" yaml:"initial"`
	States      []StateConfig      `json:"states" yaml:"states"`
	Events      []string           `json:"events" yaml:"events"`
	Transitions []TransitionConfig `json:"transitions" yaml:"transitions"`
}

// StateConfig declares a state and the hooks run on entry and exit.
type StateConfig struct {
	Name  string   `json:"name" yaml:"name"`
	Entry []string `json:"entry,omitempty" yaml:"entry,omitempty"`
	Exit  []string `json:"exit,omitempty" yaml:"exit,omitempty"`
}

// TransitionConfig is one table row. Guards are ANDed; a guard name with a
// leading '!' is negated.
type TransitionConfig struct {
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	From    string   `json:"from" yaml:"from"`
	Event   string   `json:"event" yaml:"event"`
	To      string   `json:"to" yaml:"to"`
	Guard   string   `json:"guard,omitempty" yaml:"guard,omitempty"`
	Guards  []string `json:"guards,omitempty" yaml:"guards,omitempty"`
	Actions []string `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// GuardRefs returns every guard reference of the row.
func (t TransitionConfig) GuardRefs() []string {
	var refs []string
	if t.Guard != "" {
		refs = append(refs, t.Guard)
	}
	return append(refs, t.Guards...)
}

// Compiled is the result of compiling a TableConfig.
type Compiled struct {
	ID      string
	Table   *fsmtable.Table
	Initial fsmtable.StateID
}

// Load reads and validates a table document from a file.
func Load(path string) (*TableConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a table document. Unknown keys and trailing
// documents are rejected.
func Parse(data []byte) (*TableConfig, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg TableConfig
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("yaml unmarshal: empty document")
		}
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("yaml unmarshal: %w", err)
		}
		return nil, errors.New("yaml unmarshal: want a single document")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal encodes the document as YAML.
func (c *TableConfig) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}

// Validate checks the document structure:
// - Non-empty ID and Initial
// - Initial exists in States
// - State and event names are present and unique
// - Every transition names a declared source, event and target
func (c *TableConfig) Validate() error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, errors.New("table ID is required"))
	}
	if c.Initial == "" {
		errs = append(errs, errors.New("initial state is required"))
	}
	if len(c.States) == 0 {
		errs = append(errs, errors.New("states list is required and cannot be empty"))
	}

	states := make(map[string]bool, len(c.States))
	for i, s := range c.States {
		switch {
		case s.Name == "":
			errs = append(errs, fmt.Errorf("state %d has no name", i))
		case states[s.Name]:
			errs = append(errs, fmt.Errorf("state %q declared twice", s.Name))
		}
		states[s.Name] = true
	}

	events := make(map[string]bool, len(c.Events))
	for i, e := range c.Events {
		switch {
		case e == "":
			errs = append(errs, fmt.Errorf("event %d has no name", i))
		case events[e]:
			errs = append(errs, fmt.Errorf("event %q declared twice", e))
		}
		events[e] = true
	}

	if c.Initial != "" && len(c.States) > 0 && !states[c.Initial] {
		errs = append(errs, fmt.Errorf("initial state %q: %w", c.Initial, fsmtable.ErrUnknownState))
	}

	for i, t := range c.Transitions {
		if !states[t.From] {
			errs = append(errs, fmt.Errorf("transition %d: source %q: %w", i, t.From, fsmtable.ErrUnknownState))
		}
		if !events[t.Event] {
			errs = append(errs, fmt.Errorf("transition %d: event %q: %w", i, t.Event, fsmtable.ErrUnknownEvent))
		}
		if !states[t.To] {
			errs = append(errs, fmt.Errorf("transition %d: target %q: %w", i, t.To, fsmtable.ErrUnknownState))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", fsmtable.ErrMalformedTable, errors.Join(errs...))
	}
	return nil
}
