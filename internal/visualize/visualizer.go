// Package visualize exports transition tables as Graphviz DOT, Mermaid,
// JSON and Markdown.
package visualize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/comalice/fsmtable"
)

// Edge represents a transition edge.
type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Event  string `json:"event"`
	Guard  string `json:"guard,omitempty"`
	Action string `json:"action,omitempty"`
}

// Label is the edge text: event, then [guard], then / action.
func (e Edge) Label() string {
	label := e.Event
	if e.Guard != "" {
		label += " [" + e.Guard + "]"
	}
	if e.Action != "" {
		label += " / " + e.Action
	}
	return label
}

// Graph is the JSON form of a table.
type Graph struct {
	States  []string `json:"states"`
	Events  []string `json:"events"`
	Current string   `json:"current,omitempty"`
	Edges   []Edge   `json:"edges"`
}

// Edges collects the rules of t in declaration order.
func Edges(t *fsmtable.Table) []Edge {
	rules := t.Rules()
	edges := make([]Edge, 0, len(rules))
	for _, r := range rules {
		edges = append(edges, Edge{
			From:   t.StateName(r.Source),
			To:     t.StateName(r.Target),
			Event:  t.EventName(r.Event),
			Guard:  guardLabel(r),
			Action: r.ActionName,
		})
	}
	return edges
}

func guardLabel(r fsmtable.Rule) string {
	if r.GuardName != "" {
		return r.GuardName
	}
	if r.Guard != nil {
		return "guarded"
	}
	return ""
}

// DOT generates Graphviz DOT source for the table; current is filled.
func DOT(t *fsmtable.Table, current fsmtable.StateID) string {
	var buf bytes.Buffer
	buf.WriteString(`digraph FSM {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)
	for _, s := range t.States() {
		style := ""
		if s.ID == current {
			style = ` style="rounded,filled" fillcolor=lightgreen`
		}
		fmt.Fprintf(&buf, "  %q [label=%q%s];\n", s.Name, s.Name, style)
	}
	for _, e := range Edges(t) {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, e.Label())
	}
	buf.WriteString("}\n")
	return buf.String()
}

// Mermaid produces a stateDiagram-v2 source; current gets the "current" class.
func Mermaid(t *fsmtable.Table, current fsmtable.StateID) string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	for _, s := range t.States() {
		fmt.Fprintf(&sb, "    state \"%s\" as %s\n", s.Name, mermaidID(s.Name))
	}
	for _, e := range Edges(t) {
		// Mermaid treats ':' as the label separator and chokes on quotes.
		label := strings.NewReplacer(":", " ", "\"", "'").Replace(e.Label())
		fmt.Fprintf(&sb, "    %s --> %s : %s\n", mermaidID(e.From), mermaidID(e.To), label)
	}
	if t.HasState(current) {
		sb.WriteString("    classDef current fill:#bbf7d0,stroke:#15803d\n")
		fmt.Fprintf(&sb, "    class %s current\n", mermaidID(t.StateName(current)))
	}
	return sb.String()
}

func mermaidID(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// JSON serializes the table graph.
func JSON(t *fsmtable.Table, current fsmtable.StateID) ([]byte, error) {
	g := Graph{Edges: Edges(t)}
	for _, s := range t.States() {
		g.States = append(g.States, s.Name)
	}
	for _, e := range t.Events() {
		g.Events = append(g.Events, e.Name)
	}
	if t.HasState(current) {
		g.Current = t.StateName(current)
	}
	return json.MarshalIndent(g, "", "  ")
}

// Markdown renders the transition table as a Markdown table.
func Markdown(t *fsmtable.Table) string {
	var sb strings.Builder
	sb.WriteString("| Source | Event | Guard | Target | Action |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, e := range Edges(t) {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
			e.From, e.Event, orNone(e.Guard), e.To, orNone(e.Action))
	}
	return sb.String()
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
