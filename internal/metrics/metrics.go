// Package metrics exports machine outcomes as Prometheus metrics.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/comalice/fsmtable"
)

const namespace = "fsmtable"

// Observer counts transitions and rejections and tracks the current state.
// It implements fsmtable.Observer.
type Observer struct {
	machine     string
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	current     *prometheus.GaugeVec
}

var _ fsmtable.Observer = (*Observer)(nil)

// New registers the collectors on reg. machine labels every series.
func New(reg prometheus.Registerer, machine string) (*Observer, error) {
	o := &Observer{
		machine: machine,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Transitions fired, by source, event and target.",
		}, []string{"machine", "from", "event", "to"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Events rejected, by state, event and reason.",
		}, []string{"machine", "state", "event", "reason"}),
		current: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "1 for the current state of the machine, 0 otherwise.",
		}, []string{"machine", "state"}),
	}
	for _, c := range []prometheus.Collector{o.transitions, o.rejections, o.current} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return o, nil
}

// Init sets the state gauge for every declared state.
func (o *Observer) Init(m *fsmtable.Machine) {
	t := m.Table()
	for _, s := range t.States() {
		v := 0.0
		if s.ID == m.CurrentState() {
			v = 1
		}
		o.current.WithLabelValues(o.machine, s.Name).Set(v)
	}
}

func (o *Observer) Observe(_ context.Context, out fsmtable.Outcome) {
	if out.Rejected() {
		o.rejections.WithLabelValues(o.machine, out.StateName(), out.EventName(), out.Reason.String()).Inc()
		return
	}
	o.transitions.WithLabelValues(o.machine, out.FromName(), out.EventName(), out.StateName()).Inc()
	o.current.WithLabelValues(o.machine, out.FromName()).Set(0)
	o.current.WithLabelValues(o.machine, out.StateName()).Set(1)
}

// Totals sums the transition and rejection counters found in g.
func Totals(g prometheus.Gatherer) (transitions, rejections float64, err error) {
	families, err := g.Gather()
	if err != nil {
		return 0, 0, fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		switch mf.GetName() {
		case namespace + "_transitions_total":
			transitions = sumCounters(mf)
		case namespace + "_rejections_total":
			rejections = sumCounters(mf)
		}
	}
	return transitions, rejections, nil
}

func sumCounters(mf *dto.MetricFamily) float64 {
	var total float64
	for _, m := range mf.GetMetric() {
		total += m.GetCounter().GetValue()
	}
	return total
}
