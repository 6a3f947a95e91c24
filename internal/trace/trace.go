// Package trace records machine outcomes, in memory or as JSON lines.
package trace

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/comalice/fsmtable"
)

// Record is the serializable form of one outcome.
type Record struct {
	Machine   string    `json:"machine"`
	Seq       int       `json:"seq"`
	Result    string    `json:"result"`
	Event     string    `json:"event"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Recorder keeps every outcome in dispatch order.
type Recorder struct {
	outcomes []fsmtable.Outcome
}

var _ fsmtable.Observer = (*Recorder)(nil)

func (r *Recorder) Observe(_ context.Context, o fsmtable.Outcome) {
	r.outcomes = append(r.outcomes, o)
}

// Outcomes returns a copy of the recorded outcomes.
func (r *Recorder) Outcomes() []fsmtable.Outcome {
	return append([]fsmtable.Outcome(nil), r.outcomes...)
}

// Count returns the number of transitions and rejections recorded.
func (r *Recorder) Count() (transitions, rejections int) {
	for _, o := range r.outcomes {
		if o.Transitioned() {
			transitions++
		} else {
			rejections++
		}
	}
	return transitions, rejections
}

// Reset drops all recorded outcomes.
func (r *Recorder) Reset() {
	r.outcomes = nil
}

// Writer encodes each outcome as one JSON line.
type Writer struct {
	machine string
	enc     *json.Encoder
	seq     int
	now     func() time.Time
	err     error
}

var _ fsmtable.Observer = (*Writer)(nil)

// NewWriter writes records for machine to w.
func NewWriter(w io.Writer, machine string) *Writer {
	return &Writer{machine: machine, enc: json.NewEncoder(w), now: time.Now}
}

func (w *Writer) Observe(_ context.Context, o fsmtable.Outcome) {
	w.seq++
	rec := Record{
		Machine:   w.machine,
		Seq:       w.seq,
		Result:    o.Result.String(),
		Event:     o.EventName(),
		From:      o.FromName(),
		To:        o.StateName(),
		Timestamp: w.now().UTC(),
	}
	if o.Rejected() {
		rec.Reason = o.Reason.String()
	}
	// Observers cannot fail a dispatch; keep the first write error.
	if err := w.enc.Encode(rec); err != nil && w.err == nil {
		w.err = err
	}
}

// Err returns the first write error, if any.
func (w *Writer) Err() error {
	return w.err
}
