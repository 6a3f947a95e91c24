package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/comalice/fsmtable"
	"github.com/comalice/fsmtable/internal/appconfig"
	"github.com/comalice/fsmtable/internal/config"
	"github.com/comalice/fsmtable/internal/logging"
	"github.com/comalice/fsmtable/internal/metrics"
	"github.com/comalice/fsmtable/internal/registry"
	"github.com/comalice/fsmtable/internal/trace"
	"github.com/comalice/fsmtable/internal/trafficlight"
)

// app wires configuration, logging, the table and one machine.
type app struct {
	cfg      *appconfig.Config
	out      io.Writer
	errOut   io.Writer
	logger   *zap.Logger
	lights   *trafficlight.Lights
	machine  *fsmtable.Machine
	metrics  *metrics.Observer
	gatherer prometheus.Gatherer
	tracer   *trace.Writer
	closers  []func() error
}

// newApp builds the app. Narration goes to out; "--trace -" writes to errOut.
func newApp(v *viper.Viper, cfgPath string, out, errOut io.Writer) (_ *app, err error) {
	cfg, err := appconfig.Load(v, cfgPath)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(logging.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		OutputPath: cfg.Logger.OutputPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{cfg: cfg, out: out, errOut: errOut, logger: logger, closers: []func() error{closeLog}}
	defer func() {
		if err != nil {
			err = errors.Join(err, a.close())
		}
	}()
	a.lights = trafficlight.NewLights(out, colorProfile(out, cfg.Output.Color))

	reg := registry.New(registry.WithLogger(logger))
	if err := trafficlight.Register(reg, a.lights); err != nil {
		return nil, err
	}

	doc, err := loadTable(cfg.Machine.TablePath)
	if err != nil {
		return nil, err
	}
	compiled, err := doc.Compile(reg)
	if err != nil {
		return nil, err
	}

	initial := compiled.Initial
	if cfg.Machine.Initial != "" {
		id, ok := compiled.Table.LookupState(cfg.Machine.Initial)
		if !ok {
			return nil, fmt.Errorf("initial %q: %w", cfg.Machine.Initial, fsmtable.ErrUnknownState)
		}
		initial = id
	}

	promReg := prometheus.NewRegistry()
	a.gatherer = promReg
	if a.metrics, err = metrics.New(promReg, cfg.Machine.ID); err != nil {
		return nil, err
	}

	opts := []fsmtable.Option{
		fsmtable.WithLogger(logger.With(zap.String("machine", cfg.Machine.ID))),
		fsmtable.WithObserver(a.metrics),
	}
	w, err := a.traceWriter(cfg.Output.TracePath)
	if err != nil {
		return nil, err
	}
	if w != nil {
		a.tracer = trace.NewWriter(w, cfg.Machine.ID)
		opts = append(opts, fsmtable.WithObserver(a.tracer))
	}

	if a.machine, err = fsmtable.New(compiled.Table, initial, opts...); err != nil {
		return nil, err
	}
	a.metrics.Init(a.machine)

	logger.Debug("machine ready",
		zap.String("machine", cfg.Machine.ID),
		zap.String("table", doc.ID),
		zap.String("initial", compiled.Table.StateName(initial)),
		zap.Int("rules", len(compiled.Table.Rules())))
	return a, nil
}

func loadTable(path string) (*config.TableConfig, error) {
	if path == "" {
		return trafficlight.DefaultConfig()
	}
	return config.Load(path)
}

func (a *app) traceWriter(path string) (io.Writer, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		return a.errOut, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create trace file: %w", err)
	}
	a.closers = append(a.closers, f.Close)
	return f, nil
}

// event resolves an event name against the machine's table.
func (a *app) event(name string) (fsmtable.EventID, error) {
	id, ok := a.machine.Table().LookupEvent(name)
	if !ok {
		return 0, fmt.Errorf("%w %q", fsmtable.ErrUnknownEvent, name)
	}
	return id, nil
}

func (a *app) summary() error {
	transitions, rejections, err := metrics.Totals(a.gatherer)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\nSummary: %.0f transitions, %.0f rejected\n", transitions, rejections)
	return nil
}

// close flushes the logger, then releases files in reverse order of opening.
func (a *app) close() error {
	var errs []error
	if a.tracer != nil {
		if err := a.tracer.Err(); err != nil {
			errs = append(errs, fmt.Errorf("write trace: %w", err))
		}
	}
	_ = a.logger.Sync()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func colorProfile(w io.Writer, enabled bool) termenv.Profile {
	if !enabled || !isTerminal(w) {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}
