package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func newCycleCmd(v *viper.Viper, cfgPath func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Drive the controller from a ticking timer",
		Long:  `Dispatches TimerExpires on every tick, or CarDetected on every Nth tick with --car-every, until --cycles ticks have passed or the process is interrupted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := newApp(v, cfgPath(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.close(); err == nil {
					err = cerr
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := a.cycle(ctx); err != nil {
				return err
			}
			return a.summary()
		},
	}

	f := cmd.Flags()
	f.Duration("interval", 2*time.Second, "time between ticks")
	f.Int("cycles", 12, "number of ticks; 0 runs until interrupted")
	f.Int("car-every", 0, "dispatch CarDetected instead of TimerExpires every N ticks")
	for key, flag := range map[string]string{
		"cycle.interval":  "interval",
		"cycle.cycles":    "cycles",
		"cycle.car_every": "car-every",
	} {
		if err := v.BindPFlag(key, f.Lookup(flag)); err != nil {
			panic(err)
		}
	}
	return cmd
}

// cycle dispatches from this goroutine only; the ticker and signals are
// just select cases.
func (a *app) cycle(ctx context.Context) error {
	timer, err := a.event("TimerExpires")
	if err != nil {
		return err
	}
	car, err := a.event("CarDetected")
	if err != nil {
		return err
	}

	m := a.machine
	if err := m.Start(ctx); err != nil {
		return err
	}
	defer m.Stop(ctx)
	a.lights.Current(m)

	ticker := time.NewTicker(a.cfg.Cycle.Interval)
	defer ticker.Stop()

	cycles, carEvery := a.cfg.Cycle.Cycles, a.cfg.Cycle.CarEvery
	for tick := 1; cycles == 0 || tick <= cycles; tick++ {
		select {
		case <-ctx.Done():
			fmt.Fprintln(a.out, "\nShutting down gracefully...")
			return nil
		case <-ticker.C:
		}

		fmt.Fprintf(a.out, "\n--- Cycle %d ---\n", tick)
		evt := timer
		if carEvery > 0 && tick%carEvery == 0 {
			evt = car
		}
		out := m.Send(ctx, evt)
		a.lights.Outcome(out)
		a.lights.Current(m)
		a.logger.Info("tick", zap.Int("cycle", tick), zap.Stringer("outcome", out))
	}
	return nil
}
