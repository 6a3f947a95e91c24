package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/comalice/fsmtable"
)

func newSendCmd(v *viper.Viper, cfgPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "send EVENT...",
		Short: "Dispatch events by name and print each outcome",
		Args:  cobra.MinimumNArgs(1),
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

			ids := make([]fsmtable.EventID, 0, len(args))
			for _, name := range args {
				id, err := a.event(name)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			ctx := cmd.Context()
			m := a.machine
			if err := m.Start(ctx); err != nil {
				return err
			}
			defer m.Stop(ctx)

			for _, id := range ids {
				fmt.Fprintln(a.out, m.Send(ctx, id))
			}
			a.lights.Current(m)
			return nil
		},
	}
}
