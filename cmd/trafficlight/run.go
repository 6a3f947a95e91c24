package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/comalice/fsmtable/internal/trafficlight"
)

func newRunCmd(v *viper.Viper, cfgPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Play the scripted demo sequence",
		Long:  `Starts the controller, walks Red -> Green -> Yellow -> Red, shows a rejected CarDetected, cycles back to Green and lets a waiting car turn the light Red.`,
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

			if _, err := trafficlight.Play(cmd.Context(), a.machine, a.lights, trafficlight.DemoScript()); err != nil {
				return err
			}
			return a.summary()
		},
	}
}
