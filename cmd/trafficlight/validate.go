package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comalice/fsmtable/internal/config"
	"github.com/comalice/fsmtable/internal/registry"
	"github.com/comalice/fsmtable/internal/trafficlight"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check table files against the traffic light registry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := registry.New()
			if err := trafficlight.Register(reg, trafficlight.Discard()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var errs []error
			for _, path := range args {
				doc, err := config.Load(path)
				if err == nil {
					var c *config.Compiled
					if c, err = doc.Compile(reg); err == nil {
						fmt.Fprintf(out, "%s: ok (%d states, %d events, %d rules)\n", path,
							len(c.Table.States()), len(c.Table.Events()), len(c.Table.Rules()))
						continue
					}
				}
				fmt.Fprintf(out, "%s: %v\n", path, err)
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
			}
			return errors.Join(errs...)
		},
	}
}
