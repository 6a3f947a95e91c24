package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/comalice/fsmtable/internal/visualize"
)

func newGraphCmd(v *viper.Viper, cfgPath func() string) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the transition table as a diagram",
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

			t, cur := a.machine.Table(), a.machine.CurrentState()
			switch format {
			case "dot":
				fmt.Fprint(a.out, visualize.DOT(t, cur))
			case "mermaid":
				fmt.Fprint(a.out, visualize.Mermaid(t, cur))
			case "json":
				data, err := visualize.JSON(t, cur)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, string(data))
			default:
				return fmt.Errorf("unknown format %q (want dot, mermaid or json)", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, mermaid or json")
	return cmd
}
