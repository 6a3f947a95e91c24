package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/comalice/fsmtable/internal/visualize"
)

func newTableCmd(v *viper.Viper, cfgPath func() string) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the transition table",
		Long:  `Prints the rules as a Markdown table, rendered for the terminal when stdout is a TTY.`,
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

			md := visualize.Markdown(a.machine.Table())
			if raw || !a.cfg.Output.Color || !isTerminal(a.out) {
				fmt.Fprint(a.out, md)
				return nil
			}

			r, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(100),
			)
			if err != nil {
				return fmt.Errorf("create renderer: %w", err)
			}
			rendered, err := r.Render(md)
			if err != nil {
				return fmt.Errorf("render table: %w", err)
			}
			fmt.Fprint(a.out, rendered)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print plain Markdown even on a terminal")
	return cmd
}
