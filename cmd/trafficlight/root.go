package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:           "trafficlight",
		Short:         "A traffic light controller built on a table-driven state machine",
		Long:          `trafficlight runs a Red/Yellow/Green controller whose transitions come from a declarative table, either the embedded one or a YAML document given with --table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (YAML)")
	pf.String("table", "", "transition table document (default: embedded traffic light)")
	pf.String("initial", "", "start in this state instead of the table's initial state")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	pf.String("log-format", "console", "log format: console or json")
	pf.Bool("color", true, "colour light names when writing to a terminal")
	pf.String("trace", "", "write every outcome as a JSON line to FILE (- for stderr)")

	for key, flag := range map[string]string{
		"machine.table_path": "table",
		"machine.initial":    "initial",
		"logger.level":       "log-level",
		"logger.format":      "log-format",
		"output.color":       "color",
		"output.trace_path":  "trace",
	} {
		if err := v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	cfgPath := func() string { return cfgFile }
	root.AddCommand(
		newRunCmd(v, cfgPath),
		newCycleCmd(v, cfgPath),
		newSendCmd(v, cfgPath),
		newGraphCmd(v, cfgPath),
		newTableCmd(v, cfgPath),
		newValidateCmd(),
	)
	return root
}
