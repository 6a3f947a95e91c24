// Package appconfig loads the trafficlight CLI configuration with viper:
// defaults, then an optional YAML file, then TRAFFICLIGHT_* environment
// variables, then flags bound by the caller.
package appconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TRAFFICLIGHT_LOGGER_LEVEL.
const EnvPrefix = "TRAFFICLIGHT"

// Config holds all application configuration
type Config struct {
	Machine MachineConfig `mapstructure:"machine"`
	Logger  LoggerConfig  `mapstructure:"logger"`
	Cycle   CycleConfig   `mapstructure:"cycle"`
	Output  OutputConfig  `mapstructure:"output"`
}

// MachineConfig selects the table and starting state.
type MachineConfig struct {
	ID        string `mapstructure:"id"`
	TablePath string `mapstructure:"table_path"` // empty: embedded table
	Initial   string `mapstructure:"initial"`    // empty: table's initial state
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// CycleConfig drives the timer loop of the cycle command.
type CycleConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Cycles   int           `mapstructure:"cycles"`
	CarEvery int           `mapstructure:"car_every"` // inject CarDetected every N ticks; 0 disables
}

// OutputConfig controls narration.
type OutputConfig struct {
	Color     bool   `mapstructure:"color"`
	TracePath string `mapstructure:"trace_path"` // JSON-lines outcome trace; "-" for stderr
}

// Load reads configuration into v and returns the decoded Config. path may
// be empty, in which case only defaults, environment and bound flags apply.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// SetDefaults sets default configuration values
func SetDefaults(v *viper.Viper) {
	v.SetDefault("machine.id", "traffic-light")
	v.SetDefault("machine.table_path", "")
	v.SetDefault("machine.initial", "")

	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stderr")

	v.SetDefault("cycle.interval", 2*time.Second)
	v.SetDefault("cycle.cycles", 12)
	v.SetDefault("cycle.car_every", 0)

	v.SetDefault("output.color", true)
	v.SetDefault("output.trace_path", "")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error
	if c.Machine.ID == "" {
		errs = append(errs, errors.New("machine.id is required"))
	}
	switch c.Logger.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logger.format %q: want json or console", c.Logger.Format))
	}
	if c.Cycle.Interval <= 0 {
		errs = append(errs, errors.New("cycle.interval must be positive"))
	}
	if c.Cycle.Cycles < 0 {
		errs = append(errs, errors.New("cycle.cycles must not be negative"))
	}
	if c.Cycle.CarEvery < 0 {
		errs = append(errs, errors.New("cycle.car_every must not be negative"))
	}
	return errors.Join(errs...)
}
