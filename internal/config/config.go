// Package config loads gpxtotal settings from defaults, an optional config
// file, GPXTOTAL_ environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/planbiir/gpxtotal/internal/colors"
	"github.com/planbiir/gpxtotal/internal/trace"
)

// FileName is the config file base name; viper adds the extension
// (gpxtotal.cfg.json, gpxtotal.cfg.yaml, ...).
const FileName = "gpxtotal.cfg"

// EnvPrefix prefixes environment overrides, e.g. GPXTOTAL_EXPORT_MERGE.
const EnvPrefix = "GPXTOTAL"

// Config is the decoded configuration.
type Config struct {
	LogLevel string       `json:"logLevel" mapstructure:"logLevel"`
	Activity string       `json:"activity" mapstructure:"activity"`
	Units    string       `json:"units" mapstructure:"units"`
	Palette  []string     `json:"palette" mapstructure:"palette"`
	Trace    TraceConfig  `json:"trace" mapstructure:"trace"`
	Export   ExportConfig `json:"export" mapstructure:"export"`
}

// TraceConfig holds per-trace metric settings.
type TraceConfig struct {
	StopSpeedKmh    float64       `json:"stopSpeedKmh" mapstructure:"stopSpeedKmh"`
	MaxStepGap      time.Duration `json:"maxStepGap" mapstructure:"maxStepGap"`
	ElevationWindow int           `json:"elevationWindow" mapstructure:"elevationWindow"`
	AnchorRadius    float64       `json:"anchorRadius" mapstructure:"anchorRadius"`
}

// ExportConfig holds the render defaults of the combine command.
type ExportConfig struct {
	Merge        bool   `json:"merge" mapstructure:"merge"`
	IncludeTime  bool   `json:"includeTime" mapstructure:"includeTime"`
	IncludeHR    bool   `json:"includeHr" mapstructure:"includeHr"`
	IncludeATemp bool   `json:"includeAtemp" mapstructure:"includeAtemp"`
	IncludeCad   bool   `json:"includeCad" mapstructure:"includeCad"`
	OutputDir    string `json:"outputDir" mapstructure:"outputDir"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"log-level":   "logLevel",
	"activity":    "activity",
	"units":       "units",
	"merge":       "export.merge",
	"time":        "export.includeTime",
	"hr":          "export.includeHr",
	"atemp":       "export.includeAtemp",
	"cad":         "export.includeCad",
	"output-dir":  "export.outputDir",
	"stop-speed":  "trace.stopSpeedKmh",
	"max-gap":     "trace.maxStepGap",
	"elev-window": "trace.elevationWindow",
}

func setDefaults(v *viper.Viper) {
	def := trace.DefaultOptions()

	v.SetDefault("logLevel", "info")
	v.SetDefault("activity", "cycling")
	v.SetDefault("units", "metric")
	v.SetDefault("palette", colors.DefaultPalette)

	v.SetDefault("trace.stopSpeedKmh", def.StopSpeedKmh)
	v.SetDefault("trace.maxStepGap", def.MaxStepGap.String())
	v.SetDefault("trace.elevationWindow", def.ElevationWindow)
	v.SetDefault("trace.anchorRadius", def.AnchorRadius)

	v.SetDefault("export.merge", true)
	v.SetDefault("export.includeTime", true)
	v.SetDefault("export.includeHr", true)
	v.SetDefault("export.includeAtemp", true)
	v.SetDefault("export.includeCad", true)
	v.SetDefault("export.outputDir", ".")
}

// Load builds the configuration. configDir may be empty, and a missing
// config file is not an error. flags may be nil; flags that were set on the
// command line override every other source.
func Load(configDir string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if configDir != "" {
		v.SetConfigName(FileName)
		v.AddConfigPath(configDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := trace.ParseUnits(c.Units); err != nil {
		return fmt.Errorf("config units: %w", err)
	}
	if c.Trace.StopSpeedKmh < 0 {
		return fmt.Errorf("config trace.stopSpeedKmh: must not be negative, got %v", c.Trace.StopSpeedKmh)
	}
	if c.Trace.MaxStepGap < 0 {
		return fmt.Errorf("config trace.maxStepGap: must not be negative, got %v", c.Trace.MaxStepGap)
	}
	return nil
}

// TraceOptions converts the trace settings into load options.
func (c *Config) TraceOptions() trace.Options {
	units, _ := trace.ParseUnits(c.Units)
	return trace.Options{
		Units:           units,
		StopSpeedKmh:    c.Trace.StopSpeedKmh,
		MaxStepGap:      c.Trace.MaxStepGap,
		ElevationWindow: c.Trace.ElevationWindow,
		AnchorRadius:    c.Trace.AnchorRadius,
	}
}
