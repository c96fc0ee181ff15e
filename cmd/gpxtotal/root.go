package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/planbiir/gpxtotal/internal/config"
	"github.com/planbiir/gpxtotal/internal/logging"
	"github.com/planbiir/gpxtotal/internal/total"
)

const version = "gpxtotal v1.0.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gpxtotal",
		Short:         "Combine GPX traces into one activity",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("config-dir", "", "Directory containing "+config.FileName+".json or .yaml")
	pf.String("env-file", "", "Load GPXTOTAL_* variables from this .env file")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("activity", "cycling", "Activity type: cycling or running")
	pf.String("units", "metric", "Units: metric or imperial")
	pf.Float64("stop-speed", 1.0, "Speed in km/h below which a step counts as stopped")
	pf.Duration("max-gap", 0, "Longest step counted as moving (default 5m)")
	pf.Int("elev-window", 0, "Median window for elevation gain (default 7)")

	root.AddCommand(newCombineCmd(), newStatsCmd())
	return root
}

// session is the state shared by subcommands once flags are parsed.
type session struct {
	cfg *config.Config
	log zerolog.Logger
	agg *total.Aggregator
}

func openSession(cmd *cobra.Command, paths []string) (*session, error) {
	flags := cmd.Flags()

	if envFile, _ := flags.GetString("env-file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("error loading env file: %w", err)
		}
	}

	configDir, _ := flags.GetString("config-dir")
	cfg, err := config.Load(configDir, flags)
	if err != nil {
		return nil, err
	}

	log := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	activity, err := total.ParseActivity(cfg.Activity)
	if err != nil {
		return nil, err
	}

	agg := total.New(
		total.WithLogger(log),
		total.WithActivity(activity),
		total.WithTraceOptions(cfg.TraceOptions()),
		total.WithPalette(cfg.Palette),
	)

	for _, path := range paths {
		if _, err := agg.AddFile(path); err != nil {
			return nil, err
		}
		log.Debug().Str("file", path).Msg("trace loaded")
	}

	return &session{cfg: cfg, log: log, agg: agg}, nil
}
