package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/planbiir/gpxtotal/internal/export"
	"github.com/planbiir/gpxtotal/internal/total"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [flags] file.gpx...",
		Short: "Show aggregate statistics of the traces",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runStats,
	}
	cmd.Flags().Bool("json", false, "Output statistics as JSON")
	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args)
	if err != nil {
		return err
	}
	summary, err := s.agg.Summary()
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		jsonData, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling stats: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
		return nil
	}

	printStats(cmd.OutOrStdout(), summary)
	return nil
}

func printStats(w io.Writer, s total.Summary) {
	dist, speed, pace := "km", "km/h", "min/km"
	if s.Units == "imperial" {
		dist, speed, pace = "mi", "mi/h", "min/mi"
	}

	fmt.Fprintf(w, "\n📊 Activity Statistics:\n")
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(w, "🎯 Activity Type: %s\n", s.Activity)
	fmt.Fprintf(w, "🗂️  Traces: %d\n", s.Traces)
	fmt.Fprintf(w, "📏 Distance: %.1f %s\n", s.Distance/1000, dist)
	fmt.Fprintf(w, "⛰️  Elevation: %.0f m\n", s.Elevation)
	fmt.Fprintf(w, "⏱️  Moving Time: %s\n", s.MovingTime)
	if s.Activity == export.Running {
		fmt.Fprintf(w, "⚡ Pace: %s %s\n", s.MovingPace, pace)
	} else {
		fmt.Fprintf(w, "⚡ Speed: %.1f %s\n", s.MovingSpeed, speed)
	}
	if s.Sensors.HR != nil {
		fmt.Fprintf(w, "❤️  Heart Rate: %.1f bpm\n", *s.Sensors.HR)
	}
	if s.Sensors.ATemp != nil {
		fmt.Fprintf(w, "🌡️  Temperature: %.1f °C\n", *s.Sensors.ATemp)
	}
	if s.Sensors.Cad != nil {
		fmt.Fprintf(w, "🔄 Cadence: %.1f rpm\n", *s.Sensors.Cad)
	}
	if b := s.Bounds; b != nil {
		fmt.Fprintf(w, "🗺️  Bounds: %.6f,%.6f → %.6f,%.6f\n", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
	}
	for _, e := range s.Entries {
		fmt.Fprintf(w, "   %d. %s (%s): %.1f %s\n", e.Index+1, e.Name, e.Color, e.Distance/1000, dist)
	}
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
}
