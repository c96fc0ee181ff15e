package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/planbiir/gpxtotal/internal/total"
)

func newCombineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combine [flags] file.gpx...",
		Short: "Write the traces as one merged GPX file or one file per trace",
		Example: `  gpxtotal combine morning.gpx afternoon.gpx
  gpxtotal combine --merge=false --hr=false -o out/ *.gpx
  gpxtotal combine --trace 1 a.gpx b.gpx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCombine,
	}

	f := cmd.Flags()
	f.Bool("merge", true, "Merge all traces into track.gpx")
	f.Bool("time", true, "Include timestamps, synthesizing missing ones")
	f.Bool("hr", true, "Include heart rate")
	f.Bool("atemp", true, "Include ambient temperature")
	f.Bool("cad", true, "Include cadence")
	f.StringP("output-dir", "o", ".", "Directory for the written files")
	f.Int("trace", -1, "Export only the trace at this index")
	return cmd
}

func runCombine(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	exp := s.cfg.Export

	fmt.Fprintf(out, "📖 Read %d traces\n", s.agg.Len())

	opts := total.RenderOptions{
		Merge:        exp.Merge,
		IncludeTime:  exp.IncludeTime,
		IncludeHR:    exp.IncludeHR,
		IncludeATemp: exp.IncludeATemp,
		IncludeCad:   exp.IncludeCad,
	}
	if k, _ := cmd.Flags().GetInt("trace"); k >= 0 {
		opts.Trace = &k
	}

	s.agg.AverageAdditionalData()
	docs, err := s.agg.Render(opts)
	if err != nil {
		return fmt.Errorf("error rendering GPX: %w", err)
	}

	if err := os.MkdirAll(exp.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, doc := range docs {
		path := filepath.Join(exp.OutputDir, doc.Name)
		fmt.Fprintf(out, "💾 Writing %s\n", path)
		if err := os.WriteFile(path, []byte(doc.Text), 0644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
	}

	fmt.Fprintf(out, "✅ Wrote %d file(s)\n", len(docs))
	return nil
}
