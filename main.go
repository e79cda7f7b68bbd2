package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// Shell convention for a run stopped by SIGINT.
const exitCancelled = 130

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func newRootCmd() *cobra.Command {
	args := &Arguments{}
	cmd := &cobra.Command{
		Use:           "synced_previews",
		Short:         "Creates a collage of synchronized pictures from ros2 bag image exports",
		Long:          "Aligns several folders of nanosecond-timestamped images onto one clock and writes one grid image per instant, ready to be turned into a video with ffmpeg.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := log.InfoLevel
			if args.Verbose {
				level = log.DebugLevel
			}
			logger := newLogger(os.Stderr, level)

			cfg, err := loadConfigFile(args.ConfigFile)
			if err != nil {
				return err
			}
			applyConfigFile(args, cfg, cmd.Flags().Changed)
			return runPreview(cmd.Context(), args, logger)
		},
	}
	registerFlags(cmd.Flags(), args)
	return cmd
}

// --- Main Logic ---

func runPreview(ctx context.Context, args *Arguments, logger *log.Logger) error {
	cfg, err := args.resolve()
	if err != nil {
		return err
	}
	if err := checkOutputDir(cfg.OutputDir); err != nil {
		return err
	}

	logger.Info("Loading image paths...")
	catalogs, err := scanTopics(cfg.Topics, logger, os.Stderr)
	if err != nil {
		return err
	}
	layout, err := resolveLayout(len(catalogs), cfg.Cols, cfg.Rows, cfg.TileWidth, cfg.TileHeight)
	if err != nil {
		return err
	}

	table, err := alignFrames(catalogs, cfg.PeriodNs)
	if err != nil {
		return err
	}
	frameCount := len(table.Rows)
	if frameCount == 0 {
		logger.Warn("No overlapping timestamps found across topics.")
		return nil
	}
	logger.Debug("Overlap window", "start", table.Start, "end", table.End, "period_ns", table.PeriodNs)

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return err
	}

	var labels *labeler
	if cfg.Labels {
		if labels, err = newLabeler(cfg.LabelColor); err != nil {
			return err
		}
	}
	comp := newCompositor(layout, cfg.OutputDir, cfg.Quality, labels)
	rows := table.Rows

	logger.Infof("Starting frame generation for %d frames (%dx%d grid)...", frameCount, layout.Cols, layout.Rows)
	bar := progressbar.Default(int64(frameCount), "Rendering")
	p := newPipeline(cfg.Workers, func(ctx context.Context, index int) error {
		return comp.renderFrame(ctx, index, rows[index])
	}, bar, logger)

	summary, err := p.run(ctx, frameCount)
	if err != nil {
		logger.Warn("Interrupt received, stopped rendering", "written", summary.Succeeded, "total", frameCount)
		return err
	}

	logger.Infof("Saved %d frames to %s/", summary.Succeeded, cfg.OutputDir)
	if len(summary.Failed) > 0 {
		logger.Warnf("%d of %d frames failed", len(summary.Failed), frameCount)
	}
	logger.Info("Assemble the video with", "cmd", ffmpegCommand(cfg.SourceFPS, cfg.OutputDir))
	return nil
}

func ffmpegCommand(fps float64, dir string) string {
	return fmt.Sprintf(`ffmpeg -framerate %g -i %s/frame_%%04d.jpg -vf "scale=1920:-2" -c:v libx264 -preset ultrafast -crf 30 output.mp4`, fps, dir)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(exitCancelled)
		}
		log.Error(err)
		os.Exit(1)
	}
}
