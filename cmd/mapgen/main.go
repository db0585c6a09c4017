// Package main provides the map generator binary: ingest the mod source
// files and render the interactive HTML zone map.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hordetools/spawnedit/internal/analytics"
	"github.com/hordetools/spawnedit/internal/config"
	"github.com/hordetools/spawnedit/internal/mapgen"
	"github.com/hordetools/spawnedit/internal/model"
	"github.com/hordetools/spawnedit/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/spawnedit.yaml", "path to configuration file")
	outPath := flag.String("out", "", "output HTML path (default <export.output_dir>/zone_map.html)")
	title := flag.String("title", "", "document title")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *outPath == "" {
		*outPath = filepath.Join(cfg.Export.OutputDir, "zone_map.html")
	}

	if err := run(cfg, logger, *outPath, *title); err != nil {
		logger.Error("map generation failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("map written",
		zap.String("path", *outPath),
		zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)
}

func run(cfg config.Config, logger *zap.Logger, outPath, title string) error {
	result, err := model.Load(cfg.Sources.Paths(), cfg.World.Size)
	if err != nil {
		return fmt.Errorf("ingesting sources: %w", err)
	}
	for _, w := range result.Warnings {
		logger.Warn("parse warning",
			zap.Int("line", w.Line),
			zap.String("reason", w.Reason),
		)
	}
	for _, m := range result.Missing {
		logger.Warn("source file unavailable", zap.Error(m))
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	background := cfg.World.BackgroundImage
	if background != "" {
		copied, err := copyBackground(background, filepath.Dir(outPath))
		if err != nil {
			logger.Warn("background image not copied", zap.Error(err))
		} else {
			background = copied
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	danger := analytics.ComputeDanger(result.Snapshot)
	opts := mapgen.Options{
		Title:           title,
		WorldSize:       cfg.World.Size,
		ImageSize:       cfg.World.ImageSize,
		BackgroundImage: background,
	}
	if err := mapgen.Render(f, result.Snapshot, danger, opts); err != nil {
		return err
	}
	return f.Close()
}

// copyBackground places the background image next to the document so the
// page works from any directory. Returns the relative name to reference.
func copyBackground(src, outDir string) (string, error) {
	name := filepath.Base(src)
	dst := filepath.Join(outDir, name)
	if same, err := filepath.Abs(src); err == nil {
		if abs, err := filepath.Abs(dst); err == nil && same == abs {
			return name, nil
		}
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening background image: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("creating background copy: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", fmt.Errorf("copying background image: %w", err)
	}
	return name, out.Close()
}
