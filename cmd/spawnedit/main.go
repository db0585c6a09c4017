// Package main provides the spawn zone editing tool: ingest the mod source
// files, report findings and analytics, replay edit scripts, and export the
// resulting code manifest.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hordetools/spawnedit/internal/analytics"
	"github.com/hordetools/spawnedit/internal/config"
	"github.com/hordetools/spawnedit/internal/editor"
	"github.com/hordetools/spawnedit/internal/export"
	"github.com/hordetools/spawnedit/internal/model"
	"github.com/hordetools/spawnedit/internal/observability"
	"github.com/hordetools/spawnedit/internal/watch"
)

func main() {
	configPath := flag.String("config", "configs/spawnedit.yaml", "path to configuration file")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: spawnedit -config <file> <analyze|export|watch> [options]")
		os.Exit(1)
	}

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

	switch cmd := flag.Arg(0); cmd {
	case "analyze":
		err = runAnalyze(cfg, logger)
	case "export":
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		editsPath := fs.String("edits", "", "path to the YAML edit script")
		outPath := fs.String("out", "", "manifest output path (default from config)")
		if err := fs.Parse(flag.Args()[1:]); err != nil {
			os.Exit(1)
		}
		if *editsPath == "" {
			fmt.Fprintln(os.Stderr, "usage: spawnedit export -edits <file> [-out <file>]")
			os.Exit(1)
		}
		err = runExport(cfg, logger, *editsPath, *outPath)
	case "watch":
		err = runWatch(cfg, logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (supported: analyze, export, watch)\n", cmd)
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		os.Exit(1)
	}
}

// ingest loads every source file and logs non-fatal problems.
func ingest(cfg config.Config, logger *zap.Logger) (*model.LoadResult, error) {
	start := time.Now()
	result, err := model.Load(cfg.Sources.Paths(), cfg.World.Size)
	if err != nil {
		return nil, fmt.Errorf("ingesting sources: %w", err)
	}

	for _, w := range result.Warnings {
		logger.Warn("parse warning",
			zap.Int("line", w.Line),
			zap.String("text", w.Text),
			zap.String("reason", w.Reason),
		)
	}
	for _, m := range result.Missing {
		logger.Warn("source file unavailable", zap.Error(m))
	}
	logger.Info("ingestion complete",
		zap.Int("dynamic_zones", len(result.Snapshot.Dynamics())),
		zap.Int("static_zones", len(result.Snapshot.Statics())),
		zap.Int("configs", len(result.Snapshot.Configs())),
		zap.Int("categories", len(result.Snapshot.Categories())),
		zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)
	return result, nil
}

func runAnalyze(cfg config.Config, logger *zap.Logger) error {
	result, err := ingest(cfg, logger)
	if err != nil {
		return err
	}
	printReport(result)
	return nil
}

func printReport(result *model.LoadResult) {
	snap := result.Snapshot

	fmt.Printf("dynamic zones: %d occupied of %d slots\n", snap.OccupiedDynamicCount(), model.DynamicSlots)
	fmt.Printf("static zones:  %d\n", len(snap.Statics()))
	fmt.Printf("configs: %d, categories: %d\n", len(snap.Configs()), len(snap.Categories()))

	if findings := snap.Findings(); len(findings) > 0 {
		fmt.Printf("\nunresolved references (%d):\n", len(findings))
		for _, f := range findings {
			fmt.Printf("  %s\n", f)
		}
	}

	unused := analytics.ComputeUnused(snap)
	if len(unused.Configs) > 0 || len(unused.Categories) > 0 || len(unused.Zombies) > 0 {
		fmt.Println("\nunused items:")
		for _, n := range unused.Configs {
			fmt.Printf("  config %d\n", n)
		}
		for _, c := range unused.Categories {
			fmt.Printf("  category %s\n", c)
		}
		for _, z := range unused.Zombies {
			fmt.Printf("  zombie %s\n", z)
		}
	}

	danger := analytics.ComputeDanger(snap)
	census := make(map[int]int)
	for _, zd := range danger.Zones {
		census[zd.Band]++
	}
	fmt.Println("\ndanger bands:")
	for band := 0; band < analytics.BandCount; band++ {
		fmt.Printf("  band %d/5: %d zones\n", band+1, census[band])
	}
	if n := census[analytics.BandNoData]; n > 0 {
		fmt.Printf("  no data:  %d zones\n", n)
	}
}

// editScript is the YAML replay format consumed by the export command.
type editScript struct {
	Edits []editEntry `yaml:"edits"`
}

type editEntry struct {
	// Action is one of "modify", "add", "move_resize".
	Action string `yaml:"action"`
	// Zone targets an existing zone for modify and move_resize.
	Zone string `yaml:"zone"`
	// Config is the config number to set; nil keeps the current value for
	// move_resize and is rejected for modify and add.
	Config *int `yaml:"config"`
	// Comment is the trailing comment to set.
	Comment *string `yaml:"comment"`
	// Rect is the target rectangle for add and move_resize.
	Rect *model.Rect `yaml:"rect"`
}

func runExport(cfg config.Config, logger *zap.Logger, editsPath, outPath string) error {
	result, err := ingest(cfg, logger)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(editsPath)
	if err != nil {
		return fmt.Errorf("reading edit script: %w", err)
	}
	var script editScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return fmt.Errorf("parsing edit script: %w", err)
	}

	session := editor.NewSession(result.Snapshot, cfg.World.MinZoneWidth, cfg.World.MinZoneHeight)
	for i, e := range script.Edits {
		if err := applyEdit(session, e); err != nil {
			return fmt.Errorf("edit %d (%s %s): %w", i+1, e.Action, e.Zone, err)
		}
	}
	if err := session.CommitAll(); err != nil {
		return fmt.Errorf("committing edits: %w", err)
	}

	manifest, err := export.Build(result.Snapshot, session.Committed())
	if err != nil {
		return fmt.Errorf("building manifest: %w", err)
	}
	out, err := manifest.JSON()
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	if outPath == "" {
		outPath = filepath.Join(cfg.Export.OutputDir, cfg.Export.ManifestName)
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(outPath, out, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	logger.Info("manifest written",
		zap.String("path", outPath),
		zap.Int("modified_dynamic", manifest.Summary.ModifiedDynamic),
		zap.Int("modified_static", manifest.Summary.ModifiedStatic),
		zap.Int("new_zones", manifest.Summary.NewZones),
		zap.Int("zones_remaining", manifest.Summary.ZonesRemaining),
	)
	return nil
}

func applyEdit(session *editor.Session, e editEntry) error {
	switch e.Action {
	case "modify":
		if e.Config == nil {
			return fmt.Errorf("modify requires a config value")
		}
		comment, err := commentOrCurrent(session, e)
		if err != nil {
			return err
		}
		return session.Modify(e.Zone, *e.Config, comment)
	case "add":
		if e.Config == nil || e.Rect == nil {
			return fmt.Errorf("add requires config and rect values")
		}
		comment := ""
		if e.Comment != nil {
			comment = *e.Comment
		}
		_, err := session.Add(*e.Rect, *e.Config, comment)
		return err
	case "move_resize":
		if e.Rect == nil {
			return fmt.Errorf("move_resize requires a rect value")
		}
		if err := session.StartMoveResize(e.Zone); err != nil {
			return err
		}
		if err := session.Drag(*e.Rect); err != nil {
			session.CancelMoveResize()
			return err
		}
		session.FinishMoveResize()
		config, err := configOrCurrent(session, e)
		if err != nil {
			return err
		}
		comment, err := commentOrCurrent(session, e)
		if err != nil {
			return err
		}
		// Confirmation folds config and comment into the pending record.
		return session.Modify(e.Zone, config, comment)
	default:
		return fmt.Errorf("unknown action %q", e.Action)
	}
}

func configOrCurrent(session *editor.Session, e editEntry) (int, error) {
	if e.Config != nil {
		return *e.Config, nil
	}
	z, err := session.Snapshot().DynamicZone(e.Zone)
	if err != nil {
		return 0, err
	}
	return z.Config, nil
}

func commentOrCurrent(session *editor.Session, e editEntry) (string, error) {
	if e.Comment != nil {
		return *e.Comment, nil
	}
	if z, err := session.Snapshot().DynamicZone(e.Zone); err == nil {
		return z.Comment, nil
	}
	z, err := session.Snapshot().StaticZone(e.Zone)
	if err != nil {
		return "", err
	}
	return z.Comment, nil
}

func runWatch(cfg config.Config, logger *zap.Logger) error {
	result, err := ingest(cfg, logger)
	if err != nil {
		return err
	}
	printReport(result)

	paths := cfg.Sources.Paths()
	watcher, err := watch.New(
		paths.DynamicZones, paths.StaticZones, paths.ConfigMappings, paths.Categories, paths.Health,
	)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	logger.Info("watching source files for changes")
	for {
		select {
		case path, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			logger.Info("source file changed, reloading", zap.String("path", path))
			// A fresh ingestion replaces the whole model; uncommitted
			// state never survives a reload.
			result, err := ingest(cfg, logger)
			if err != nil {
				logger.Error("reload failed", zap.Error(err))
				continue
			}
			printReport(result)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", zap.Error(err))
		case sig := <-sigCh:
			logger.Info("shutting down", zap.String("signal", sig.String()))
			return nil
		}
	}
}
