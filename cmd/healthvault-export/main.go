package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claude/healthvault/internal/aggregate"
	"github.com/claude/healthvault/internal/archive"
	"github.com/claude/healthvault/internal/config"
	"github.com/claude/healthvault/internal/score"
	"github.com/claude/healthvault/internal/store"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	startStr := flag.String("start", "", "range start (YYYY-MM-DD); defaults to the oldest stored sample")
	endStr := flag.String("end", "", "range end (YYYY-MM-DD); defaults to now")
	exportID := flag.String("export-id", "", "stable export identity; empty generates a fresh one")
	dryRun := flag.Bool("dry-run", false, "build and hash the summary but don't upload")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("healthvault-export", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := store.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	start, end, err := resolveRange(ctx, db, *startStr, *endStr)
	if err != nil {
		log.Error("invalid range", "error", err)
		os.Exit(1)
	}
	log.Info("exporting range", "start", start.Format("2006-01-02"), "end", end.Format("2006-01-02"))

	samples, err := db.FetchSamples(ctx, start, end)
	if err != nil {
		log.Error("failed to fetch samples", "error", err)
		os.Exit(1)
	}
	if len(samples) == 0 {
		log.Info("no samples in range, nothing to export")
		return
	}

	state, err := archive.OpenStateDB(cfg.Archive.StateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if *dryRun {
		log.Info("DRY RUN mode — summary will be built and hashed but not uploaded")
	}

	client := archive.NewClient(cfg.Archive.URL, cfg.Archive.APIKey)
	builder := aggregate.NewBuilder(score.NewScorer())
	exporter := archive.NewExporter(client, state, builder, *dryRun, log)

	stats, err := exporter.Run(ctx, samples, *exportID)
	if err != nil {
		log.Error("export failed", "error", err)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("export complete")
}

func resolveRange(ctx context.Context, db *store.DB, startStr, endStr string) (time.Time, time.Time, error) {
	if startStr == "" {
		start, end, ok, err := db.SampleSpan(ctx)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if !ok {
			now := time.Now()
			return now, now, nil
		}
		return start, end.Add(24 * time.Hour), nil
	}

	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing start: %w", err)
	}
	end := time.Now()
	if endStr != "" {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing end: %w", err)
		}
	}
	return start, end, nil
}

func printStats(stats *archive.ExportStats) {
	fmt.Println()
	fmt.Println("=== Export Summary ===")
	fmt.Printf("  Days:          %d\n", stats.Days)
	fmt.Printf("  Metrics:       %d\n", stats.Metrics)
	fmt.Printf("  Records:       %d\n", stats.RecordCount)
	fmt.Printf("  Score:         %d (%s)\n", stats.Score, stats.Tier)
	fmt.Printf("  Digest:        %s\n", stats.Digest)
	if stats.Skipped {
		fmt.Println("  Upload:        skipped")
	} else {
		fmt.Printf("  URI:           %s\n", stats.URI)
	}
	fmt.Println()
}
