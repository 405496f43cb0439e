package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/lo"

	"feedjunction/app/cfg"
	"feedjunction/app/feed"
	"feedjunction/app/fetch"
	"feedjunction/app/media"
	"feedjunction/app/sources"
	"feedjunction/app/store"
	"feedjunction/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting feed junction", "version", appCfg.Version, "command", appCfg.Command)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Load(appCfg.DBPath)
	if err != nil {
		// Load failures degrade to a cold state; ingestion proceeds and a
		// later save rebuilds the document.
		var persistenceErr *store.PersistenceError
		if errors.As(err, &persistenceErr) {
			slog.Error("Failed to load store, starting from empty state", "path", appCfg.DBPath, "error", err)
		}
		st = store.New()
	}

	switch appCfg.Command {
	case "fetch":
		runFetch(ctx, appCfg, st)
	case "publish":
		runPublish(ctx, appCfg, st)
	}
}

func runFetch(ctx context.Context, appCfg *cfg.Cfg, st *store.Store) {
	configured, err := sources.Load(appCfg.SourcesFile)
	if err != nil {
		slog.Error("Failed to load sources file", "path", appCfg.SourcesFile, "error", err)
		os.Exit(1)
	}

	for _, source := range configured {
		st.SeedSource(source.URL, source.Transform, source.AllowRawOnTransformError, source.Retain())
	}

	urls := lo.Uniq(append(lo.Map(configured, func(s sources.Source, _ int) string {
		return s.URL
	}), appCfg.URLs...))
	if len(urls) == 0 {
		slog.Error("No feed sources given; pass URLs or configure a sources file")
		os.Exit(1)
	}

	client := fetch.NewClient(time.Duration(appCfg.Timeout)*time.Second, appCfg.UserAgent)
	normalizer := feed.NewNormalizer()

	batch := lo.Map(urls, func(url string, _ int) tasks.TaskInterface {
		return tasks.NewIngestSourceTask(url, client, normalizer, st)
	})

	runner := tasks.NewRunner(appCfg.WorkerCount, 5*time.Minute)
	failed := runner.Run(ctx, batch)

	// Single-writer checkpoint: the save happens once, after every
	// per-source merge has finished.
	if err := st.Save(appCfg.DBPath); err != nil {
		slog.Error("Failed to save store", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}

	slog.Info("Store saved", "path", appCfg.DBPath, "sources", len(urls), "failed", failed)
}

func runPublish(ctx context.Context, appCfg *cfg.Cfg, st *store.Store) {
	synthesizer := feed.NewSynthesizer()
	combined := synthesizer.Run(st.Policy(), st.SourceItems())

	if appCfg.HostPrefix != "" {
		fetcher := media.NewHTTPFetcher(time.Duration(appCfg.Timeout)*time.Second, appCfg.MediaDir, appCfg.UserAgent)
		relocator := media.NewRelocator(fetcher, appCfg.WorkerCount)
		relocator.Run(ctx, combined.Items, appCfg.HostPrefix)
	}

	output, err := feed.NewGenerator().Run(combined)
	if err != nil {
		slog.Error("Failed to serialize output feed", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(appCfg.OutputPath, []byte(output), 0o644); err != nil {
		slog.Error("Failed to write output feed", "path", appCfg.OutputPath, "error", err)
		os.Exit(1)
	}

	slog.Info("Published combined feed", "path", appCfg.OutputPath, "items", len(combined.Items))
}
