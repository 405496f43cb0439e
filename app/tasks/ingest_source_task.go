package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"feedjunction/app/feed"
	"feedjunction/app/fetch"
	"feedjunction/app/store"
)

// IngestSourceTask fetches one source, optionally pipes the raw text through
// the source's transform hook, normalizes it, and merges the result into the
// store. Ingestion is all-or-nothing per source: any failure discards this
// run's update and leaves the stored state untouched.
type IngestSourceTask struct {
	Task
	client     *fetch.Client
	normalizer *feed.Normalizer
	store      *store.Store
}

func NewIngestSourceTask(sourceURL string, client *fetch.Client, normalizer *feed.Normalizer, st *store.Store) *IngestSourceTask {
	return &IngestSourceTask{
		Task:       NewTask(TaskTypeIngestSource, sourceURL),
		client:     client,
		normalizer: normalizer,
		store:      st,
	}
}

func (t *IngestSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	raw, err := t.client.Get(ctx, t.SourceURL)
	if err != nil {
		return fmt.Errorf("failed to fetch source: %w", err)
	}

	command, allowRaw := t.store.TransformOptions(t.SourceURL)
	if command != "" {
		transformed, err := fetch.RunTransform(ctx, command, raw)
		if err != nil {
			if !allowRaw {
				return fmt.Errorf("transform hook failed: %w", err)
			}
			slog.Warn("Transform hook failed, ingesting raw feed text",
				"source", t.SourceURL, "error", err)
		} else {
			raw = transformed
		}
	}

	canonical, err := t.normalizer.Run(raw)
	if err != nil {
		return fmt.Errorf("failed to normalize feed: %w", err)
	}

	t.store.Ingest(t.SourceURL, canonical)

	slog.Info("Task completed",
		"type", "IngestSource",
		"source", t.SourceURL,
		"items", len(canonical.Items),
		"duration", t.GetDuration())

	return nil
}
