package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Sternrassler/wise-api-client/pkg/checkpoint"
	"github.com/Sternrassler/wise-api-client/pkg/client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var exportActivitiesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "wise_export_activities_total",
	Help: "Total activities written by wise-export",
})

// checkpointStore is the subset of *checkpoint.Store the exporter needs.
type checkpointStore interface {
	Get(ctx context.Context, key checkpoint.Key) (*checkpoint.Checkpoint, error)
	Set(ctx context.Context, key checkpoint.Key, cp *checkpoint.Checkpoint) error
	Delete(ctx context.Context, key checkpoint.Key) error
}

// exporter streams the activity feed of one profile as JSON lines.
type exporter struct {
	client *client.Client
	store  checkpointStore // nil disables resume
	out    io.Writer
	runID  string
	logger zerolog.Logger
}

// exportResult summarizes a finished run.
type exportResult struct {
	Exported int
	Resumed  bool
}

// Run writes every activity of profileID matching filters to e.out.
//
// With a store, the cursor of the next page is saved each time a page has
// been written completely, and a saved cursor is picked up on the next run
// with the same profile and filters. Delivery is at least once per page: a
// run killed between writing a page and saving its checkpoint writes that
// page again on resume.
//
// Once the feed is exhausted a done marker is saved and then the checkpoint
// is removed. A run that finds a done marker writes nothing and removes it.
// A failing store never aborts the export.
func (e *exporter) Run(ctx context.Context, profileID client.ID, filters client.ActivityFilters) (exportResult, error) {
	var res exportResult
	key := checkpoint.Key{ProfileID: profileID.String(), Filters: filters.Query()}

	if e.store != nil && filters.StartCursor == "" {
		cp, err := e.store.Get(ctx, key)
		switch {
		case err == nil && cp.Done:
			res.Exported = cp.Exported
			res.Resumed = true
			e.logger.Info().
				Str("previous_run_id", cp.RunID).
				Int("exported", cp.Exported).
				Msg("Previous export already finished")
			e.clear(ctx, key)
			return res, nil
		case err == nil:
			filters.StartCursor = cp.Cursor
			res.Exported = cp.Exported
			res.Resumed = true
			e.logger.Info().
				Str("previous_run_id", cp.RunID).
				Int("exported", cp.Exported).
				Msg("Resuming export from checkpoint")
		case errors.Is(err, checkpoint.ErrNotFound):
		default:
			e.logger.Warn().Err(err).Msg("Checkpoint lookup failed, starting from the first page")
		}
	}

	it, err := e.client.Activities(profileID, filters)
	if err != nil {
		return res, err
	}

	enc := json.NewEncoder(e.out)
	for it.Next(ctx) {
		if err := enc.Encode(it.Item()); err != nil {
			return res, fmt.Errorf("write activity: %w", err)
		}
		res.Exported++
		exportActivitiesTotal.Inc()

		if it.Buffered() == 0 && it.Cursor() != "" {
			e.save(ctx, key, it.Cursor(), res.Exported)
		}
	}
	if err := it.Err(); err != nil {
		return res, err
	}

	if e.store != nil {
		done := &checkpoint.Checkpoint{Exported: res.Exported, RunID: e.runID, Done: true}
		if err := e.store.Set(ctx, key, done); err != nil {
			e.logger.Warn().Err(err).Msg("Failed to mark export done")
		}
		e.clear(ctx, key)
	}

	return res, nil
}

func (e *exporter) clear(ctx context.Context, key checkpoint.Key) {
	if err := e.store.Delete(ctx, key); err != nil {
		e.logger.Warn().Err(err).Msg("Failed to remove checkpoint")
	}
}

func (e *exporter) save(ctx context.Context, key checkpoint.Key, cursor string, exported int) {
	if e.store == nil {
		return
	}

	cp := &checkpoint.Checkpoint{Cursor: cursor, Exported: exported, RunID: e.runID}
	if err := e.store.Set(ctx, key, cp); err != nil {
		e.logger.Warn().Err(err).Msg("Failed to save checkpoint")
		return
	}
	e.logger.Info().Int("exported", exported).Msg("Checkpoint saved")
}
