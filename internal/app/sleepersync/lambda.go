package sleepersync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tyler180/sleeper-sync/internal/config"
	"github.com/tyler180/sleeper-sync/internal/logging"
	"github.com/tyler180/sleeper-sync/internal/players"
	"github.com/tyler180/sleeper-sync/internal/roster"
)

// PlayersEntrypoint is the players-sync Lambda handler.
func PlayersEntrypoint(ctx context.Context, raw Raw) (*players.SyncResult, error) {
	e, d, err := setup(ctx, raw)
	if err != nil {
		return nil, err
	}
	return d.SyncPlayers(ctx, e.Out, !e.SkipPublish)
}

// RosterEntrypoint is the roster-sync Lambda handler.
func RosterEntrypoint(ctx context.Context, raw Raw) (*roster.Snapshot, error) {
	e, d, err := setup(ctx, raw)
	if err != nil {
		return nil, err
	}
	return d.SyncRoster(ctx, e.RosterRequest())
}

// SchedulerEntrypoint runs roster sync for every target in ROSTER_TARGETS_KEY.
func SchedulerEntrypoint(ctx context.Context, raw Raw) (roster.BatchResult, error) {
	_, d, err := setup(ctx, raw)
	if err != nil {
		return roster.BatchResult{}, err
	}
	return d.RunBatch(ctx)
}

// setup decodes the event and re-reads config from the environment, so
// warm containers pick up changes.
func setup(ctx context.Context, raw Raw) (Event, *Deps, error) {
	var e Event
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &e); err != nil {
			return e, nil, fmt.Errorf("decode event: %w", err)
		}
	}
	cfg := config.FromEnv()
	d, err := NewDeps(ctx, cfg, logging.New(cfg.LogLevel))
	if err != nil {
		return e, nil, err
	}
	return e, d, nil
}
