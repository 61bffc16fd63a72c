package roster

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tyler180/sleeper-sync/internal/logging"
	"github.com/tyler180/sleeper-sync/internal/players"
	"github.com/tyler180/sleeper-sync/internal/sleeper"
	"github.com/tyler180/sleeper-sync/internal/store"
)

// Ownership receives the per-player index of a published snapshot.
type Ownership interface {
	PutOwnershipRows(ctx context.Context, rows []store.OwnershipRow) (int, error)
	MarkSynced(ctx context.Context, season, leagueID, fetchedAt, latestURI string, players int) error
}

// Syncer runs the roster-sync pipeline. Publisher and Ownership are optional.
type Syncer struct {
	API           API
	Players       players.Source
	Publisher     *Publisher
	Ownership     Ownership
	DefaultSeason int
	Now           func() time.Time
	Log           *slog.Logger
}

// Sync resolves the target and the player projection, fetches members and
// rosters in parallel, joins them and publishes the snapshot. Upstream and
// resolution errors are fatal; storage errors are logged and skipped.
func (s *Syncer) Sync(ctx context.Context, req Request) (*Snapshot, error) {
	log := logging.OrDiscard(s.Log)
	if req.Season <= 0 {
		req.Season = s.DefaultSeason
	}

	t, err := ResolveTarget(ctx, s.API, req)
	if err != nil {
		return nil, err
	}
	leagueID := t.League.LeagueID
	log.Info("roster target resolved", "user_id", t.User.UserID, "username", t.User.Username,
		"season", t.Season, "league_id", leagueID, "league", t.League.Name, "status", t.League.Status)

	core, src, err := s.loadPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("player projection: %w", err)
	}

	var (
		members []sleeper.User
		rosters []sleeper.Roster
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = s.API.GetLeagueUsers(gctx, leagueID)
		if err != nil {
			return fmt.Errorf("league %s users: %w", leagueID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rosters, err = s.API.GetLeagueRosters(gctx, leagueID)
		if err != nil {
			return fmt.Errorf("league %s rosters: %w", leagueID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fetchedAt := s.now().UTC()
	snap := NewSnapshot(t, Enrich(rosters, members, core), fetchedAt)
	snap.PlayersSource = src

	if s.Publisher.Enabled() {
		loc, err := s.Publisher.Publish(ctx, snap, fetchedAt)
		if err != nil {
			return nil, err
		}
		snap.Locations = loc
	} else {
		log.Debug("roster publish skipped: no bucket configured", "league_id", leagueID)
	}

	if s.Ownership != nil {
		s.recordOwnership(ctx, snap)
	}

	if req.Out != "" {
		if err := store.WriteJSONFile(req.Out, snap); err != nil {
			return nil, fmt.Errorf("write %s: %w", req.Out, err)
		}
	}

	log.Info("OK roster sync", "league_id", leagueID, "teams", len(snap.Teams))
	return snap, nil
}

func (s *Syncer) recordOwnership(ctx context.Context, snap *Snapshot) {
	log := logging.OrDiscard(s.Log)
	season := strconv.Itoa(snap.Season)
	rows := OwnershipRows(snap)
	n, err := s.Ownership.PutOwnershipRows(ctx, rows)
	if err != nil {
		log.Warn("ownership rows write failed", "league_id", snap.League.LeagueID, "written", n, "err", err)
		return
	}
	latest := ""
	if snap.Locations != nil && snap.LatestURI != nil {
		latest = *snap.LatestURI
	}
	if err := s.Ownership.MarkSynced(ctx, season, snap.League.LeagueID, snap.FetchedAt, latest, n); err != nil {
		log.Warn("ownership meta update failed", "league_id", snap.League.LeagueID, "err", err)
	}
}

func (s *Syncer) loadPlayers(ctx context.Context) (players.Core, string, error) {
	if r, ok := s.Players.(*players.Resolver); ok {
		return r.Resolve(ctx)
	}
	core, err := s.Players.Load(ctx)
	return core, s.Players.Name(), err
}

func (s *Syncer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// OwnershipRows flattens a snapshot into one row per rostered player.
func OwnershipRows(snap *Snapshot) []store.OwnershipRow {
	season := strconv.Itoa(snap.Season)
	var rows []store.OwnershipRow
	for _, t := range snap.Teams {
		starters := idSet(t.Starters)
		taxi := stringSet(t.Taxi)
		reserve := stringSet(t.Reserve)
		for _, p := range t.Players {
			rows = append(rows, store.OwnershipRow{
				Season:   season,
				LeagueID: snap.League.LeagueID,
				PlayerID: p.PlayerID,
				RosterID: t.RosterID,
				OwnerID:  deref(t.Manager.UserID),
				Username: deref(t.Manager.Username),
				TeamName: deref(t.Manager.TeamName),
				Player:   deref(p.Name),
				Pos:      deref(p.Pos),
				Team:     deref(p.Team),
				Starter:  starters[p.PlayerID],
				Taxi:     taxi[p.PlayerID],
				Reserve:  reserve[p.PlayerID],
			})
		}
	}
	return rows
}

func idSet(vs []PlayerView) map[string]bool {
	m := make(map[string]bool, len(vs))
	for _, v := range vs {
		m[v.PlayerID] = true
	}
	return m
}

func stringSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
