package roster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tyler180/sleeper-sync/internal/logging"
	"github.com/tyler180/sleeper-sync/internal/store"
)

// Season accepts 2025, 2025.0 or "2025"; null and "" decode to 0.
type Season int

func (s *Season) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = 0
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		str = strings.TrimSpace(str)
		if str == "" {
			*s = 0
			return nil
		}
		n, err := strconv.Atoi(str)
		if err != nil {
			return fmt.Errorf("season %q: %w", str, err)
		}
		*s = Season(n)
		return nil
	}
	// 2025.0 truncates like an int() cast
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("season %s: %w", b, err)
	}
	*s = Season(int(f))
	return nil
}

// BatchTarget is one entry of the scheduled targets list.
type BatchTarget struct {
	Username   string `json:"username"`
	UserID     string `json:"user_id"`
	LeagueID   string `json:"league_id"`
	LeagueName string `json:"league_name"`
	Season     Season `json:"season"`
}

func (t BatchTarget) Request() Request {
	return Request{
		Username:   t.Username,
		UserID:     t.UserID,
		Season:     int(t.Season),
		LeagueID:   t.LeagueID,
		LeagueName: t.LeagueName,
	}
}

// BatchItem is one target's outcome. Failures carry the raw target.
type BatchItem struct {
	OK          bool            `json:"ok"`
	Season      int             `json:"season,omitempty"`
	LeagueID    string          `json:"league_id,omitempty"`
	S3LatestURI *string         `json:"s3_latest_uri,omitempty"`
	Error       string          `json:"error,omitempty"`
	Target      json.RawMessage `json:"target,omitempty"`
}

// MarshalJSON keeps s3_latest_uri on successes, as null when nothing was
// published, and emits only error and target on failures.
func (it BatchItem) MarshalJSON() ([]byte, error) {
	if !it.OK {
		return json.Marshal(struct {
			OK     bool            `json:"ok"`
			Error  string          `json:"error"`
			Target json.RawMessage `json:"target,omitempty"`
		}{false, it.Error, it.Target})
	}
	return json.Marshal(struct {
		OK          bool    `json:"ok"`
		Season      int     `json:"season"`
		LeagueID    string  `json:"league_id"`
		S3LatestURI *string `json:"s3_latest_uri"`
	}{true, it.Season, it.LeagueID, it.S3LatestURI})
}

type BatchResult struct {
	Count   int         `json:"count"`
	Errors  int         `json:"errors"`
	Results []BatchItem `json:"results"`
}

// LoadTargets reads the JSON array of targets at key. An empty array is a
// valid, empty batch.
func LoadTargets(ctx context.Context, b *store.Bucket, key string) ([]json.RawMessage, error) {
	if !b.Enabled() {
		return nil, fmt.Errorf("%w: S3_BUCKET not set", ErrNoTargets)
	}
	var targets []json.RawMessage
	if err := b.GetJSON(ctx, key, &targets); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoTargets, b.URI(key), err)
	}
	if targets == nil {
		return nil, fmt.Errorf("%w: %s is not a JSON array", ErrNoTargets, b.URI(key))
	}
	return targets, nil
}

// RunBatch syncs each target in turn. A failing target is recorded and the
// batch moves on.
func (s *Syncer) RunBatch(ctx context.Context, targets []json.RawMessage) BatchResult {
	log := logging.OrDiscard(s.Log)
	res := BatchResult{Count: len(targets), Results: make([]BatchItem, 0, len(targets))}
	for i, raw := range targets {
		item := s.runTarget(ctx, raw)
		if !item.OK {
			res.Errors++
			log.Warn("roster batch target failed", "index", i, "err", item.Error)
		}
		res.Results = append(res.Results, item)
	}
	log.Info("OK roster batch", "count", res.Count, "errors", res.Errors)
	return res
}

func (s *Syncer) runTarget(ctx context.Context, raw json.RawMessage) BatchItem {
	fail := func(err error) BatchItem {
		return BatchItem{OK: false, Error: err.Error(), Target: raw}
	}
	var t BatchTarget
	if err := json.Unmarshal(raw, &t); err != nil {
		return fail(fmt.Errorf("decode target: %w", err))
	}
	snap, err := s.Sync(ctx, t.Request())
	if err != nil {
		return fail(err)
	}
	item := BatchItem{OK: true, Season: snap.Season, LeagueID: snap.League.LeagueID}
	if snap.Locations != nil {
		item.S3LatestURI = snap.LatestURI
	}
	return item
}
