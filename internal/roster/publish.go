package roster

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/tyler180/sleeper-sync/internal/store"
)

// tsLayout matches the dated keys of the other sync jobs.
const tsLayout = "20060102T150405Z"

// UnknownHandle replaces handles that sanitize to nothing.
const UnknownHandle = "unknown"

// Keys are the five object keys one snapshot is written under.
type Keys struct {
	Dated      string
	Latest     string
	UserStable string
	User       string
	UserLatest string
}

// SnapshotKeys lays out the keys:
//
//	<prefix>/<season>/<league>/<ts>.json
//	<prefix>/<season>/<league>/latest.json
//	<prefix>/by_user/<handle>/<season>/<league>/roster.json
//	<prefix>/by_user/<user_id>/<season>/<league>/<ts>.json
//	<prefix>/by_user/<user_id>/<season>/<league>/latest.json
func SnapshotKeys(prefix string, season int, leagueID, userID, username string, at time.Time) Keys {
	ts := at.UTC().Format(tsLayout)
	league := fmt.Sprintf("%s/%d/%s", prefix, season, leagueID)
	byID := fmt.Sprintf("%s/by_user/%s/%d/%s", prefix, userID, season, leagueID)
	return Keys{
		Dated:      league + "/" + ts + ".json",
		Latest:     league + "/latest.json",
		UserStable: fmt.Sprintf("%s/by_user/%s/%d/%s/roster.json", prefix, SanitizeHandle(username), season, leagueID),
		User:       byID + "/" + ts + ".json",
		UserLatest: byID + "/latest.json",
	}
}

// SanitizeHandle lowercases s and keeps only letters, digits and "-_.".
func SanitizeHandle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return UnknownHandle
	}
	return b.String()
}

// Publisher writes snapshots to the durable store.
type Publisher struct {
	Bucket *store.Bucket
	Prefix string
}

func (p *Publisher) Enabled() bool { return p != nil && p.Bucket.Enabled() }

// Publish encodes snap once and writes it under every key concurrently.
// Writes are independent: a failed one leaves its location nil.
func (p *Publisher) Publish(ctx context.Context, snap *Snapshot, at time.Time) (*Locations, error) {
	if !p.Enabled() {
		return nil, store.ErrUnavailable
	}
	body, err := store.EncodeJSON(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	username := ""
	if snap.User.Username != nil {
		username = *snap.User.Username
	}
	k := SnapshotKeys(p.Prefix, snap.Season, snap.League.LeagueID, snap.User.UserID, username, at)

	loc := &Locations{}
	slots := []struct {
		key string
		dst **string
	}{
		{k.Dated, &loc.URI},
		{k.Latest, &loc.LatestURI},
		{k.UserStable, &loc.UserStableURI},
		{k.User, &loc.UserURI},
		{k.UserLatest, &loc.UserLatestURI},
	}
	var wg sync.WaitGroup
	for _, s := range slots {
		wg.Add(1)
		go func() {
			defer wg.Done()
			*s.dst = p.Bucket.TryPutBytes(ctx, s.key, body, "application/json")
		}()
	}
	wg.Wait()
	return loc, nil
}
