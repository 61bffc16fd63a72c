package sleepersync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyler180/sleeper-sync/internal/config"
	"github.com/tyler180/sleeper-sync/internal/roster"
	"github.com/tyler180/sleeper-sync/internal/store/storetest"
)

type upstream struct {
	*httptest.Server
	playerCalls atomic.Int32
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	up := &upstream{}
	routes := map[string]string{
		"/user/jdoe":                `{"user_id":"u1","username":"jdoe","display_name":"J Doe"}`,
		"/user/u1/leagues/nfl/2025": `[{"league_id":"L1","name":"Main","status":"in_season"}]`,
		"/league/L1/users":          `[{"user_id":"u1","username":"jdoe"}]`,
		"/league/L1/rosters":        `[{"roster_id":1,"owner_id":"u1","league_id":"L1","players":["100","999"],"starters":["100"]}]`,
		"/players/nfl":              `{"100":{"first_name":"Jane","last_name":"Doe","position":"QB","team":"AAA"}}`,
	}
	up.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/players/nfl" {
			up.playerCalls.Add(1)
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(up.Close)
	return up
}

func testConfig(t *testing.T, baseURL string) config.Config {
	cfg := config.Default()
	cfg.SleeperBaseURL = baseURL
	cfg.PlayersCachePath = filepath.Join(t.TempDir(), "players.json")
	cfg.DefaultSeason = 2025
	return cfg
}

func TestWire_LocalOnly(t *testing.T) {
	up := newUpstream(t)
	d := Wire(testConfig(t, up.URL), nil, nil, nil)
	assert.False(t, d.Bucket.Enabled())
	assert.Nil(t, d.Ownership)
	assert.Nil(t, d.RosterSyncer().Ownership)

	res, err := d.SyncPlayers(context.Background(), "", true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.NotEmpty(t, res.Warning)

	// the fresh local cache now serves roster sync
	snap, err := d.SyncRoster(context.Background(), roster.Request{Username: "jdoe"})
	require.NoError(t, err)
	assert.Equal(t, "local", snap.PlayersSource)
	assert.Equal(t, int32(1), up.playerCalls.Load())
	assert.Equal(t, "Jane Doe", *snap.Teams[0].Players[0].Name)
}

func TestWire_PlayersFromBucket(t *testing.T) {
	up := newUpstream(t)
	s3 := storetest.NewFakeS3()
	cfg := testConfig(t, up.URL)
	cfg.Bucket = "bkt"
	cfg.UseS3Players = true
	d := Wire(cfg, nil, s3, nil)

	_, err := d.SyncPlayers(context.Background(), "", true)
	require.NoError(t, err)

	snap, err := d.SyncRoster(context.Background(), roster.Request{Username: "jdoe"})
	require.NoError(t, err)
	assert.Equal(t, "s3", snap.PlayersSource)
	require.NotNil(t, snap.Locations)
	assert.Equal(t, "s3://bkt/sleeper/rosters/2025/L1/latest.json", *snap.LatestURI)
	assert.Len(t, s3.Keys("sleeper/rosters/"), 5)
	assert.Len(t, s3.Keys("sleeper/players/"), 3)
}

func TestRunBatch(t *testing.T) {
	up := newUpstream(t)
	s3 := storetest.NewFakeS3()
	cfg := testConfig(t, up.URL)
	cfg.Bucket = "bkt"
	d := Wire(cfg, nil, s3, nil)

	_, err := d.RunBatch(context.Background())
	assert.ErrorIs(t, err, roster.ErrNoTargets)

	s3.Set(cfg.RosterTargetsKey, []byte(`[{"username":"jdoe","league_id":"L1","season":"2025"},{"username":"ghost"}]`))
	res, err := d.RunBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 1, res.Errors)
	assert.True(t, res.Results[0].OK)
}

func TestPlayersEntrypoint_LocalOnly(t *testing.T) {
	up := newUpstream(t)
	t.Setenv("SLEEPER_BASE_URL", up.URL)
	t.Setenv("S3_BUCKET", "")
	t.Setenv("OWNERSHIP_TABLE_NAME", "")
	t.Setenv("PLAYERS_CACHE_PATH", filepath.Join(t.TempDir(), "p.json"))
	t.Setenv("LOG_LEVEL", "error")

	res, err := PlayersEntrypoint(context.Background(), Raw(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)

	_, err = PlayersEntrypoint(context.Background(), Raw(`{"out": 5}`))
	assert.Error(t, err)
}

func TestRosterEntrypoint(t *testing.T) {
	up := newUpstream(t)
	t.Setenv("SLEEPER_BASE_URL", up.URL)
	t.Setenv("S3_BUCKET", "")
	t.Setenv("OWNERSHIP_TABLE_NAME", "")
	t.Setenv("PLAYERS_CACHE_PATH", filepath.Join(t.TempDir(), "p.json"))
	t.Setenv("LOG_LEVEL", "error")

	snap, err := RosterEntrypoint(context.Background(), Raw(`{"username":"jdoe","season":"2025"}`))
	require.NoError(t, err)
	assert.Equal(t, "L1", snap.League.LeagueID)
	assert.Equal(t, "live", snap.PlayersSource)
}
