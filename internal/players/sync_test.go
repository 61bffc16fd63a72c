package players

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyler180/sleeper-sync/internal/store"
	"github.com/tyler180/sleeper-sync/internal/store/storetest"
)

var fixedNow = time.Date(2025, 9, 7, 13, 4, 5, 0, time.UTC)

func newSyncer(t *testing.T, s3 *storetest.FakeS3) (*Syncer, string) {
	t.Helper()
	cache := filepath.Join(t.TempDir(), "cache", "players.json")
	s := &Syncer{
		Fetcher: &fakeFetcher{dir: liveDir()},
		Cache:   store.NewLocalCache(cache),
		Prefix:  "sleeper/players",
		Now:     func() time.Time { return fixedNow },
	}
	if s3 != nil {
		s.Bucket = store.NewBucket(s3, "bkt", nil)
	}
	return s, cache
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "p/2025-09-07.json", DayKey("p", fixedNow))
	assert.Equal(t, "p/current.json", CurrentKey("p"))
	assert.Equal(t, "p/players_core.json", CoreKey("p"))
	assert.Equal(t, "p/players_core.parquet", CoreParquetKey("p"))
}

func TestSync_LocalOnly(t *testing.T) {
	s, cache := newSyncer(t, nil)

	res, err := s.Sync(context.Background(), SyncOptions{Publish: true})
	require.NoError(t, err)
	assert.Equal(t, "2025-09-07T13:04:05Z", res.FetchedAt)
	assert.Equal(t, 1, res.Count)
	assert.Nil(t, res.Locations)
	assert.Equal(t, skippedWarning, res.Warning)

	b, err := os.ReadFile(cache)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"first_name":"Jane"`)

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "s3_day")
}

func TestSync_PublishesThreeObjects(t *testing.T) {
	s3 := storetest.NewFakeS3()
	s, _ := newSyncer(t, s3)

	res, err := s.Sync(context.Background(), SyncOptions{Publish: true})
	require.NoError(t, err)
	require.NotNil(t, res.Locations)
	assert.Empty(t, res.Warning)
	assert.Equal(t, "s3://bkt/sleeper/players/2025-09-07.json", *res.Day)
	assert.Equal(t, "s3://bkt/sleeper/players/current.json", *res.Current)
	assert.Equal(t, "s3://bkt/sleeper/players/players_core.json", *res.Core)
	assert.Nil(t, res.CoreParquet)
	assert.Equal(t, []string{
		"sleeper/players/2025-09-07.json",
		"sleeper/players/current.json",
		"sleeper/players/players_core.json",
	}, s3.Keys("sleeper/players/"))

	core, _ := s3.Get("sleeper/players/players_core.json")
	assert.JSONEq(t, `{"100":{"full_name":"Jane Doe","position":"QB","team":null,"bye_week":null,"status":null,"injury_status":null}}`, string(core))
}

func TestSync_PublishDisabledByOption(t *testing.T) {
	s3 := storetest.NewFakeS3()
	s, _ := newSyncer(t, s3)

	res, err := s.Sync(context.Background(), SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, skippedWarning, res.Warning)
	assert.Zero(t, s3.Puts)
}

func TestSync_FailedPutIsNullLocation(t *testing.T) {
	s3 := storetest.NewFakeS3()
	s3.FailPut["sleeper/players/current.json"] = true
	s, _ := newSyncer(t, s3)

	res, err := s.Sync(context.Background(), SyncOptions{Publish: true})
	require.NoError(t, err)
	assert.NotNil(t, res.Day)
	assert.Nil(t, res.Current)
	assert.NotNil(t, res.Core)

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"s3_current":null`)
}

func TestSync_Parquet(t *testing.T) {
	s3 := storetest.NewFakeS3()
	s, _ := newSyncer(t, s3)
	s.Parquet = true

	res, err := s.Sync(context.Background(), SyncOptions{Publish: true})
	require.NoError(t, err)
	require.NotNil(t, res.CoreParquet)
	_, ok := s3.Get("sleeper/players/players_core.parquet")
	assert.True(t, ok)
}

func TestSync_ExtraLocalCopy(t *testing.T) {
	s, _ := newSyncer(t, nil)
	out := filepath.Join(t.TempDir(), "nested", "copy.json")

	res, err := s.Sync(context.Background(), SyncOptions{Out: out})
	require.NoError(t, err)
	assert.Equal(t, out, res.LocalOut)
	_, err = os.Stat(out)
	assert.NoError(t, err)
}

func TestSync_FetchErrorAborts(t *testing.T) {
	s, cache := newSyncer(t, storetest.NewFakeS3())
	s.Fetcher = &fakeFetcher{err: errors.New("timeout")}

	_, err := s.Sync(context.Background(), SyncOptions{Publish: true})
	require.Error(t, err)
	_, statErr := os.Stat(cache)
	assert.True(t, os.IsNotExist(statErr))
}
