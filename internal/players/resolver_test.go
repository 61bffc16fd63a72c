package players

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyler180/sleeper-sync/internal/sleeper"
	"github.com/tyler180/sleeper-sync/internal/store"
	"github.com/tyler180/sleeper-sync/internal/store/storetest"
)

type fakeFetcher struct {
	dir   sleeper.Directory
	err   error
	calls int
}

func (f *fakeFetcher) FetchPlayers(ctx context.Context) (sleeper.Directory, error) {
	f.calls++
	return f.dir, f.err
}

func liveDir() sleeper.Directory {
	return sleeper.Directory{"100": {"first_name": "Jane", "last_name": "Doe", "position": "QB"}}
}

func writeCache(t *testing.T, body string, age time.Duration) *store.LocalCache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "players.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	mt := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mt, mt))
	return store.NewLocalCache(path)
}

func TestResolver_PrefersBucketCore(t *testing.T) {
	s3 := storetest.NewFakeS3()
	s3.Set("p/players_core.json", []byte(`{"1":{"full_name":"From Core","position":"RB","team":null,"bye_week":null,"status":null,"injury_status":null}}`))
	s3.Set("p/current.json", []byte(`{"1":{"full_name":"From Current"}}`))
	f := &fakeFetcher{dir: liveDir()}

	r := NewResolver(nil,
		&BucketSource{Bucket: store.NewBucket(s3, "b", nil), Prefix: "p"},
		&LocalSource{Cache: writeCache(t, `{"1":{"full_name":"From Local"}}`, time.Hour), TTL: 24 * time.Hour},
		&LiveSource{Fetcher: f},
	)
	core, src, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s3", src)
	assert.Equal(t, "From Core", *core["1"].FullName)
	assert.Equal(t, "RB", *core["1"].Position)
	assert.Zero(t, f.calls)
}

func TestResolver_BucketFallsBackToCurrent(t *testing.T) {
	s3 := storetest.NewFakeS3()
	s3.Set("p/current.json", []byte(`{"1":{"first_name":"Cur","last_name":"Rent","college":"X"}}`))

	core, err := (&BucketSource{Bucket: store.NewBucket(s3, "b", nil), Prefix: "p"}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Cur Rent", *core["1"].FullName)
}

func TestResolver_BucketErrorsAreUnavailable(t *testing.T) {
	s3 := storetest.NewFakeS3()
	s3.GetErr = errors.New("AccessDenied")

	_, err := (&BucketSource{Bucket: store.NewBucket(s3, "b", nil), Prefix: "p"}).Load(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = (&BucketSource{Prefix: "p"}).Load(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestResolver_FreshLocalBeforeLive(t *testing.T) {
	f := &fakeFetcher{dir: liveDir()}
	r := NewResolver(nil,
		&BucketSource{Prefix: "p"},
		&LocalSource{Cache: writeCache(t, `{"7":{"full_name":"Local Guy"}}`, 23*time.Hour), TTL: 24 * time.Hour},
		&LiveSource{Fetcher: f},
	)
	core, src, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "local", src)
	assert.Equal(t, "Local Guy", *core["7"].FullName)
	assert.Zero(t, f.calls)
}

func TestResolver_StaleLocalGoesLive(t *testing.T) {
	f := &fakeFetcher{dir: liveDir()}
	r := NewResolver(nil,
		&LocalSource{Cache: writeCache(t, `{"7":{"full_name":"Local Guy"}}`, 25*time.Hour), TTL: 24 * time.Hour},
		&LiveSource{Fetcher: f},
	)
	core, src, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "live", src)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, "Jane Doe", *core["100"].FullName)
}

func TestResolver_CorruptLocalGoesLive(t *testing.T) {
	f := &fakeFetcher{dir: liveDir()}
	r := NewResolver(nil,
		&LocalSource{Cache: writeCache(t, `{not json`, time.Minute), TTL: 24 * time.Hour},
		&LiveSource{Fetcher: f},
	)
	_, src, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "live", src)
}

func TestResolver_LiveFailureAborts(t *testing.T) {
	boom := errors.New("upstream down")
	r := NewResolver(nil, &LiveSource{Fetcher: &fakeFetcher{err: boom}})
	_, _, err := r.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestResolver_EmptyChain(t *testing.T) {
	_, err := NewResolver(nil).Load(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
