package players

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tyler180/sleeper-sync/internal/logging"
	"github.com/tyler180/sleeper-sync/internal/sleeper"
	"github.com/tyler180/sleeper-sync/internal/store"
)

// ErrUnavailable is a source's definitive "I have nothing for you" signal;
// the chain moves on to the next source.
var ErrUnavailable = errors.New("player projection unavailable")

// Source yields a core projection or ErrUnavailable.
type Source interface {
	Name() string
	Load(ctx context.Context) (Core, error)
}

// Fetcher downloads the full directory from the remote API.
type Fetcher interface {
	FetchPlayers(ctx context.Context) (sleeper.Directory, error)
}

// Resolver tries its sources in order and returns the first success. Any
// error other than ErrUnavailable aborts the chain.
type Resolver struct {
	Sources []Source
	Log     *slog.Logger
}

func NewResolver(log *slog.Logger, sources ...Source) *Resolver {
	return &Resolver{Sources: sources, Log: logging.OrDiscard(log)}
}

// Load implements Source, so resolvers compose.
func (r *Resolver) Load(ctx context.Context) (Core, error) {
	core, _, err := r.Resolve(ctx)
	return core, err
}

func (r *Resolver) Name() string { return "chain" }

// Resolve also reports which source answered.
func (r *Resolver) Resolve(ctx context.Context) (Core, string, error) {
	log := logging.OrDiscard(r.Log)
	for _, s := range r.Sources {
		core, err := s.Load(ctx)
		if err == nil {
			log.Debug("player projection resolved", "source", s.Name(), "players", len(core))
			return core, s.Name(), nil
		}
		if errors.Is(err, ErrUnavailable) {
			log.Debug("player source unavailable", "source", s.Name(), "reason", err)
			continue
		}
		return nil, s.Name(), fmt.Errorf("player source %s: %w", s.Name(), err)
	}
	return nil, "", ErrUnavailable
}

// BucketSource reads a pre-built projection from the durable store, falling
// back to the full current directory. Store failures count as unavailable.
type BucketSource struct {
	Bucket *store.Bucket
	Prefix string
	Log    *slog.Logger
}

func (s *BucketSource) Name() string { return "s3" }

func (s *BucketSource) Load(ctx context.Context) (Core, error) {
	if !s.Bucket.Enabled() {
		return nil, fmt.Errorf("%w: bucket not configured", ErrUnavailable)
	}
	log := logging.OrDiscard(s.Log)
	for _, key := range []string{CoreKey(s.Prefix), CurrentKey(s.Prefix)} {
		var dir sleeper.Directory
		err := s.Bucket.GetJSON(ctx, key, &dir)
		if err == nil && len(dir) > 0 {
			// a stored core trims to itself
			return BuildCore(dir), nil
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Warn("s3 player read failed", "bucket", s.Bucket.Name(), "key", key, "err", err)
		}
	}
	return nil, fmt.Errorf("%w: no players object under %s", ErrUnavailable, s.Prefix)
}

// LocalSource reads the local cache file when it is within TTL.
type LocalSource struct {
	Cache *store.LocalCache
	TTL   time.Duration
	Log   *slog.Logger
}

func (s *LocalSource) Name() string { return "local" }

func (s *LocalSource) Load(ctx context.Context) (Core, error) {
	if s.Cache == nil || !s.Cache.Fresh(s.TTL) {
		return nil, fmt.Errorf("%w: local cache missing or older than %s", ErrUnavailable, s.TTL)
	}
	var dir sleeper.Directory
	if err := s.Cache.Read(&dir); err != nil {
		logging.OrDiscard(s.Log).Warn("local player cache unreadable", "path", s.Cache.Path, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return BuildCore(dir), nil
}

// LiveSource fetches the directory from the API. It never writes copies;
// fetch errors are fatal.
type LiveSource struct {
	Fetcher Fetcher
}

func (s *LiveSource) Name() string { return "live" }

func (s *LiveSource) Load(ctx context.Context) (Core, error) {
	dir, err := s.Fetcher.FetchPlayers(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCore(dir), nil
}
