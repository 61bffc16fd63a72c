package players

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tyler180/sleeper-sync/internal/logging"
	"github.com/tyler180/sleeper-sync/internal/store"
)

const skippedWarning = "S3_BUCKET not set or publish disabled; wrote local cache only"

func DayKey(prefix string, t time.Time) string {
	return fmt.Sprintf("%s/%s.json", prefix, t.UTC().Format("2006-01-02"))
}
func CurrentKey(prefix string) string     { return prefix + "/current.json" }
func CoreKey(prefix string) string        { return prefix + "/players_core.json" }
func CoreParquetKey(prefix string) string { return prefix + "/players_core.parquet" }

// SyncResult reports one players-sync run.
type SyncResult struct {
	FetchedAt string `json:"fetched_at"`
	Count     int    `json:"count"`
	*Locations
	Warning  string `json:"warning,omitempty"`
	LocalOut string `json:"local_out,omitempty"`
}

// Locations is present only when durable publication ran; a nil field means
// that write failed.
type Locations struct {
	Day         *string `json:"s3_day"`
	Current     *string `json:"s3_current"`
	Core        *string `json:"s3_core"`
	CoreParquet *string `json:"s3_core_parquet,omitempty"`
}

// Syncer downloads the player directory and persists it.
type Syncer struct {
	Fetcher Fetcher
	Cache   *store.LocalCache
	Bucket  *store.Bucket
	Prefix  string
	Parquet bool
	Now     func() time.Time
	Log     *slog.Logger
}

type SyncOptions struct {
	// Publish false skips durable writes even with a bucket configured.
	Publish bool
	// Out, when set, receives an extra copy of the full directory.
	Out string
}

// Sync fetches the directory once, always writes the local cache, and when
// a bucket is configured publishes the dated archive, current pointer and
// core projection. A fetch or local write failure aborts the run; durable
// writes are best effort.
func (s *Syncer) Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	log := logging.OrDiscard(s.Log)
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	full, err := s.Fetcher.FetchPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch players: %w", err)
	}
	fetchedAt := now().UTC()

	if err := s.Cache.Write(full); err != nil {
		return nil, fmt.Errorf("write players cache: %w", err)
	}

	res := &SyncResult{FetchedAt: fetchedAt.Format(time.RFC3339), Count: len(full)}

	if opts.Publish && s.Bucket.Enabled() {
		body, err := store.EncodeJSON(full)
		if err != nil {
			return nil, fmt.Errorf("encode players: %w", err)
		}
		core := BuildCore(full)
		loc := &Locations{
			Day:     s.Bucket.TryPutBytes(ctx, DayKey(s.Prefix, fetchedAt), body, "application/json"),
			Current: s.Bucket.TryPutBytes(ctx, CurrentKey(s.Prefix), body, "application/json"),
			Core:    s.Bucket.TryPutJSON(ctx, CoreKey(s.Prefix), core),
		}
		if s.Parquet {
			pq, err := EncodeCoreParquet(core)
			if err != nil {
				log.Warn("players parquet encode failed", "err", err)
			} else {
				loc.CoreParquet = s.Bucket.TryPutBytes(ctx, CoreParquetKey(s.Prefix), pq, "application/vnd.apache.parquet")
			}
		}
		res.Locations = loc
	} else {
		res.Warning = skippedWarning
		log.Info("players sync: durable publication skipped", "bucket_configured", s.Bucket.Enabled(), "publish", opts.Publish)
	}

	if opts.Out != "" {
		if err := store.WriteJSONFile(opts.Out, full); err != nil {
			return nil, fmt.Errorf("write %s: %w", opts.Out, err)
		}
		res.LocalOut = opts.Out
	}

	log.Info("OK players sync", "count", res.Count, "cache", s.Cache.Path, "bucket", s.Bucket.Name())
	return res, nil
}
