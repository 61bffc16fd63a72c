package sleepersync

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tyler180/sleeper-sync/internal/config"
	"github.com/tyler180/sleeper-sync/internal/logging"
	"github.com/tyler180/sleeper-sync/internal/players"
	"github.com/tyler180/sleeper-sync/internal/roster"
	"github.com/tyler180/sleeper-sync/internal/sleeper"
	"github.com/tyler180/sleeper-sync/internal/store"
)

// Deps is everything one invocation needs, built from a Config.
type Deps struct {
	Cfg       config.Config
	Sleeper   *sleeper.Client
	Bucket    *store.Bucket
	Ownership *store.OwnershipTable
	Log       *slog.Logger
}

// NewDeps validates cfg and creates AWS clients only for what is configured.
// An unusable AWS config is logged and the run continues local-only.
func NewDeps(ctx context.Context, cfg config.Config, log *slog.Logger) (*Deps, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log = logging.OrDiscard(log)
	if !cfg.DurableEnabled() && cfg.OwnershipTable == "" {
		log.Debug("no S3_BUCKET or OWNERSHIP_TABLE_NAME; running local-only")
		return Wire(cfg, log, nil, nil), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		log.Warn("aws config unusable; continuing local-only", "bucket", cfg.Bucket, "table", cfg.OwnershipTable, "err", err)
		return Wire(cfg, log, nil, nil), nil
	}
	var (
		s3cl  store.S3API
		ddbcl store.DynamoDBAPI
	)
	if cfg.DurableEnabled() {
		s3cl = s3.NewFromConfig(awsCfg)
	}
	if cfg.OwnershipTable != "" {
		ddbcl = dynamodb.NewFromConfig(awsCfg)
	}
	return Wire(cfg, log, s3cl, ddbcl), nil
}

// Wire builds Deps around the given clients; nil clients disable their store.
func Wire(cfg config.Config, log *slog.Logger, s3cl store.S3API, ddbcl store.DynamoDBAPI) *Deps {
	log = logging.OrDiscard(log)
	return &Deps{
		Cfg: cfg,
		Sleeper: sleeper.NewClient(cfg.SleeperBaseURL, cfg.HTTPTimeout,
			sleeper.WithSport(cfg.Sport), sleeper.WithUserAgent(cfg.UserAgent)),
		Bucket:    store.NewBucket(s3cl, cfg.Bucket, log),
		Ownership: store.NewOwnershipTable(ddbcl, cfg.OwnershipTable),
		Log:       log,
	}
}

func (d *Deps) PlayersSyncer() *players.Syncer {
	return &players.Syncer{
		Fetcher: d.Sleeper,
		Cache:   store.NewLocalCache(d.Cfg.PlayersCachePath),
		Bucket:  d.Bucket,
		Prefix:  d.Cfg.PlayersPrefix,
		Parquet: d.Cfg.PlayersParquet,
		Log:     d.Log,
	}
}

// PlayerSource is the projection chain for roster sync: bucket (when
// USE_S3_PLAYERS), fresh local cache, live fetch.
func (d *Deps) PlayerSource() *players.Resolver {
	var srcs []players.Source
	if d.Cfg.UseS3Players {
		srcs = append(srcs, &players.BucketSource{Bucket: d.Bucket, Prefix: d.Cfg.PlayersPrefix, Log: d.Log})
	}
	srcs = append(srcs,
		&players.LocalSource{Cache: store.NewLocalCache(d.Cfg.PlayersCachePath), TTL: d.Cfg.PlayersCacheTTL, Log: d.Log},
		&players.LiveSource{Fetcher: d.Sleeper},
	)
	return players.NewResolver(d.Log, srcs...)
}

func (d *Deps) RosterSyncer() *roster.Syncer {
	s := &roster.Syncer{
		API:           d.Sleeper,
		Players:       d.PlayerSource(),
		Publisher:     &roster.Publisher{Bucket: d.Bucket, Prefix: d.Cfg.RosterPrefix},
		DefaultSeason: d.Cfg.DefaultSeason,
		Log:           d.Log,
	}
	// a nil *OwnershipTable must not become a non-nil interface
	if d.Ownership != nil {
		s.Ownership = d.Ownership
	}
	return s
}

func (d *Deps) SyncPlayers(ctx context.Context, out string, publish bool) (*players.SyncResult, error) {
	return d.PlayersSyncer().Sync(ctx, players.SyncOptions{Publish: publish, Out: out})
}

func (d *Deps) SyncRoster(ctx context.Context, req roster.Request) (*roster.Snapshot, error) {
	return d.RosterSyncer().Sync(ctx, req)
}

// RunBatch loads the scheduled targets from the bucket and syncs each one.
func (d *Deps) RunBatch(ctx context.Context) (roster.BatchResult, error) {
	targets, err := roster.LoadTargets(ctx, d.Bucket, d.Cfg.RosterTargetsKey)
	if err != nil {
		return roster.BatchResult{}, err
	}
	return d.RosterSyncer().RunBatch(ctx, targets), nil
}
