package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultSleeperBaseURL   = "https://api.sleeper.app/v1"
	DefaultSport            = "nfl"
	DefaultUserAgent        = "sleeper-sync/1.0"
	DefaultHTTPTimeout      = 60 * time.Second
	DefaultRegion           = "us-east-1"
	DefaultPlayersPrefix    = "sleeper/players"
	DefaultRosterPrefix     = "sleeper/rosters"
	DefaultPlayersCachePath = ".players_nfl.json"
	DefaultPlayersCacheTTL  = 24 * time.Hour
	DefaultRosterTargetsKey = "sleeper/config/roster_targets.json"
)

// Config enumerates every option recognized by the players and roster syncs.
// It is built once per invocation and passed down explicitly.
type Config struct {
	SleeperBaseURL string
	Sport          string
	UserAgent      string
	HTTPTimeout    time.Duration

	// Bucket empty means durable publication is disabled.
	Bucket        string
	Region        string
	PlayersPrefix string
	RosterPrefix  string

	PlayersCachePath string
	PlayersCacheTTL  time.Duration

	// UseS3Players makes roster sync consult the bucket before the local cache.
	UseS3Players     bool
	RosterTargetsKey string

	PlayersParquet bool
	OwnershipTable string

	DefaultSeason int
	LogLevel      string
}

// Default returns the configuration with every option at its default.
func Default() Config {
	return Config{
		SleeperBaseURL:   DefaultSleeperBaseURL,
		Sport:            DefaultSport,
		UserAgent:        DefaultUserAgent,
		HTTPTimeout:      DefaultHTTPTimeout,
		Region:           DefaultRegion,
		PlayersPrefix:    DefaultPlayersPrefix,
		RosterPrefix:     DefaultRosterPrefix,
		PlayersCachePath: DefaultPlayersCachePath,
		PlayersCacheTTL:  DefaultPlayersCacheTTL,
		RosterTargetsKey: DefaultRosterTargetsKey,
		DefaultSeason:    time.Now().Year(),
		LogLevel:         "info",
	}
}

// FromEnv overlays environment variables on Default.
func FromEnv() Config {
	d := Default()
	ttlHours := envInt("PLAYERS_CACHE_TTL_HR", int(d.PlayersCacheTTL/time.Hour))
	return Config{
		SleeperBaseURL:   strings.TrimRight(envStr("SLEEPER_BASE_URL", d.SleeperBaseURL), "/"),
		Sport:            envStr("SLEEPER_SPORT", d.Sport),
		UserAgent:        envStr("USER_AGENT", d.UserAgent),
		HTTPTimeout:      envDuration("HTTP_TIMEOUT", d.HTTPTimeout),
		Bucket:           envStr("S3_BUCKET", ""),
		Region:           envStr("AWS_REGION", d.Region),
		PlayersPrefix:    strings.Trim(envStr("PLAYERS_S3_PREFIX", d.PlayersPrefix), "/"),
		RosterPrefix:     strings.Trim(envStr("ROSTER_S3_PREFIX", d.RosterPrefix), "/"),
		PlayersCachePath: envStr("PLAYERS_CACHE_PATH", d.PlayersCachePath),
		PlayersCacheTTL:  time.Duration(ttlHours) * time.Hour,
		UseS3Players:     envBool("USE_S3_PLAYERS", false),
		RosterTargetsKey: envStr("ROSTER_TARGETS_KEY", d.RosterTargetsKey),
		PlayersParquet:   envBool("PLAYERS_PARQUET", false),
		OwnershipTable:   envStr("OWNERSHIP_TABLE_NAME", ""),
		DefaultSeason:    envInt("SEASON", d.DefaultSeason),
		LogLevel:         envStr("LOG_LEVEL", d.LogLevel),
	}
}

// DurableEnabled reports whether a bucket is configured.
func (c Config) DurableEnabled() bool { return c.Bucket != "" }

func (c Config) Validate() error {
	var errs []error
	if c.SleeperBaseURL == "" {
		errs = append(errs, errors.New("sleeper base url is empty"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http timeout must be positive, got %s", c.HTTPTimeout))
	}
	if c.PlayersCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("players cache ttl must not be negative, got %s", c.PlayersCacheTTL))
	}
	if c.PlayersCachePath == "" {
		errs = append(errs, errors.New("players cache path is empty"))
	}
	if c.PlayersPrefix == "" || c.RosterPrefix == "" {
		errs = append(errs, errors.New("s3 prefixes must not be empty"))
	}
	if c.DefaultSeason <= 0 {
		errs = append(errs, fmt.Errorf("invalid default season %d", c.DefaultSeason))
	}
	return errors.Join(errs...)
}
