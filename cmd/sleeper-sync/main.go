// Command sleeper-sync runs the players and roster syncs locally.
//
//	sleeper-sync players-sync [-out path] [-no-s3]
//	sleeper-sync roster-sync -username jdoe [-season 2025] [-league-id ID | -league-name NAME] [-out path]
//	sleeper-sync roster-batch
//
// Configuration comes from the same environment variables as the Lambdas.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tyler180/sleeper-sync/internal/app/sleepersync"
	"github.com/tyler180/sleeper-sync/internal/config"
	"github.com/tyler180/sleeper-sync/internal/logging"
	"github.com/tyler180/sleeper-sync/internal/roster"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	cfg := config.FromEnv()
	log := logging.NewWithWriter(stderr, cfg.LogLevel)

	cmd, rest := args[0], args[1:]
	var (
		result any
		err    error
	)
	switch cmd {
	case "players-sync":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		fs.SetOutput(stderr)
		out := fs.String("out", "", "also write the full directory to this file")
		noS3 := fs.Bool("no-s3", false, "skip durable publication even if S3_BUCKET is set")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		var d *sleepersync.Deps
		if d, err = sleepersync.NewDeps(ctx, cfg, log); err == nil {
			result, err = d.SyncPlayers(ctx, *out, !*noS3)
		}

	case "roster-sync":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		fs.SetOutput(stderr)
		var req roster.Request
		fs.StringVar(&req.Username, "username", "", "Sleeper username (not display name)")
		fs.StringVar(&req.UserID, "user-id", "", "Sleeper user_id, if no username")
		fs.IntVar(&req.Season, "season", cfg.DefaultSeason, "season year")
		fs.StringVar(&req.LeagueID, "league-id", "", "league_id to sync")
		fs.StringVar(&req.LeagueName, "league-name", "", "league name to sync (case-insensitive)")
		fs.StringVar(&req.Out, "out", "", "also write the snapshot to this file")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		var d *sleepersync.Deps
		if d, err = sleepersync.NewDeps(ctx, cfg, log); err == nil {
			result, err = d.SyncRoster(ctx, req)
		}

	case "roster-batch":
		var d *sleepersync.Deps
		if d, err = sleepersync.NewDeps(ctx, cfg, log); err == nil {
			result, err = d.RunBatch(ctx)
		}

	case "-h", "-help", "--help", "help":
		usage(stdout)
		return 0

	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		usage(stderr)
		return 2
	}

	if err != nil {
		log.Error(cmd+" failed", "err", err)
		return 1
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		log.Error("encode result", "err", err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: sleeper-sync <players-sync|roster-sync|roster-batch> [flags]")
}
