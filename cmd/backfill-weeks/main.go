// backfill-weeks assigns the academic week to records that were stored without one.
//
// By default it only reports; -dry-run=false commits the batch in one transaction.
//
//	backfill-weeks [-dry-run=false] [-dsn postgres://...]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Spok95/school-discipline/internal/backfill"
	"github.com/Spok95/school-discipline/internal/config"
	"github.com/Spok95/school-discipline/internal/db"
	"github.com/Spok95/school-discipline/internal/logging"
	"github.com/Spok95/school-discipline/internal/week"
)

type options struct {
	dryRun bool
	dsn    string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("backfill-weeks", flag.ContinueOnError)
	fs.BoolVar(&o.dryRun, "dry-run", true, "only report what would change; -dry-run=false commits")
	fs.StringVar(&o.dsn, "dsn", os.Getenv("DATABASE_URL"), "postgres DSN (default $DATABASE_URL)")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.dsn == "" {
		return o, errors.New("DATABASE_URL не задан")
	}
	return o, nil
}

func main() {
	config.LoadDotEnv()
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	lg, err := logging.Init(os.Getenv("LOG_LEVEL"), os.Getenv("ENV"), os.Getenv("RELEASE"))
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()

	loc, month, day, err := config.Calendar()
	if err != nil {
		lg.Base.Fatal("calendar", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, opts.dsn)
	if err != nil {
		lg.Base.Fatal("db connect", zap.Error(err))
	}
	defer func() { _ = database.Close() }()

	rep, err := backfill.Run(ctx, db.NewStore(database), week.NewResolver(loc, month, day), opts.dryRun, lg.Named("backfill"))
	if err != nil {
		lg.Base.Fatal("backfill", zap.Error(err))
	}

	mode := "updated"
	if opts.dryRun {
		mode = "would update"
	}
	fmt.Printf("records without week: %d\n%s: %d\nskipped (outside academic weeks): %d\n",
		rep.Found, mode, len(rep.Planned), len(rep.Skipped))
	if !opts.dryRun {
		fmt.Printf("rows changed: %d\n", rep.Updated)
	}
}
