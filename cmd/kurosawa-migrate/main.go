// Package main is the entry point for the Kurosawa Movies migration tool.
// It applies the embedded schema migrations to SQLite or PostgreSQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/prn-tf/kurosawa-movies/internal/config"
	"github.com/prn-tf/kurosawa-movies/internal/repository/postgres"
	"github.com/prn-tf/kurosawa-movies/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// migrator is the driver-independent surface the commands need.
type migrator interface {
	Version(ctx context.Context) (int, error)
	Migrate(ctx context.Context) error
	Close() error
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Kurosawa Movies Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		return

	case "help", "-h", "--help":
		printUsage()
		return

	case "up", "status":
		// handled below

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(os.Args[2:])

	ctx := context.Background()
	cfg := config.MustLoad(*configPath)

	m, err := open(ctx, cfg)
	if err != nil {
		fatal(err)
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Migrate(ctx); err != nil {
			fatal(err)
		}
		version, err := m.Version(ctx)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Database is up to date at schema version %d\n", version)

	case "status":
		version, err := m.Version(ctx)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Driver:         %s\n", cfg.Database.Driver)
		fmt.Printf("Schema version: %d\n", version)
	}
}

func open(ctx context.Context, cfg *config.Config) (migrator, error) {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)

	switch cfg.Database.Driver {
	case config.DriverSQLite:
		return sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
	case config.DriverPostgres:
		return postgres.NewDB(ctx, cfg.Database, logger)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Println(`Kurosawa Movies Migration Tool

Usage:
  kurosawa-migrate <command> [arguments]

Commands:
  up          Apply all pending migrations
  status      Show the current schema version
  version     Print version information
  help        Show this help message

All commands accept -config pointing at a YAML config file; the
KUROSAWA_* environment variables work as well.

Examples:
  kurosawa-migrate up
  kurosawa-migrate status
  kurosawa-migrate up -config ./config.yaml`)
}
