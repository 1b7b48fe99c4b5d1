// Package main is the entry point for the Kurosawa Movies admin CLI.
// It manages user accounts and seeds the movie catalog from JSON fixtures.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/prn-tf/kurosawa-movies/internal/config"
	"github.com/prn-tf/kurosawa-movies/internal/domain"
	"github.com/prn-tf/kurosawa-movies/internal/repository"
	"github.com/prn-tf/kurosawa-movies/internal/repository/postgres"
	"github.com/prn-tf/kurosawa-movies/internal/repository/sqlite"
	"github.com/prn-tf/kurosawa-movies/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("Kurosawa Movies Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		runUser(os.Args[2:])

	case "movies":
		runMovies(os.Args[2:])

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runUser(args []string) {
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("user create", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		username := fs.String("username", "", "username (required)")
		password := fs.String("password", "", "password (required)")
		email := fs.String("email", "", "email address (required)")
		firstName := fs.String("first-name", "", "first name")
		lastName := fs.String("last-name", "", "last name")
		admin := fs.Bool("admin", false, "grant the staff role")
		_ = fs.Parse(args[1:])

		withEnv(*configPath, func(ctx context.Context, env *environment) error {
			return createUser(ctx, env, createUserArgs{
				username:  *username,
				password:  *password,
				email:     *email,
				firstName: *firstName,
				lastName:  *lastName,
				admin:     *admin,
			})
		})

	case "list":
		fs := flag.NewFlagSet("user list", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		_ = fs.Parse(args[1:])

		withEnv(*configPath, listUsers)

	case "delete":
		fs := flag.NewFlagSet("user delete", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		id := fs.Int64("id", 0, "user id (required)")
		_ = fs.Parse(args[1:])

		withEnv(*configPath, func(ctx context.Context, env *environment) error {
			return deleteUser(ctx, env, *id)
		})

	case "promote":
		fs := flag.NewFlagSet("user promote", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		id := fs.Int64("id", 0, "user id (required)")
		_ = fs.Parse(args[1:])

		withEnv(*configPath, func(ctx context.Context, env *environment) error {
			return promoteUser(ctx, env, *id)
		})

	default:
		fmt.Fprintf(os.Stderr, "Unknown user command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func runMovies(args []string) {
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "import":
		fs := flag.NewFlagSet("movies import", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		_ = fs.Parse(args[1:])
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "movies import requires a fixture file argument")
			os.Exit(1)
		}
		file := fs.Arg(0)

		withEnv(*configPath, func(ctx context.Context, env *environment) error {
			return importMovies(ctx, env, file)
		})

	default:
		fmt.Fprintf(os.Stderr, "Unknown movies command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

// environment bundles what every admin command needs.
type environment struct {
	cfg    *config.Config
	logger zerolog.Logger
	users  repository.UserRepository
	movies repository.MovieRepository
}

// withEnv loads configuration, opens the store, runs fn and exits non-zero
// on failure.
func withEnv(configPath string, fn func(ctx context.Context, env *environment) error) {
	ctx := context.Background()
	cfg := config.MustLoad(configPath)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)

	env := &environment{cfg: cfg, logger: logger}
	var closeStore func()

	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			fatal(err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			fatal(err)
		}
		env.users = sqlite.NewUserRepository(db)
		env.movies = sqlite.NewMovieRepository(db)
		closeStore = func() { _ = db.Close() }

	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			fatal(err)
		}
		env.users = postgres.NewUserRepository(db)
		env.movies = postgres.NewMovieRepository(db)
		closeStore = func() { _ = db.Close() }

	default:
		fatal(fmt.Errorf("unknown database driver %q", cfg.Database.Driver))
	}
	defer closeStore()

	if err := fn(ctx, env); err != nil {
		closeStore()
		fatal(err)
	}
}

type createUserArgs struct {
	username  string
	password  string
	email     string
	firstName string
	lastName  string
	admin     bool
}

// createUser registers an account through the normal signup path; accounts
// created from the CLI never wait for activation.
func createUser(ctx context.Context, env *environment, args createUserArgs) error {
	if args.username == "" || args.password == "" || args.email == "" {
		return errors.New("username, password and email are required")
	}

	users := service.NewUserService(env.users, env.logger)
	user, err := users.Signup(ctx, service.SignupInput{
		Username:  args.username,
		Password:  args.password,
		Email:     args.email,
		FirstName: args.firstName,
		LastName:  args.lastName,
		IsStaff:   args.admin,
		IsActive:  true,
	})
	if err != nil {
		return err
	}

	role := "user"
	if user.IsStaff {
		role = "admin"
	}
	fmt.Printf("Created %s %q (id %d)\n", role, user.Username, user.ID)
	return nil
}

func listUsers(ctx context.Context, env *environment) error {
	users, err := env.users.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tACTIVE\tSTAFF")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%t\n", u.ID, u.Username, u.Email, u.IsActive, u.IsStaff)
	}
	return w.Flush()
}

func deleteUser(ctx context.Context, env *environment, id int64) error {
	if id < 1 {
		return errors.New("a valid -id is required")
	}
	if err := env.users.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted user %d\n", id)
	return nil
}

func promoteUser(ctx context.Context, env *environment, id int64) error {
	if id < 1 {
		return errors.New("a valid -id is required")
	}
	user, err := env.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user.IsStaff = true
	user.IsActive = true
	if err := env.users.Update(ctx, user); err != nil {
		return err
	}
	fmt.Printf("Promoted user %q (id %d) to admin\n", user.Username, user.ID)
	return nil
}

// movieFixture matches the JSON fixture format used for catalog seeding.
// The IMDB fixture spells popularity as "99popularity"; both spellings are
// accepted.
type movieFixture struct {
	Name         string   `json:"name"`
	Director     string   `json:"director"`
	IMDBScore    *float64 `json:"imdb_score"`
	Popularity   *float64 `json:"popularity"`
	Popularity99 *float64 `json:"99popularity"`
	Genres       []string `json:"genre"`
}

func (f movieFixture) popularity() *float64 {
	if f.Popularity99 != nil {
		return f.Popularity99
	}
	return f.Popularity
}

// importMovies seeds the catalog from a JSON fixture, running every entry
// through the same reconciliation path the API uses. Entries whose name is
// already taken are skipped.
func importMovies(ctx context.Context, env *environment, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fixtures []movieFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("parse fixture file: %w", err)
	}

	catalog := service.NewCatalogService(env.movies, nil, env.logger)
	seeder := &domain.User{IsStaff: true, IsActive: true}

	var created, skipped int
	for _, f := range fixtures {
		// The IMDB fixture pads director and genre names with stray
		// whitespace; trim it so "Comedy" and " Comedy" reconcile to one row.
		genres := make([]string, 0, len(f.Genres))
		for _, g := range f.Genres {
			genres = append(genres, strings.TrimSpace(g))
		}

		_, err := catalog.Create(ctx, seeder, service.MovieInput{
			Name:       strings.TrimSpace(f.Name),
			Director:   strings.TrimSpace(f.Director),
			IMDBScore:  f.IMDBScore,
			Popularity: f.popularity(),
			Genres:     genres,
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrMovieAlreadyExists):
			skipped++
		default:
			return fmt.Errorf("import %q: %w", f.Name, err)
		}
	}

	fmt.Printf("Imported %d movies (%d already present)\n", created, skipped)
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Println(`Kurosawa Movies Admin CLI

Usage:
  kurosawa-admin <command> [arguments]

Commands:
  user create    Create a user (-username -password -email [-first-name] [-last-name] [-admin])
  user list      List all users
  user delete    Delete a user (-id)
  user promote   Grant the staff role to a user (-id)
  movies import  Seed the catalog from a JSON fixture file
  version        Print version information
  help           Show this help message

All commands accept -config pointing at a YAML config file; the
KUROSAWA_* environment variables work as well.

Examples:
  kurosawa-admin user create -username admin -password secret -email admin@example.com -admin
  kurosawa-admin movies import imdb.json
  kurosawa-admin user promote -id 42`)
}
