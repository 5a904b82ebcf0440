// Command historia runs the Historia life-in-weeks journal web application.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/justestif/historia/internal/auth"
	"github.com/justestif/historia/internal/config"
	"github.com/justestif/historia/internal/db"
	"github.com/justestif/historia/internal/fixtures"
	"github.com/justestif/historia/internal/logger"
	"github.com/justestif/historia/internal/sqlite"
	"github.com/justestif/historia/internal/web"
	webfs "github.com/justestif/historia/web"
)

const (
	devNotice          = "Development mode: signed in as the sample user. Changes live only as long as the dev database."
	sessionPrunePeriod = time.Hour
)

func main() {
	var cfg config.Config
	kong.Parse(&cfg,
		kong.Name("historia"),
		kong.Description("A journal that shows your life as a grid of weeks."),
		kong.UsageOnError(),
	)

	if err := run(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logger.Init(logger.Config{Debug: cfg.Debug, Dir: cfg.LogDir}); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	// Create sub-filesystems for templates and static files
	templates, err := fs.Sub(webfs.TemplatesFS, "templates")
	if err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}

	static, err := fs.Sub(webfs.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("creating static filesystem: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverCfg := web.ServerConfig{
		Addr:        cfg.Addr,
		TemplatesFS: templates,
		StaticFS:    static,
		LifeWeeks:   cfg.LifeWeeks(),
	}

	if cfg.Dev {
		repo, err := sqlite.Open(ctx, cfg.DevDB)
		if err != nil {
			return fmt.Errorf("opening dev database: %w", err)
		}
		defer repo.Close()

		if err := fixtures.Seed(ctx, repo); err != nil {
			return fmt.Errorf("seeding dev journal: %w", err)
		}

		serverCfg.Repo = repo
		serverCfg.Sessions = web.NewSessionStore()
		serverCfg.Auth = auth.NewDevProvider(auth.Identity{
			UserID: fixtures.UserID,
			Email:  fixtures.Email,
			Name:   fixtures.Name,
		})
		serverCfg.Notice = devNotice
		logger.Warn("running in dev mode", "db", cfg.DevDB)
	} else {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}

		sessions := web.NewDBSessionStore(database.Sessions())
		go sessions.PruneExpired(ctx, sessionPrunePeriod)

		serverCfg.Repo = database
		serverCfg.Sessions = sessions
		serverCfg.Auth = auth.NewOAuthProvider(auth.Config{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			AuthURL:      cfg.OAuth.AuthURL,
			TokenURL:     cfg.OAuth.TokenURL,
			UserInfoURL:  cfg.OAuth.UserInfoURL,
			RedirectURL:  cfg.RedirectURL(),
			Scopes:       cfg.OAuth.Scopes,
		})
	}

	server, err := web.NewServer(serverCfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}
