package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/taskr/pkg/taskr/admin"
	"github.com/mikepea/taskr/pkg/taskr/auth"
	"github.com/mikepea/taskr/pkg/taskr/cache"
	"github.com/mikepea/taskr/pkg/taskr/config"
	"github.com/mikepea/taskr/pkg/taskr/database"
	"github.com/mikepea/taskr/pkg/taskr/logging"
	"github.com/mikepea/taskr/pkg/taskr/metrics"
	"github.com/mikepea/taskr/pkg/taskr/middleware"
	"github.com/mikepea/taskr/pkg/taskr/server"
	"github.com/mikepea/taskr/pkg/taskr/tasks"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "taskr-server",
		Usage: "task management API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "load environment variables from `FILE` if it exists",
				Value:   ".env",
				EnvVars: []string{"TASKR_ENV_FILE"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "migrate the database, ensure an admin exists and serve HTTP",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "run database migrations and exit",
				Action: migrate,
			},
			{
				Name:   "stats",
				Usage:  "print task statistics as JSON, bypassing the cache",
				Action: stats,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("taskr-server failed")
	}
}

func setup(c *cli.Context) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(cfg.LogLevel, cfg.LogFormat), nil
}

func migrate(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	if _, err := database.OpenAndMigrate(cfg.DBDriver, cfg.DBDSN, log); err != nil {
		return err
	}
	log.Info("database migrations completed")
	return nil
}

func stats(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	db, err := database.Open(cfg.DBDriver, cfg.DBDSN, log)
	if err != nil {
		return err
	}

	snapshot, err := tasks.NewAggregator(db, tasks.Options{Log: log}).Compute(c.Context)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot)
}

func serve(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.OpenAndMigrate(cfg.DBDriver, cfg.DBDSN, log)
	if err != nil {
		return err
	}
	log.Info("database migrations completed")

	if _, err := admin.EnsureAdminExists(ctx, db, cfg.AdminEmail, cfg.AdminPassword, log); err != nil {
		return fmt.Errorf("ensure admin user exists: %w", err)
	}

	taskCache, closeCache, err := cache.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()
	log.WithFields(logrus.Fields{
		"backend": cfg.CacheBackend,
		"ttl":     cfg.CacheTTL(),
		"enabled": cfg.CacheEnabled(),
	}).Info("cache configured")

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	limiter.StartCleanup(time.Minute, ctx.Done())

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(server.Deps{
		DB:          db,
		Issuer:      auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Cache:       taskCache,
		Metrics:     metrics.New(),
		Log:         log,
		RateLimiter: limiter,
	})

	return server.Run(ctx, ":"+cfg.Port, router, 10*time.Second, log)
}
