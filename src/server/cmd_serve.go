// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

package main

import (
	"context"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/godchecker/godchecker/src/metrics"
	"github.com/godchecker/godchecker/src/scheduler"
	"github.com/godchecker/godchecker/src/shellcache"
	"github.com/godchecker/godchecker/src/storage"
	"github.com/godchecker/godchecker/src/web"
)

var cmdServe = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server with the shell cache and the scrape schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	cmdRoot.AddCommand(cmdServe)
}

func runServe(ctx context.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.NewPool(cfg.Database.Driver, cfg.Database.Source,
		cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Init(); err != nil {
		return err
	}

	metrics.SetAppInfo(version, runtime.Version())

	sched := scheduler.New(log)

	data := &web.Data{
		DB:      db,
		Log:     log,
		Sched:   sched,
		Title:   cfg.Server.Title,
		Version: version,
	}
	origin := http.Handler(data.Routes())

	// The shell cache wraps the whole origin. Until activation succeeds
	// every request passes straight through.
	worker := shellcache.New(
		shellcache.NewMemoryStorage(shellcache.HandlerFetcher{Origin: origin}),
		cfg.Cache.Version, cfg.Cache.Shell, log)
	if err := installAndActivate(ctx, worker); err != nil {
		log.WithError(err).Warn("shell cache install failed, serving pass-through")
	}

	scraper := newScraper(cfg, log)
	if err := sched.Add("scrape", cfg.Scrape.Schedule, func(ctx context.Context) error {
		return runScrapeOnce(ctx, cfg, db, scraper)
	}); err != nil {
		return err
	}
	if err := sched.Add("shell-install-retry", cfg.Cache.RetryInstall, func(ctx context.Context) error {
		if worker.Active() {
			return nil
		}
		return installAndActivate(ctx, worker)
	}); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	mux := http.NewServeMux()
	mux.Handle("/", worker.Handler(origin))
	if cfg.Server.Metrics.Enabled {
		mux.Handle(cfg.Server.Metrics.Endpoint, metrics.Handler(metrics.Config{
			Enabled:  true,
			Endpoint: cfg.Server.Metrics.Endpoint,
			Token:    cfg.Server.Metrics.Token,
		}))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      web.SecurityHeadersMiddleware(web.MetricsMiddleware(mux)),
		ReadTimeout:  time.Duration(cfg.Server.Timeouts.Read) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.Timeouts.Write) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.Timeouts.Idle) * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithField("listen", cfg.Server.Listen).Info("server started")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// installAndActivate populates a fresh store for the configured version and
// switches serving to it. Either both steps succeed or serving stays as it
// was.
func installAndActivate(ctx context.Context, worker *shellcache.Worker) error {
	if err := worker.Install(ctx); err != nil {
		return err
	}
	return worker.Activate(ctx)
}
