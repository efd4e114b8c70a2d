// Package app assembles the application from configuration and runs it.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"soulthread/internal/api"
	"soulthread/internal/config"
	"soulthread/internal/generator"
	"soulthread/internal/mailer"
	"soulthread/internal/news"
	"soulthread/internal/ports"
	"soulthread/internal/scheduler"
	"soulthread/internal/storage"
	"soulthread/internal/usecase"
)

// App owns the wired components and their lifecycles.
type App struct {
	cfg        config.Config
	logger     *slog.Logger
	db         *sql.DB
	server     *http.Server
	sched      ports.Scheduler
	dispatcher *usecase.Dispatcher
}

// New builds the full object graph. Optional integrations (database, cache,
// keyed providers, AI, email) are wired only when configured; the pipeline
// degrades gracefully around the gaps.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	store := storage.NewPostgres(db, logger)

	cache := news.NewRedisCache(cfg.Redis.Addr, cfg.Redis.TTL(), logger)

	var sources []ports.NewsSource
	if cfg.Providers.NewsAPI.APIKey != "" {
		sources = append(sources, news.NewHeadlinesProvider(cfg.Providers.NewsAPI, nil))
	} else {
		logger.Warn("news api key missing, headlines provider disabled")
	}
	sources = append(sources,
		news.NewRedditProvider(cfg.Providers.Reddit, nil),
		news.NewHackerNewsProvider(cfg.Providers.HackerNews, nil),
		news.NewGitHubProvider(cfg.Providers.GitHub, nil),
	)
	if len(cfg.Providers.RSSFeeds) > 0 {
		sources = append(sources, news.NewRSSProvider(cfg.Providers.RSSFeeds, 0, nil))
	}

	var perplexity *news.PerplexityProvider
	if cfg.Providers.Perplexity.APIKey != "" {
		perplexity = news.NewPerplexityProvider(cfg.Providers.Perplexity, nil, cache, logger)
		sources = append(sources, perplexity)
	} else {
		logger.Warn("perplexity api key missing, real-time search provider disabled")
	}

	aggregator := news.NewAggregator(sources, logger)
	template := generator.NewTemplate()
	ai := generator.NewOpenAIClient(cfg.OpenAI, nil, logger)

	newsletter := usecase.NewNewsletter(usecase.NewsletterDeps{
		Profiles:   store,
		Aggregator: aggregator,
		Template:   template,
		AI:         ai,
		Logger:     logger,
	})

	resend := mailer.NewResendClient(cfg.Email, nil)
	batcher := mailer.NewBatcher(resend, store, cfg.Email.BatchSize, cfg.Email.BatchDelay(), logger)

	var topical ports.TopicNewsSource
	if perplexity != nil {
		topical = perplexity
	}
	dispatcher := usecase.NewDispatcher(usecase.DispatcherDeps{
		Prefs:      store,
		Profiles:   store,
		Aggregator: aggregator,
		Topical:    topical,
		Template:   template,
		AI:         ai,
		Batcher:    batcher,
		Logger:     logger,
	})

	server := api.NewServer(api.ServerDeps{
		Newsletter: newsletter,
		Dispatcher: dispatcher,
		Enhancer:   ai,
		Mail:       resend,
		CronSecret: cfg.Cron.Secret,
		Logger:     logger,
	})

	app := &App{
		cfg:    cfg,
		logger: logger,
		db:     db,
		server: &http.Server{
			Addr:              ":" + cfg.Server.Port,
			Handler:           server.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		dispatcher: dispatcher,
	}
	if cfg.Cron.Enabled {
		app.sched = scheduler.NewCron(cfg.Cron.Spec, logger)
	}
	return app, nil
}

// Run starts the scheduler and serves HTTP until ctx is canceled, then shuts
// both down.
func (a *App) Run(ctx context.Context) error {
	if a.sched != nil {
		if err := a.sched.Start(ctx, func(fireTime time.Time) {
			runCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if _, err := a.dispatcher.Run(runCtx, fireTime); err != nil {
				a.logger.Error("scheduled dispatch failed", "error", err)
			}
		}); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.server.Addr)
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if a.sched != nil {
		if err := a.sched.Stop(shutdownCtx); err != nil {
			a.logger.Warn("scheduler shutdown", "error", err)
		}
	}
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("database close", "error", err)
		}
	}
	return nil
}
