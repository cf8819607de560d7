// Copyright (c) 2024 cblomart
// Licensed under the MIT License

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "contentdesk/docs"
	"contentdesk/internal/activity"
	"contentdesk/internal/api"
	"contentdesk/internal/backend"
	"contentdesk/internal/bookmarks"
	"contentdesk/internal/cache"
	"contentdesk/internal/catalog"
	"contentdesk/internal/config"
	"contentdesk/internal/logging"
	"contentdesk/internal/metrics"
	"contentdesk/internal/poller"
	"contentdesk/internal/storage"
	"contentdesk/internal/trends"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "contentdesk",
		Short:        "Content presentation backend",
		Long:         "Serves content collections with facets and load-more paging, per-client bookmarks, news activity and RSS trends.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	})
	root.AddCommand(newFacetsCommand())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "contentdesk version %s\n", version)
		},
	})
	return root
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	cacheManager := cache.NewManager(cfg.CacheTTL)

	var (
		kv    bookmarks.KV
		stats api.StatsProvider
	)
	store, err := storage.Open(cfg.DataDir, logger)
	if err != nil {
		logger.Warn("persistent storage unavailable, bookmarks will not survive a restart", zap.Error(err))
		kv = bookmarks.NewMemoryKV()
	} else {
		defer store.Close()
		kv = store
		stats = store
	}

	cat := catalog.New(cacheManager, cfg.FixturesDir, cfg.Collections, cfg.CacheTTL, logger, m)

	trendAgg := trends.New(cfg.Trends, logger)
	cat.Register(trends.CollectionName, trendAgg)

	client := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout, logger)
	tracker := activity.NewTracker(client, cacheManager, logger, m)
	defer tracker.Wait()

	bgPoller := poller.New(logger,
		poller.Task{
			Name:     poller.TaskCounters,
			Interval: cfg.CounterRefreshInterval,
			Run: func(ctx context.Context) error {
				tracker.RefreshWatched(ctx)
				return nil
			},
		},
		poller.Task{
			Name:     poller.TaskTrends,
			Interval: cfg.TrendPollInterval,
			Run: func(ctx context.Context) error {
				if _, err := trendAgg.Refresh(ctx); err != nil {
					return err
				}
				_, err := cat.Reload(ctx, trends.CollectionName)
				return err
			},
		},
		poller.Task{
			Name: poller.TaskFixtures,
			Run:  cat.ReloadAll,
		},
	)
	bgPoller.Start()
	defer bgPoller.Stop()

	server := api.NewServer(api.Deps{
		Config:    cfg,
		Cache:     cacheManager,
		Catalog:   cat,
		Bookmarks: bookmarks.NewRegistry(cacheManager, kv, cfg.BookmarkKey, cfg.CacheTTL, logger, m),
		Backend:   client,
		Tracker:   tracker,
		Poller:    bgPoller,
		Storage:   stats,
		Gatherer:  reg,
		Logger:    logger,
	})

	logger.Info("starting contentdesk",
		zap.String("version", version),
		zap.Int("port", cfg.Port),
		zap.String("fixtures_dir", cfg.FixturesDir),
		zap.String("backend", cfg.Backend.URL),
		zap.Int("trend_topics", len(cfg.Trends)),
	)

	if err := server.Start(ctx); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
