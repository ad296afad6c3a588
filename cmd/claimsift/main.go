// Package main wires together the claim verification service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/claimsift/claimsift/internal/api"
	"github.com/claimsift/claimsift/internal/cache"
	"github.com/claimsift/claimsift/internal/checkpoint"
	"github.com/claimsift/claimsift/internal/claims"
	"github.com/claimsift/claimsift/internal/clock/system"
	"github.com/claimsift/claimsift/internal/config"
	"github.com/claimsift/claimsift/internal/extract"
	"github.com/claimsift/claimsift/internal/id/uuid"
	"github.com/claimsift/claimsift/internal/logging"
	"github.com/claimsift/claimsift/internal/metrics"
	"github.com/claimsift/claimsift/internal/search"
	"github.com/claimsift/claimsift/internal/search/providers"
	"github.com/claimsift/claimsift/internal/verify"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := system.New()
	idGen := uuid.NewUUIDGenerator()

	searchStore := cache.New(cfg.Cache.SearchMaxEntries, cfg.SearchCacheTTL())
	contentStore := cache.New(cfg.Cache.ContentMaxEntries, cfg.ContentCacheTTL())
	tracker := cache.NewPatternTracker()

	httpClient := &http.Client{Timeout: 15 * time.Second}
	var searchProviders []claims.SearchProvider
	if cfg.Search.SerperAPIKey != "" {
		searchProviders = append(searchProviders, providers.NewSerper(cfg.Search.SerperAPIKey, httpClient))
	}
	if cfg.Search.BraveAPIKey != "" {
		searchProviders = append(searchProviders, providers.NewBrave(cfg.Search.BraveAPIKey, httpClient))
	}
	searchProviders = append(searchProviders, providers.NewDuckDuckGo(httpClient, cfg.Search.UserAgent))

	router := search.NewRouter(search.RouterConfig{
		CacheTTL:            cfg.SearchCacheTTL(),
		SimilarityThreshold: cfg.Search.SimilarityThreshold,
		DefaultMaxResults:   cfg.Search.DefaultMaxResults,
	}, searchProviders, searchStore, clock, logger)

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.Logger = nil

	strategies := []extract.Strategy{
		extract.NewSelectorStrategy(retryClient, cfg.Search.UserAgent, cfg.Extract.MinContentLength),
		extract.NewReadabilityStrategy(httpClient, cfg.Search.UserAgent),
		extract.NewStructuralStrategy(cfg.Search.UserAgent),
	}
	var headless *extract.HeadlessStrategy
	if cfg.Extract.Headless.Enabled {
		headless, err = extract.NewHeadlessStrategy(extract.HeadlessConfig{
			MaxParallel:       cfg.Extract.Headless.MaxParallel,
			UserAgent:         cfg.Search.UserAgent,
			NavigationTimeout: time.Duration(cfg.Extract.Headless.NavTimeoutSec) * time.Second,
		})
		if err != nil {
			logger.Warn("headless strategy init failed", zap.Error(err))
		} else {
			strategies = append(strategies, headless)
			defer headless.Close()
		}
	}

	blockedDomains := cfg.Extract.BlockedDomains
	if len(blockedDomains) == 0 {
		blockedDomains = extract.DefaultBlockedDomains
	}
	engine := extract.NewEngine(extract.Config{
		Timeout:          cfg.ExtractTimeout(),
		MinContentLength: cfg.Extract.MinContentLength,
		MaxContentLength: cfg.Extract.MaxContentLength,
		CacheTTL:         cfg.ContentCacheTTL(),
	}, strategies, extract.NewBlocklist(blockedDomains), contentStore, clock, logger)

	monitor := checkpoint.NewMonitor(clock, logger)
	analyzer := verify.NewHeuristicAnalyzer(logger)
	scorer := verify.NewHeuristicScorer()

	orchestrator := verify.NewOrchestrator(verify.Config{
		MaxConcurrentClaims:  cfg.Verify.MaxConcurrentClaims,
		MaxConcurrentFetches: cfg.Verify.MaxConcurrentFetches,
		MaxQueriesPerClaim:   cfg.Verify.MaxQueriesPerClaim,
		MaxResultsPerQuery:   cfg.Verify.MaxResultsPerQuery,
		MaxSources:           cfg.Verify.MaxSources,
		MinCredibility:       cfg.Verify.MinCredibility,
		MaxExtractionTime:    cfg.ExtractionBudget(),
	}, router, engine, analyzer, scorer, monitor, tracker, clock, idGen, logger)

	if cfg.Prefetch.Enabled {
		prefetcher := cache.NewPrefetcher(cache.PrefetchConfig{
			Interval:        time.Duration(cfg.Prefetch.IntervalMinutes) * time.Minute,
			Window:          time.Duration(cfg.Prefetch.WindowHours) * time.Hour,
			MaxQueries:      cfg.Prefetch.MaxQueries,
			MinObservations: cfg.Prefetch.MinObservations,
		}, tracker, router, nil, logger)
		go func() {
			logger.Info("prefetcher started")
			prefetcher.Run(ctx)
		}()
	}

	apiServer := api.NewServer(orchestrator, router, searchStore, contentStore, monitor, logger, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
