package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pathfinder-app/pathfinder/config"
	agentcore "github.com/pathfinder-app/pathfinder/internal/agent/core"
	agenttele "github.com/pathfinder-app/pathfinder/internal/agent/telemetry"
	"github.com/pathfinder-app/pathfinder/internal/match"
	"github.com/pathfinder-app/pathfinder/internal/search"
	"github.com/pathfinder-app/pathfinder/internal/store"
)

// Run wires up dependencies and serves the HTTP API until the process exits.
func Run(cfg *config.Config, addr string) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	origins := cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	ctx := context.Background()

	// The job catalogue store is optional: when Postgres is unreachable the
	// matcher degrades to empty results instead of failing requests.
	var (
		st        *store.Store
		catalogue match.Catalogue = unavailableCatalogue{}
	)
	if cfg.Storage.Postgres.URL != "" || cfg.Storage.Postgres.Host != "" {
		if err := Migrate("file://migrations", cfg.Storage.Postgres.DSN(), "up", 0); err != nil {
			baseLogger.Printf("Warning: migrations failed: %v", err)
		}
		var err error
		st, err = store.NewWithDSN(ctx, cfg.Storage.Postgres.DSN())
		if err != nil {
			baseLogger.Printf("Warning: job catalogue unavailable: %v", err)
		} else {
			catalogue = st
		}
	} else {
		baseLogger.Printf("Warning: postgres not configured, job catalogue disabled")
	}

	tele := agenttele.NewTelemetry(cfg.Telemetry)
	e.GET("/metrics", echo.WrapHandler(tele.MetricsHandler()))
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	matcher := match.NewAggregator(catalogue, match.Options{
		Threshold:        cfg.Catalogue.MatchThreshold,
		MaxCandidates:    cfg.Catalogue.MaxCandidates,
		ExampleLimit:     cfg.Catalogue.ExampleLimit,
		DescriptionLimit: cfg.Catalogue.DescriptionLimit,
	})

	storage, err := agentcore.NewStorage(ctx, cfg.Storage, st)
	if err != nil {
		return fmt.Errorf("storage init: %w", err)
	}

	orchLogger := log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	orch, err := agentcore.NewOrchestrator(ctx, cfg, orchLogger, tele, matcher, storage)
	if err != nil {
		return fmt.Errorf("orchestrator init: %w", err)
	}

	idx, err := search.NewIndex()
	if err != nil {
		return fmt.Errorf("search index init: %w", err)
	}
	if cfg.Catalogue.RebuildSearchIndex && st != nil {
		postings, err := st.AllPostings(ctx)
		if err != nil {
			baseLogger.Printf("Warning: could not index job postings: %v", err)
		} else if err := idx.Rebuild(postings); err != nil {
			baseLogger.Printf("Warning: search index rebuild failed: %v", err)
		} else {
			baseLogger.Printf("indexed %d job postings", idx.Size())
		}
	}

	h := &Handler{Orch: orch, Index: idx, Telemetry: tele, Logger: baseLogger}
	h.Register(e.Group("/api"))

	if addr == "" {
		addr = cfg.Server.Address
		if addr == "" {
			addr = ":8080"
		}
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// unavailableCatalogue always reports the store as unreachable.
type unavailableCatalogue struct{}

func (unavailableCatalogue) AllTitles(ctx context.Context) ([]string, error) {
	return nil, match.ErrStoreUnavailable
}

func (unavailableCatalogue) PostingsForTitles(ctx context.Context, titles []string) ([]match.JobPosting, error) {
	return nil, match.ErrStoreUnavailable
}
