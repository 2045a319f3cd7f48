// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/doclink/internal/api"
	"github.com/starford/doclink/internal/index"
	"github.com/starford/doclink/internal/mcpserver"
	"github.com/starford/doclink/internal/resolve"
	"github.com/starford/doclink/internal/scan"
	"github.com/starford/doclink/internal/sse"
	"github.com/starford/doclink/internal/storage"
	"github.com/starford/doclink/internal/suggest"
	"github.com/starford/doclink/internal/urlcheck"
)

// Exit-status sentinels for scan mode.
var (
	// ErrBrokenLinks is returned when a scan finishes with unresolved
	// invalid links.
	ErrBrokenLinks = errors.New("broken links remain")
	// ErrStrictWarnings is returned in strict mode when the corpus has no
	// broken links but some links could not be verified.
	ErrStrictWarnings = errors.New("warnings present in strict mode")
)

// components holds everything a run mode needs, wired once.
type components struct {
	cfg     *Config
	logger  *slog.Logger
	store   *storage.FS
	db      *index.DB
	checker *scan.Orchestrator
}

func (c *components) close() {
	if c.db != nil {
		_ = c.db.Close()
	}
}

// buildComponents wires storage, index, resolver, URL validator, suggestion
// engine and orchestrator from the configuration. The decider and scan
// options vary per mode.
func buildComponents(app *application, decider scan.DecisionProvider, opts scan.Options, logWriter io.Writer) (*components, error) {
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	root := cfg.Corpus.Root
	if app.scan.Root != "" {
		root = app.scan.Root
	}

	store, err := storage.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, cfg.Corpus.Include, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	resolver := resolve.New(store.Root())
	urls := urlcheck.New(urlcheck.Config{
		Timeout:          cfg.External.Timeout(),
		PlaceholderHosts: cfg.External.PlaceholderHosts,
		TrustedHosts:     cfg.External.TrustedHosts,
		CheckAll:         app.scan.CheckExternal,
	})
	engine := suggest.New(resolver, db, suggest.Config{
		ActiveDir:    cfg.Corpus.ActiveDir,
		ArchiveDir:   cfg.Corpus.ArchiveDir,
		Extensions:   cfg.Corpus.Extensions,
		Replacements: cfg.Fixes.Replacements,
	})

	checker := scan.New(store, resolver, urls, engine, decider, logger, opts)

	return &components{cfg: cfg, logger: logger, store: store, db: db, checker: checker}, nil
}

func newApplication(opts []Option) (*application, error) {
	app := &application{stdin: os.Stdin, stdout: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// RunScan performs one corpus scan and writes the report to stdout. It
// returns ErrBrokenLinks or ErrStrictWarnings to signal a failing corpus;
// the CLI layer maps those to exit codes.
func RunScan(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	s := app.scan

	var decider scan.DecisionProvider
	if s.Fix && !s.Yes && !s.DryRun {
		decider = scan.NewInteractiveProvider(app.stdin, app.stdout)
	} else {
		decider = scan.AutoProvider{}
	}

	// Logs go to stderr so the report itself stays clean on stdout.
	comps, err := buildComponents(app, decider, scan.Options{
		Include: app.config.Corpus.Include,
		Fix:     s.Fix,
		DryRun:  s.DryRun,
	}, os.Stderr)
	if err != nil {
		return err
	}
	defer comps.close()

	report, err := comps.checker.Run(ctx)
	if err != nil {
		return err
	}
	report.Write(app.stdout)

	if !report.Clean() {
		return fmt.Errorf("%w: %d", ErrBrokenLinks, len(report.Unfixed))
	}
	if s.Strict && report.Warnings() > 0 {
		return fmt.Errorf("%w: %d", ErrStrictWarnings, report.Warnings())
	}
	return nil
}

// RunServe starts the HTTP server: report API, SSE stream, and a file
// watcher that re-checks documents as they change.
func RunServe(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	comps, err := buildComponents(app, nil, scan.Options{Include: cfg.Corpus.Include}, os.Stdout)
	if err != nil {
		return err
	}
	defer comps.close()
	logger := comps.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("corpus_root", comps.store.Root()),
		slog.String("index_path", cfg.Index.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := api.NewService(comps.store, comps.db, comps.checker)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, http.HandlerFunc(broker.ServeHTTP))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the corpus: every change re-checks the document and streams
	// the result.
	g.Go(func() error {
		return index.Watch(gCtx, comps.db, comps.store, cfg.Corpus.Include, logger, func(kind, path string) {
			broken := 0
			if kind == "deleted" {
				svc.ForgetDocument(path)
			} else if rep, checkErr := svc.CheckDocument(gCtx, path); checkErr == nil {
				broken = len(rep.Unfixed)
			}
			broker.PublishDocumentEvent(kind, path, broken)
		})
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the link-checking tools over MCP stdio. Logs go to stderr;
// stdout belongs to the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	comps, err := buildComponents(app, nil, scan.Options{Include: app.config.Corpus.Include}, os.Stderr)
	if err != nil {
		return err
	}
	defer comps.close()

	srv := mcpserver.New(comps.store, comps.db, comps.checker)
	comps.logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}
