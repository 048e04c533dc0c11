package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskdesk/internal/api"
	apiMiddleware "github.com/phrazzld/taskdesk/internal/api/middleware"
	"github.com/phrazzld/taskdesk/internal/client"
	"github.com/phrazzld/taskdesk/internal/config"
	"github.com/phrazzld/taskdesk/internal/events"
	"github.com/phrazzld/taskdesk/internal/i18n"
	"github.com/phrazzld/taskdesk/internal/platform/migrations"
	"github.com/phrazzld/taskdesk/internal/search"
	"github.com/phrazzld/taskdesk/internal/service"
	"github.com/phrazzld/taskdesk/internal/store"
	"github.com/phrazzld/taskdesk/internal/ui/taskform"
)

// application holds the wired dependencies of a running server.
type application struct {
	config      *config.Config
	logger      *slog.Logger
	db          *sql.DB
	index       *search.Index
	taskService service.TaskService
	jobService  service.JobService
	bundle      *i18n.Bundle
}

// newApplication opens the database, applies migrations when configured,
// fills the search index and builds the services.
func newApplication(ctx context.Context, cfg *config.Config, log *slog.Logger) (*application, error) {
	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	app := &application{config: cfg, logger: log, db: db}
	if err := app.init(ctx); err != nil {
		app.cleanup()
		return nil, err
	}
	return app, nil
}

func (app *application) init(ctx context.Context) error {
	cfg := app.config

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(ctx, app.db, cfg.Database.Driver); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	taskStore, jobStore := newStores(cfg.Database.Driver, app.db, app.logger)

	index, err := search.NewIndex(app.logger)
	if err != nil {
		return fmt.Errorf("failed to create search index: %w", err)
	}
	app.index = index
	emitter := events.NewInMemoryEventEmitter(app.logger)
	emitter.RegisterHandler(app.index)

	tasks, err := taskStore.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tasks for indexing: %w", err)
	}
	jobs, err := jobStore.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load jobs for indexing: %w", err)
	}
	if err := app.index.Reindex(ctx, tasks, jobs); err != nil {
		return fmt.Errorf("failed to rebuild search index: %w", err)
	}

	tx := store.NewSQLTransactor(app.db)
	app.taskService, err = service.NewTaskService(taskStore, tx, app.index, emitter, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}
	app.jobService, err = service.NewJobService(jobStore, tx, app.index, emitter, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create job service: %w", err)
	}

	app.bundle, err = i18n.NewBundle(cfg.UI.DefaultLocale)
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}
	return nil
}

// apiBaseURL is where the task screens reach the REST API: the configured
// URL, or this server's own listener.
func (app *application) apiBaseURL() string {
	if app.config.Client.APIBaseURL != "" {
		return app.config.Client.APIBaseURL
	}
	return fmt.Sprintf("http://127.0.0.1:%d", app.config.Server.Port)
}

// setupRouter creates the router with middleware, the REST API, the task
// screens and the health check.
func (app *application) setupRouter(apiBaseURL string) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	api.RegisterRoutes(r,
		api.NewTaskHandler(app.taskService, app.logger),
		api.NewJobHandler(app.jobService, app.logger))

	apiClient, err := client.New(apiBaseURL,
		time.Duration(app.config.Client.TimeoutSeconds)*time.Second,
		client.WithLogger(app.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	forms, err := taskform.NewHandler(apiClient.Tasks(), apiClient.Jobs(), app.bundle, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task screens: %w", err)
	}
	forms.RegisterRoutes(r)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, taskform.ListPath, http.StatusFound)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r, nil
}

// startHTTPServer serves router until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverCtx, cancelServer := context.WithCancel(ctx)
	defer cancelServer()

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error("Server failed", "error", err)
			errCh <- err
			cancelServer()
		}
	}()

	<-serverCtx.Done()
	app.logger.Info("Shutting down server...")

	timeout := time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("Server shutdown failed", "error", err)
		app.cleanup()
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	app.cleanup()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	default:
	}
	app.logger.Info("Server shutdown completed")
	return nil
}

// cleanup releases the database connection.
func (app *application) cleanup() {
	if app.index != nil {
		if err := app.index.Close(); err != nil {
			app.logger.Error("Failed to close search index", "error", err)
		}
		app.index = nil
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection", "error", err)
		}
		app.db = nil
	}
}
