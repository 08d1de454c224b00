// Command arbor-server runs the Arbor hierarchy service: an HTTP API for
// managing forests of nodes with single-parent links, ancestor and
// descendant walks, and cycle-safe reparenting.
//
// Configuration is read from environment variables; see internal/config.
// Database migrations are applied automatically on startup.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/arborhq/arbor/internal/api"
	"github.com/arborhq/arbor/internal/config"
	"github.com/arborhq/arbor/internal/db"
	"github.com/arborhq/arbor/internal/db/migrations"
	"github.com/arborhq/arbor/internal/dbpool"
	"github.com/arborhq/arbor/internal/forest"
	"github.com/arborhq/arbor/internal/service"
	"github.com/arborhq/arbor/internal/store"
	"github.com/arborhq/arbor/internal/ws"
)

// Build-time variables set via ldflags.
var (
	version = "0.3.0"
	commit  = ""
)

const shutdownTimeout = 15 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Fatal("invalid log level")
	}
	log.SetLevel(level)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		return err
	}

	base := store.Base{Pool: pool, Log: log}
	nodeStore := store.NewNodeStore(base)
	treeStore := store.NewTreeStore(base)
	auditStore := store.NewAuditStore(base)
	tenantStore := store.NewTenantStore(pool)

	auditWorker := service.NewAuditWorker(auditStore, log, cfg.AuditBuffer)
	nodeSvc := service.NewNodeService(nodeStore, auditWorker, log)
	treeSvc := service.NewTreeService(treeStore, auditWorker, log, forest.WithMaxDepth(cfg.MaxDepth))
	auditSvc := service.NewAuditService(auditStore, log)

	hub := ws.NewHub(log)
	bridge := db.NewNotifyBridge(log, pool, hub)
	if err := bridge.Start(ctx); err != nil {
		return err
	}

	handler := api.NewRouter(ctx, &api.RouterDeps{
		Log:          log,
		Pool:         pool,
		Hub:          hub,
		Nodes:        nodeSvc,
		Tree:         treeSvc,
		Audit:        auditSvc,
		TenantLookup: tenantStore,
		CORSOrigins:  cfg.CORSOrigins,
		Version:      buildVersion(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		auditWorker.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"addr":    srv.Addr,
			"version": buildVersion(),
		}).Info("arbor server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func buildVersion() string {
	if commit != "" {
		return version + "+" + commit
	}
	return version
}
