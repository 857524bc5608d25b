// Server entry point: reads configuration, wires caches, route service and
// query engine, then serves the API. Handlers live in internal/api.
package main

import (
	"context"
	"errors"
	"expert-api/internal/api"
	"expert-api/internal/cache"
	"expert-api/internal/cms"
	"expert-api/internal/experts"
	"expert-api/internal/ingest"
	"expert-api/internal/logger"
	"expert-api/internal/middleware"
	"expert-api/internal/migrate"
	"expert-api/internal/routes"
	"expert-api/internal/store"
	"expert-api/internal/utils"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiBase := strings.TrimRight(utils.EnvString("API_BASE", "/api"), "/")
	l.Debug("config_api_base", "base", apiBase)

	client := cms.NewFromEnv()
	fromMirror := utils.EnvString("CONTENT_SOURCE", "cms") == "postgres"
	var st *store.Store
	if fromMirror || utils.EnvBool("MIRROR_ENABLED", false) {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			l.Error("db_ping_error", "err", err)
		} else {
			l.Info("db_ping_ok")
		}
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		st = store.AttachDB(db)
	}

	var source cms.Fetcher = client
	if fromMirror {
		source = st
	}
	l.Info("content_source", "postgres", fromMirror)

	cells := cache.NewManager(source, cache.ConfigFromEnv())

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else if err := rc.Ping(ctx).Err(); err != nil {
		l.Error("redis_ping_error", "err", err)
	} else {
		l.Info("redis_ping_ok")
	}
	var snapshots routes.SnapshotStore
	if rs := routes.NewRedisStore(rc, utils.EnvString("ROUTES_SNAPSHOT_PREFIX", "routes:"), utils.EnvDuration("ROUTES_SNAPSHOT_TTL", 24*time.Hour)); rs != nil {
		snapshots = rs
	}

	svc := routes.NewService(cells, snapshots)
	if ok, err := svc.Warm(ctx); err != nil {
		l.Warn("routes_snapshot_load_error", "err", err)
	} else if !ok {
		l.Info("routes_snapshot_missing")
	}
	svc.RegenerateAsync()

	ingest.StartEvery(ctx, "routes_regenerate", utils.EnvDuration("ROUTES_REFRESH_INTERVAL", time.Hour), func(ctx context.Context) error {
		_, err := svc.Regenerate(ctx)
		return err
	})
	if st != nil && utils.EnvBool("MIRROR_ENABLED", false) {
		loc, err := time.LoadLocation(utils.EnvString("MIRROR_TZ", "UTC"))
		if err != nil {
			l.Warn("mirror_tz_invalid", "err", err)
			loc = time.UTC
		}
		ingest.StartDaily(ctx, "cms_mirror", loc, utils.EnvInt("MIRROR_HOUR", 3), func(ctx context.Context) error {
			if _, err := ingest.Mirror(ctx, client, st, cms.All); err != nil {
				return err
			}
			if fromMirror {
				return cells.ForceRefresh(ctx)
			}
			return nil
		})
	}

	apiMux := api.BuildRoutes(api.Deps{
		Routes:   svc,
		Experts:  experts.NewEngine(cells),
		Cache:    cells,
		Admin:    middleware.NewAdminGuardFromEnv(),
		MaxLimit: utils.EnvInt("EXPERTS_MAX_LIMIT", 500),
	})
	mux := http.NewServeMux()
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))

	var handler http.Handler = middleware.AccessLog(l, mux)
	handler = middleware.Wrap(handler)

	addr := utils.EnvString("ADDR", ":8080")
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	tlsFiles := utils.TLSFromEnv()
	go func() {
		var err error
		if tlsFiles.Enabled {
			if err := utils.EnsureSelfSignedCert(tlsFiles.CertPath, tlsFiles.KeyPath, "expert-api.local"); err != nil {
				l.Error("tls_cert_error", "err", err)
			}
			l.Info("listening_tls", "addr", addr, "cert", tlsFiles.CertPath)
			err = s.ListenAndServeTLS(tlsFiles.CertPath, tlsFiles.KeyPath)
		} else {
			l.Info("listening", "addr", addr)
			err = s.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("listen_error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	l.Info("shutdown_begin")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		l.Error("shutdown_error", "err", err)
	}
	if rc != nil {
		_ = rc.Close()
	}
	l.Info("shutdown_done")
}
