package main

import (
	"context"
	"encoding/json"
	"expert-api/internal/cache"
	"expert-api/internal/cms"
	"expert-api/internal/directory"
	"expert-api/internal/logger"
	"expert-api/internal/migrate"
	"expert-api/internal/routes"
	"expert-api/internal/store"
	"expert-api/internal/utils"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// One-shot route generation. Logs per-kind counts, optionally writes the
// manifest to ROUTES_OUT and publishes it to redis for running servers.
// ROUTES_UNPRUNED=true skips expert counting and emits the full route space.
func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	ctx, cancel := context.WithTimeout(context.Background(), utils.EnvDuration("ROUTES_BUILD_TIMEOUT", 5*time.Minute))
	defer cancel()

	var source cms.Fetcher = cms.NewFromEnv()
	if utils.EnvString("CONTENT_SOURCE", "cms") == "postgres" {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		source = store.AttachDB(db)
	}
	cells := cache.NewManager(source, cache.ConfigFromEnv())

	ds, err := cells.Dataset(ctx, false)
	if err != nil {
		l.Error("dataset_error", "err", err)
		os.Exit(1)
	}
	var expertList []directory.Expert
	if !utils.EnvBool("ROUTES_UNPRUNED", false) {
		expertList, err = cells.Experts(ctx, false)
		if err != nil {
			l.Error("experts_error", "err", err)
			os.Exit(1)
		}
	}

	res := routes.Generate(ds, expertList)
	for _, p := range routes.Collisions(res.Routes) {
		l.Warn("routes_path_collision", "path", p)
	}
	m := routes.Build(res.Routes, time.Now())
	menu := routes.Summarize(m)
	for _, k := range routes.Kinds {
		l.Info("routes_kind", "kind", k, "count", res.Stats.ByKind[k])
	}
	l.Info("routes_build_done",
		"routes", m.Count(),
		"candidates", res.Stats.Candidates,
		"pruned", res.Stats.Pruned,
		"unroutable", res.Stats.Unroutable,
		"experts", res.Stats.Experts,
		"pruning", res.Stats.Pruning,
		"duration_ms", res.Stats.DurationMs,
	)

	if out := utils.EnvString("ROUTES_OUT", ""); out != "" {
		b, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			l.Error("manifest_encode_error", "err", err)
			os.Exit(1)
		}
		if err := os.WriteFile(out, b, 0o644); err != nil {
			l.Error("manifest_write_error", "path", out, "err", err)
			os.Exit(1)
		}
		l.Info("manifest_written", "path", out, "bytes", len(b))
	}

	if rc := utils.OpenRedisFromEnv(); rc != nil {
		defer rc.Close()
		rs := routes.NewRedisStore(rc, utils.EnvString("ROUTES_SNAPSHOT_PREFIX", "routes:"), utils.EnvDuration("ROUTES_SNAPSHOT_TTL", 24*time.Hour))
		if err := rs.Save(ctx, m, menu); err != nil {
			l.Error("routes_snapshot_save_error", "err", err)
			os.Exit(1)
		}
		l.Info("routes_snapshot_saved")
	}
}
