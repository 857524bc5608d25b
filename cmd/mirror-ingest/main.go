package main

import (
	"context"
	"expert-api/internal/cms"
	"expert-api/internal/ingest"
	"expert-api/internal/logger"
	"expert-api/internal/migrate"
	"expert-api/internal/store"
	"expert-api/internal/utils"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Copies content collections into the postgres mirror. MIRROR_COLLECTIONS
// narrows the run (comma separated, default all).
func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	ctx, cancel := context.WithTimeout(context.Background(), utils.EnvDuration("MIRROR_TIMEOUT", 10*time.Minute))
	defer cancel()

	cols := cms.All
	if s := utils.EnvString("MIRROR_COLLECTIONS", ""); s != "" {
		cols = nil
		for _, c := range strings.Split(s, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cols = append(cols, cms.Collection(c))
			}
		}
	}

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
	st := store.AttachDB(db)

	counts, err := ingest.Mirror(ctx, cms.NewFromEnv(), st, cols)
	for c, n := range counts {
		l.Info("mirror_result", "collection", c, "items", n)
	}
	if err != nil {
		l.Error("mirror_error", "err", err)
		os.Exit(1)
	}
	if totals, err := st.Counts(ctx); err == nil {
		l.Info("mirror_totals", "totals", totals)
	}
}
