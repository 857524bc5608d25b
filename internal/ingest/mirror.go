package ingest

import (
	"context"
	"errors"
	"expert-api/internal/cms"
	"expert-api/internal/logger"
	"expert-api/internal/metrics"
	"fmt"
)

// Writer stores a complete collection snapshot.
type Writer interface {
	ReplaceCollection(ctx context.Context, c cms.Collection, items []cms.Item) (int, error)
}

// Mirror copies each collection, unfiltered, from src into dst. A failing
// collection does not stop the others; all failures are joined.
func Mirror(ctx context.Context, src cms.RawFetcher, dst Writer, cols []cms.Collection) (map[cms.Collection]int, error) {
	if len(cols) == 0 {
		cols = cms.All
	}
	l := logger.L()
	out := make(map[cms.Collection]int, len(cols))
	var errs []error
	for _, c := range cols {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		items, err := src.FetchRaw(ctx, c)
		if err != nil {
			l.Error("mirror_fetch_error", "collection", c, "err", err)
			errs = append(errs, fmt.Errorf("mirror %s: %w", c, err))
			continue
		}
		n, err := dst.ReplaceCollection(ctx, c, items)
		if err != nil {
			l.Error("mirror_write_error", "collection", c, "err", err)
			errs = append(errs, fmt.Errorf("mirror %s: %w", c, err))
			continue
		}
		out[c] = n
		metrics.MirrorItemsTotal.WithLabelValues(string(c)).Add(float64(n))
		l.Info("mirror_collection_done", "collection", c, "items", n)
	}
	return out, errors.Join(errs...)
}
