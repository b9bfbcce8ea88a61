package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meshwatch/fieldmap/internal/store"
)

// Pruner removes samples that have aged out of the retention window.
type Pruner struct {
	store  *store.Store
	maxAge time.Duration
	logger *slog.Logger
}

// NewPruner creates a Pruner keeping samples newer than maxAge.
func NewPruner(st *store.Store, maxAge time.Duration, logger *slog.Logger) (*Pruner, error) {
	if maxAge <= 0 {
		return nil, fmt.Errorf("retention age must be positive, got %s", maxAge)
	}

	return &Pruner{
		store:  st,
		maxAge: maxAge,
		logger: logger,
	}, nil
}

// PruneOnce deletes every sample older than the retention window and returns
// the number of rows removed. Samples exactly at the cutoff survive.
func (p *Pruner) PruneOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-p.maxAge)

	removed, err := p.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning samples: %w", err)
	}

	if removed > 0 {
		p.logger.Info("pruned aged samples",
			slog.Int64("removed", removed),
			slog.Time("cutoff", cutoff))
	}
	return removed, nil
}
