package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type BlobLister interface {
	List(ctx context.Context) ([]entity.BlobInfo, error)
	Remove(ctx context.Context, key string) error
}

type DocumentIndex interface {
	DocKeys(ctx context.Context) ([]string, error)
}

// DocumentSweeper removes stored documents no contract points to. Files
// younger than Grace are kept so uploads whose transaction is still open
// survive.
type DocumentSweeper struct {
	Blobs     BlobLister
	Contracts DocumentIndex
	Grace     time.Duration
	Interval  time.Duration
	Now       func() time.Time
	logger    *zap.Logger
}

func NewDocumentSweeper(blobs BlobLister, contracts DocumentIndex, interval, grace time.Duration, logger *zap.Logger) *DocumentSweeper {
	return &DocumentSweeper{
		Blobs:     blobs,
		Contracts: contracts,
		Grace:     grace,
		Interval:  interval,
		Now:       time.Now,
		logger:    logger,
	}
}

// Start sweeps once immediately and then every Interval until ctx is done.
func (w *DocumentSweeper) Start(ctx context.Context) {
	w.logger.Info("document sweeper started",
		zap.Duration("interval", w.Interval),
		zap.Duration("grace", w.Grace),
	)

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	w.run(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("document sweeper stopped")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *DocumentSweeper) run(ctx context.Context) {
	removed, err := w.Sweep(ctx)
	if err != nil {
		w.logger.Error("document sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		w.logger.Info("orphaned documents removed", zap.Int("count", removed))
	}
}

// Sweep removes every orphaned document older than Grace and returns how
// many were removed. A failed removal is logged and skipped.
func (w *DocumentSweeper) Sweep(ctx context.Context) (int, error) {
	blobs, err := w.Blobs.List(ctx)
	if err != nil {
		return 0, err
	}
	keys, err := w.Contracts.DocKeys(ctx)
	if err != nil {
		return 0, err
	}
	referenced := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		referenced[k] = struct{}{}
	}

	cutoff := w.Now().Add(-w.Grace)
	removed := 0
	for _, b := range blobs {
		if _, ok := referenced[b.Key]; ok || b.ModTime.After(cutoff) {
			continue
		}
		if err := w.Blobs.Remove(ctx, b.Key); err != nil {
			w.logger.Warn("failed to remove orphaned document", zap.String("key", b.Key), zap.Error(err))
			continue
		}
		w.logger.Debug("orphaned document removed", zap.String("key", b.Key))
		removed++
	}
	return removed, nil
}
