package watcher

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/silverbackhw/portal-sync/internal/service"
)

const (
	// windows overlap by this much between consecutive runs
	windowOverlap = time.Minute

	modifiedTimeField = "Modified_Time"
	// CRM query datetimes carry a numeric offset, never "Z"
	queryTimeLayout = "2006-01-02T15:04:05-07:00"
)

// FullSyncer interface for dependency injection
type FullSyncer interface {
	SyncAll(ctx context.Context, req service.SyncAllRequest) (*service.SyncResult, error)
}

// Watcher runs a full sync on a fixed interval over the records modified since the last run
type Watcher struct {
	syncer   FullSyncer
	interval time.Duration
	limit    int
	now      func() time.Time
}

func New(syncer FullSyncer, interval time.Duration, limit int) *Watcher {
	return &Watcher{
		syncer:   syncer,
		interval: interval,
		limit:    limit,
		now:      time.Now,
	}
}

// Start blocks until ctx is cancelled, syncing once per interval
func (w *Watcher) Start(ctx context.Context) error {
	log.Printf("[watcher] Starting scheduled sync every %s", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[watcher] Watcher shutting down...")
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	end := w.now().UTC()
	start := end.Add(-(w.interval + windowOverlap))

	result, err := w.syncer.SyncAll(ctx, service.SyncAllRequest{
		Limit:     w.limit,
		DateField: modifiedTimeField,
		StartDate: start.Format(queryTimeLayout),
		EndDate:   end.Format(queryTimeLayout),
	})
	switch {
	case errors.Is(err, service.ErrSyncInProgress):
		log.Println("[watcher] Skipping scheduled sync, another sync is running")
	case err != nil:
		log.Printf("[watcher] Scheduled sync failed: %v", err)
	default:
		log.Printf("[watcher] Scheduled sync done: %d records, %d errors", result.Total, len(result.Errors))
	}
}
