package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// SlotCleaner is the part of the availability service the worker drives.
type SlotCleaner interface {
	CleanupStaleSlots(ctx context.Context, endedBefore time.Time, batchSize int) (int64, error)
}

// SlotCleanupWorker периодически удаляет давно прошедшие слоты без броней
type SlotCleanupWorker struct {
	slots     SlotCleaner
	interval  time.Duration
	retention time.Duration
	batchSize int
	now       func() time.Time
}

func NewSlotCleanupWorker(slots SlotCleaner, interval, retention time.Duration, batchSize int) *SlotCleanupWorker {
	return &SlotCleanupWorker{
		slots:     slots,
		interval:  interval,
		retention: retention,
		batchSize: batchSize,
		now:       time.Now,
	}
}

func (w *SlotCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.WithFields(logrus.Fields{
		"interval":  w.interval.String(),
		"retention": w.retention.String(),
	}).Info("Slot cleanup worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Slot cleanup worker stopped")
			return
		case <-ticker.C:
			w.cleanup(ctx)
		}
	}
}

// cleanup выполняет один проход очистки
func (w *SlotCleanupWorker) cleanup(ctx context.Context) {
	cutoff := w.now().Add(-w.retention)

	removed, err := w.slots.CleanupStaleSlots(ctx, cutoff, w.batchSize)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"cutoff":  cutoff,
			"removed": removed,
			"error":   err,
		}).Error("Failed to clean up stale slots")
		return
	}

	if removed == 0 {
		logrus.Debug("No stale slots found for cleanup")
		return
	}
	logrus.WithField("removed", removed).Info("Stale slots cleanup completed")
}
