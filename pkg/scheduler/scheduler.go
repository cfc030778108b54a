package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// StaleBookingCanceler expires pending bookings whose session already started.
type StaleBookingCanceler interface {
	CancelStaleBookings(ctx context.Context) (int, error)
}

type Scheduler struct {
	bookingService StaleBookingCanceler
	interval       time.Duration
}

func NewScheduler(bookingService StaleBookingCanceler, interval time.Duration) *Scheduler {
	return &Scheduler{
		bookingService: bookingService,
		interval:       interval,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	canceled, err := s.bookingService.CancelStaleBookings(ctx)
	if err != nil {
		logrus.WithError(err).Error("Error canceling stale bookings")
		return
	}
	if canceled > 0 {
		logrus.WithField("canceled", canceled).Info("Stale pending bookings canceled")
	}
}
