package service

import (
	"context"
	"time"

	repository "github.com/ds124wfegd/learnlink/internal/database/postgres"
	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/sirupsen/logrus"
)

const (
	defaultTimezone  = "UTC"
	defaultBatchSize = 100
)

type availabilityService struct {
	slotRepo repository.AvailabilityRepository
	now      func() time.Time
}

func NewAvailabilityService(slotRepo repository.AvailabilityRepository) AvailabilityService {
	return &availabilityService{slotRepo: slotRepo, now: time.Now}
}

func (s *availabilityService) CreateSlot(ctx context.Context, p entity.Principal, req *CreateSlotRequest) (*entity.AvailabilitySlot, error) {
	if err := RequireRole(p, entity.RoleProfessor); err != nil {
		return nil, err
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, entity.ErrSlotTimeRange
	}
	if !req.StartTime.After(s.now()) {
		return nil, entity.ErrSlotInPast
	}

	tz := req.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, entity.Invalidf("unknown timezone %q", tz)
	}

	slot := &entity.AvailabilitySlot{
		ProfessorID: p.ID,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		Timezone:    tz,
	}
	if err := s.slotRepo.Create(ctx, slot); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"slot_id":      slot.ID,
		"professor_id": slot.ProfessorID,
		"start_time":   slot.StartTime,
	}).Info("Availability slot created")

	return slot, nil
}

func (s *availabilityService) DeleteSlot(ctx context.Context, p entity.Principal, slotID int64) error {
	if err := RequireRole(p, entity.RoleProfessor); err != nil {
		return err
	}

	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if err := RequireOwnership(p, slot.ProfessorID); err != nil {
		return err
	}
	if slot.IsBooked {
		return entity.ErrSlotAlreadyBooked
	}

	if err := s.slotRepo.Delete(ctx, slotID); err != nil {
		return err
	}

	logrus.WithField("slot_id", slotID).Info("Availability slot deleted")
	return nil
}

func (s *availabilityService) ListByProfessor(ctx context.Context, professorID int64) ([]*entity.AvailabilitySlot, error) {
	return s.slotRepo.ListByProfessor(ctx, professorID)
}

func (s *availabilityService) ListUpcomingUnbooked(ctx context.Context, professorID int64) ([]*entity.AvailabilitySlot, error) {
	return s.slotRepo.ListUpcomingUnbooked(ctx, professorID, s.now())
}

func (s *availabilityService) CleanupStaleSlots(ctx context.Context, endedBefore time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	var total int64
	for {
		deleted, err := s.slotRepo.DeleteStaleUnbooked(ctx, endedBefore, batchSize)
		if err != nil {
			return total, err
		}
		total += deleted
		if deleted < int64(batchSize) || ctx.Err() != nil {
			return total, nil
		}
	}
}
