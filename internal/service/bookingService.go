package service

import (
	"context"
	"errors"
	"time"

	repository "github.com/ds124wfegd/learnlink/internal/database/postgres"
	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/sirupsen/logrus"
)

const (
	staleBatchSize      = 100
	expiredCancelReason = "expired"
)

type bookingService struct {
	bookingRepo repository.BookingRepository
	slotRepo    repository.AvailabilityRepository
	courseRepo  repository.CourseRepository
	events      EventPublisher
	now         func() time.Time
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	slotRepo repository.AvailabilityRepository,
	courseRepo repository.CourseRepository,
	events EventPublisher,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		slotRepo:    slotRepo,
		courseRepo:  courseRepo,
		events:      publisherOrNoop(events),
		now:         time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, p entity.Principal, req *CreateBookingRequest) (*entity.Booking, error) {
	if err := RequireRole(p, entity.RoleStudent); err != nil {
		return nil, err
	}

	now := s.now()
	slot, err := s.slotRepo.GetByID(ctx, req.AvailabilityID)
	if err != nil {
		return nil, err
	}
	if slot.IsBooked {
		return nil, entity.ErrSlotAlreadyBooked
	}
	if !slot.StartTime.After(now) {
		return nil, entity.ErrSlotInPast
	}

	if req.CourseID != nil {
		course, err := s.courseRepo.GetByID(ctx, *req.CourseID)
		if errors.Is(err, entity.ErrCourseNotFound) {
			return nil, entity.Invalidf("course %d does not exist", *req.CourseID)
		}
		if err != nil {
			return nil, err
		}
		if !course.IsOwnedBy(slot.ProfessorID) {
			return nil, entity.Invalidf("course %d is not taught by this professor", course.ID)
		}
	}

	booking := &entity.Booking{
		StudentID:      p.ID,
		AvailabilityID: req.AvailabilityID,
		CourseID:       req.CourseID,
		Notes:          req.Notes,
	}
	// the slot is claimed atomically; the checks above only give early answers
	if err := s.bookingRepo.Create(ctx, booking, now); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"booking_id":      booking.ID,
		"student_id":      booking.StudentID,
		"professor_id":    booking.ProfessorID,
		"availability_id": booking.AvailabilityID,
	}).Info("Booking created")

	emit(ctx, s.events, newBookingEvent(entity.EventBookingCreated, booking, slot.StartTime))
	return booking, nil
}

func (s *bookingService) ConfirmBooking(ctx context.Context, p entity.Principal, bookingID int64) (*entity.Booking, error) {
	return s.professorTransition(ctx, p, bookingID, entity.BookingStatusConfirmed, entity.EventBookingConfirmed)
}

func (s *bookingService) CompleteBooking(ctx context.Context, p entity.Principal, bookingID int64) (*entity.Booking, error) {
	return s.professorTransition(ctx, p, bookingID, entity.BookingStatusCompleted, entity.EventBookingCompleted)
}

func (s *bookingService) professorTransition(
	ctx context.Context,
	p entity.Principal,
	bookingID int64,
	to entity.BookingStatus,
	eventType entity.EventType,
) (*entity.Booking, error) {
	if err := RequireRole(p, entity.RoleProfessor); err != nil {
		return nil, err
	}

	current, err := s.bookingRepo.GetWithSlot(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := RequireOwnership(p, current.ProfessorID); err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(to) {
		return nil, entity.ErrInvalidBookingTransition
	}

	booking, err := s.bookingRepo.Transition(ctx, bookingID, entity.SourcesOf(to), to)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"from":       current.Status,
		"to":         booking.Status,
	}).Info("Booking status changed")

	emit(ctx, s.events, newBookingEvent(eventType, booking, current.Slot.StartTime))
	return booking, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, p entity.Principal, bookingID int64, reason string) (*entity.Booking, error) {
	current, err := s.bookingRepo.GetWithSlot(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !current.IsParticipant(p.ID) {
		return nil, entity.ErrNotOwner
	}
	if !current.Status.CanTransitionTo(entity.BookingStatusCanceled) {
		return nil, entity.ErrInvalidBookingTransition
	}

	booking, err := s.bookingRepo.Cancel(ctx, bookingID, reason)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"booking_id":      booking.ID,
		"canceled_by":     p.ID,
		"availability_id": booking.AvailabilityID,
	}).Info("Booking canceled, slot released")

	emit(ctx, s.events, newBookingEvent(entity.EventBookingCanceled, booking, current.Slot.StartTime))
	return booking, nil
}

func (s *bookingService) GetBooking(ctx context.Context, p entity.Principal, bookingID int64) (*entity.BookingWithSlot, error) {
	booking, err := s.bookingRepo.GetWithSlot(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsParticipant(p.ID) {
		return nil, entity.ErrNotOwner
	}
	return booking, nil
}

func (s *bookingService) ListMyBookings(ctx context.Context, p entity.Principal, status entity.BookingStatus) ([]*entity.BookingWithSlot, error) {
	if status != "" && !status.Valid() {
		return nil, entity.Invalidf("unknown booking status %q", status)
	}
	if p.Is(entity.RoleProfessor) {
		return s.bookingRepo.ListByProfessor(ctx, p.ID, status)
	}
	return s.bookingRepo.ListByStudent(ctx, p.ID, status)
}

// CancelStaleBookings cancels pending bookings whose session already started.
func (s *bookingService) CancelStaleBookings(ctx context.Context) (int, error) {
	stale, err := s.bookingRepo.ListStalePending(ctx, s.now(), staleBatchSize)
	if err != nil {
		return 0, err
	}

	canceled := 0
	for _, item := range stale {
		if ctx.Err() != nil {
			break
		}

		booking, err := s.bookingRepo.Cancel(ctx, item.BookingID, expiredCancelReason)
		if errors.Is(err, entity.ErrInvalidState) || errors.Is(err, entity.ErrNotFound) {
			// confirmed or canceled since the listing
			continue
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"booking_id": item.BookingID,
				"error":      err,
			}).Error("Failed to cancel stale booking")
			continue
		}

		canceled++
		emit(ctx, s.events, newBookingEvent(entity.EventBookingCanceled, booking, item.StartTime))
	}

	if canceled > 0 {
		logrus.WithField("count", canceled).Info("Stale pending bookings canceled")
	}
	return canceled, nil
}
