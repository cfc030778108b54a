package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	repository "github.com/ds124wfegd/learnlink/internal/database/postgres"
	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/sirupsen/logrus"
)

type paymentService struct {
	paymentRepo     repository.PaymentRepository
	bookingRepo     repository.BookingRepository
	courseRepo      repository.CourseRepository
	userRepo        repository.UserRepository
	provider        PaymentProvider
	access          AccessResolver
	events          EventPublisher
	defaultCurrency string
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	courseRepo repository.CourseRepository,
	userRepo repository.UserRepository,
	provider PaymentProvider,
	access AccessResolver,
	events EventPublisher,
	defaultCurrency string,
) PaymentService {
	return &paymentService{
		paymentRepo:     paymentRepo,
		bookingRepo:     bookingRepo,
		courseRepo:      courseRepo,
		userRepo:        userRepo,
		provider:        provider,
		access:          access,
		events:          publisherOrNoop(events),
		defaultCurrency: defaultCurrency,
	}
}

func (s *paymentService) Checkout(ctx context.Context, p entity.Principal, req *CheckoutRequest) (*entity.Payment, error) {
	switch {
	case req.BookingID != nil && req.CourseID == nil:
		return s.checkoutSession(ctx, p, *req.BookingID)
	case req.CourseID != nil && req.BookingID == nil:
		return s.checkoutCourse(ctx, p, *req.CourseID)
	}
	return nil, entity.ErrCheckoutTarget
}

func (s *paymentService) checkoutSession(ctx context.Context, p entity.Principal, bookingID int64) (*entity.Payment, error) {
	if err := RequireRole(p, entity.RoleStudent); err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetWithSlot(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := RequireOwnership(p, booking.StudentID); err != nil {
		return nil, err
	}
	if booking.Status == entity.BookingStatusCanceled {
		return nil, entity.ErrBookingNotPayable
	}

	paid, err := s.paymentRepo.HasPaidForBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if paid {
		return nil, entity.ErrBookingAlreadyPaid
	}

	professor, err := s.userRepo.GetByID(ctx, booking.ProfessorID)
	if err != nil {
		return nil, err
	}
	if professor.HourlyRate <= 0 {
		return nil, entity.ErrProfessorRateMissing
	}

	payment := &entity.Payment{
		StudentID:   p.ID,
		ProfessorID: &booking.ProfessorID,
		BookingID:   &booking.ID,
		Amount:      SessionAmount(professor.HourlyRate, booking.Slot.Duration()),
		Currency:    s.currency(professor.Currency),
	}
	return s.settle(ctx, payment)
}

func (s *paymentService) checkoutCourse(ctx context.Context, p entity.Principal, courseID int64) (*entity.Payment, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.IsOwnedBy(p.ID) {
		return nil, entity.ErrOwnCoursePurchase
	}
	if !course.Published {
		return nil, entity.ErrCourseNotFound
	}

	owned, err := s.access.HasPurchasedCourse(ctx, p.ID, courseID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, entity.ErrCourseAlreadyOwned
	}

	payment := &entity.Payment{
		StudentID:   p.ID,
		ProfessorID: &course.ProfessorID,
		CourseID:    &course.ID,
		Amount:      course.Price,
		Currency:    s.currency(course.Currency),
	}
	defer s.access.Forget(ctx, p.ID, courseID)
	return s.settle(ctx, payment)
}

// settle records the attempt, charges the provider and flips the row to its outcome.
func (s *paymentService) settle(ctx context.Context, payment *entity.Payment) (*entity.Payment, error) {
	payment.Provider = s.provider.Name()
	payment.Status = entity.PaymentStatusPending
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	log := logrus.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"student_id": payment.StudentID,
		"amount":     payment.Amount,
		"currency":   payment.Currency,
	})

	result, err := s.provider.Charge(ctx, ChargeRequest{
		PaymentID: payment.ID,
		StudentID: payment.StudentID,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
	})
	if err != nil {
		if markErr := s.paymentRepo.MarkStatus(ctx, payment.ID, entity.PaymentStatusFailed, ""); markErr != nil {
			log.WithError(markErr).Error("Failed to mark payment as failed")
		}
		payment.Status = entity.PaymentStatusFailed
		log.WithError(err).Warn("Payment charge failed")
		emit(ctx, s.events, newPaymentEvent(entity.EventPaymentFailed, payment))

		if errors.Is(err, entity.ErrPaymentDeclined) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", entity.ErrPaymentDeclined, err)
	}
	payment.ExternalRef = result.ExternalRef

	err = s.paymentRepo.MarkStatus(ctx, payment.ID, entity.PaymentStatusPaid, result.ExternalRef)
	if errors.Is(err, entity.ErrConflict) {
		// a concurrent checkout won; give the money back
		if refundErr := s.provider.Refund(ctx, result.ExternalRef); refundErr != nil {
			log.WithError(refundErr).Error("Failed to refund duplicate charge")
		}
		if markErr := s.paymentRepo.MarkStatus(ctx, payment.ID, entity.PaymentStatusRefunded, ""); markErr != nil {
			log.WithError(markErr).Error("Failed to mark payment as refunded")
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	payment.Status = entity.PaymentStatusPaid

	log.WithField("external_ref", payment.ExternalRef).Info("Payment settled")
	emit(ctx, s.events, newPaymentEvent(entity.EventPaymentPaid, payment))
	return payment, nil
}

func (s *paymentService) ListMyPayments(ctx context.Context, p entity.Principal) ([]*entity.Payment, error) {
	return s.paymentRepo.ListByStudent(ctx, p.ID)
}

func (s *paymentService) currency(c string) string {
	if c != "" {
		return c
	}
	return s.defaultCurrency
}

// SessionAmount prorates an hourly rate over the session length, rounding down to whole minutes.
func SessionAmount(hourlyRate int64, length time.Duration) int64 {
	minutes := int64(length / time.Minute)
	return hourlyRate * minutes / 60
}
