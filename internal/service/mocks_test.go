package service

import (
	"context"
	"io"
	"time"

	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/stretchr/testify/mock"
)

func bookingOrNil(v interface{}) *entity.Booking {
	if v == nil {
		return nil
	}
	return v.(*entity.Booking)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) ListProfessors(ctx context.Context, subject string) ([]*entity.User, error) {
	args := m.Called(ctx, subject)
	return args.Get(0).([]*entity.User), args.Error(1)
}

func (m *mockUserRepo) GetTelegramChatIDs(ctx context.Context, userIDs []int64) (map[int64]int64, error) {
	args := m.Called(ctx, userIDs)
	return args.Get(0).(map[int64]int64), args.Error(1)
}

type mockSlotRepo struct{ mock.Mock }

func (m *mockSlotRepo) Create(ctx context.Context, slot *entity.AvailabilitySlot) error {
	args := m.Called(ctx, slot)
	return args.Error(0)
}

func (m *mockSlotRepo) GetByID(ctx context.Context, id int64) (*entity.AvailabilitySlot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AvailabilitySlot), args.Error(1)
}

func (m *mockSlotRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockSlotRepo) ListByProfessor(ctx context.Context, professorID int64) ([]*entity.AvailabilitySlot, error) {
	args := m.Called(ctx, professorID)
	return args.Get(0).([]*entity.AvailabilitySlot), args.Error(1)
}

func (m *mockSlotRepo) ListUpcomingUnbooked(ctx context.Context, professorID int64, now time.Time) ([]*entity.AvailabilitySlot, error) {
	args := m.Called(ctx, professorID, now)
	return args.Get(0).([]*entity.AvailabilitySlot), args.Error(1)
}

func (m *mockSlotRepo) DeleteStaleUnbooked(ctx context.Context, endedBefore time.Time, limit int) (int64, error) {
	args := m.Called(ctx, endedBefore, limit)
	return args.Get(0).(int64), args.Error(1)
}

type mockBookingRepo struct{ mock.Mock }

func (m *mockBookingRepo) Create(ctx context.Context, booking *entity.Booking, now time.Time) error {
	args := m.Called(ctx, booking, now)
	return args.Error(0)
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*entity.Booking, error) {
	args := m.Called(ctx, id)
	return bookingOrNil(args.Get(0)), args.Error(1)
}

func (m *mockBookingRepo) GetWithSlot(ctx context.Context, id int64) (*entity.BookingWithSlot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.BookingWithSlot), args.Error(1)
}

func (m *mockBookingRepo) Transition(ctx context.Context, id int64, from []entity.BookingStatus, to entity.BookingStatus) (*entity.Booking, error) {
	args := m.Called(ctx, id, from, to)
	return bookingOrNil(args.Get(0)), args.Error(1)
}

func (m *mockBookingRepo) Cancel(ctx context.Context, id int64, reason string) (*entity.Booking, error) {
	args := m.Called(ctx, id, reason)
	return bookingOrNil(args.Get(0)), args.Error(1)
}

func (m *mockBookingRepo) ListByStudent(ctx context.Context, studentID int64, status entity.BookingStatus) ([]*entity.BookingWithSlot, error) {
	args := m.Called(ctx, studentID, status)
	return args.Get(0).([]*entity.BookingWithSlot), args.Error(1)
}

func (m *mockBookingRepo) ListByProfessor(ctx context.Context, professorID int64, status entity.BookingStatus) ([]*entity.BookingWithSlot, error) {
	args := m.Called(ctx, professorID, status)
	return args.Get(0).([]*entity.BookingWithSlot), args.Error(1)
}

func (m *mockBookingRepo) ListStalePending(ctx context.Context, startedBefore time.Time, limit int) ([]*entity.StaleBooking, error) {
	args := m.Called(ctx, startedBefore, limit)
	return args.Get(0).([]*entity.StaleBooking), args.Error(1)
}

func (m *mockBookingRepo) HasCompletedWith(ctx context.Context, studentID, professorID int64) (bool, error) {
	args := m.Called(ctx, studentID, professorID)
	return args.Bool(0), args.Error(1)
}

type mockPaymentRepo struct{ mock.Mock }

func (m *mockPaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id int64) (*entity.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Payment), args.Error(1)
}

func (m *mockPaymentRepo) MarkStatus(ctx context.Context, id int64, status entity.PaymentStatus, externalRef string) error {
	args := m.Called(ctx, id, status, externalRef)
	return args.Error(0)
}

func (m *mockPaymentRepo) ListByStudent(ctx context.Context, studentID int64) ([]*entity.Payment, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).([]*entity.Payment), args.Error(1)
}

func (m *mockPaymentRepo) HasPaidForCourse(ctx context.Context, studentID, courseID int64) (bool, error) {
	args := m.Called(ctx, studentID, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *mockPaymentRepo) HasPaidForBooking(ctx context.Context, bookingID int64) (bool, error) {
	args := m.Called(ctx, bookingID)
	return args.Bool(0), args.Error(1)
}

type mockCourseRepo struct{ mock.Mock }

func (m *mockCourseRepo) Create(ctx context.Context, course *entity.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *mockCourseRepo) GetByID(ctx context.Context, id int64) (*entity.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// копия, чтобы сервис не менял данные теста
	course := *args.Get(0).(*entity.Course)
	return &course, args.Error(1)
}

func (m *mockCourseRepo) Update(ctx context.Context, course *entity.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *mockCourseRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCourseRepo) SetPublished(ctx context.Context, id int64, published bool) error {
	args := m.Called(ctx, id, published)
	return args.Error(0)
}

func (m *mockCourseRepo) SetCover(ctx context.Context, id int64, coverURL string) error {
	args := m.Called(ctx, id, coverURL)
	return args.Error(0)
}

func (m *mockCourseRepo) ListPublished(ctx context.Context, filter entity.CourseFilter) ([]*entity.Course, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*entity.Course), args.Error(1)
}

func (m *mockCourseRepo) ListByProfessor(ctx context.Context, professorID int64) ([]*entity.Course, error) {
	args := m.Called(ctx, professorID)
	return args.Get(0).([]*entity.Course), args.Error(1)
}

type mockLessonRepo struct{ mock.Mock }

func (m *mockLessonRepo) Create(ctx context.Context, lesson *entity.Lesson) error {
	args := m.Called(ctx, lesson)
	return args.Error(0)
}

func (m *mockLessonRepo) GetByID(ctx context.Context, id int64) (*entity.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lesson), args.Error(1)
}

func (m *mockLessonRepo) Update(ctx context.Context, lesson *entity.Lesson) error {
	args := m.Called(ctx, lesson)
	return args.Error(0)
}

func (m *mockLessonRepo) Delete(ctx context.Context, courseID, lessonID int64) error {
	args := m.Called(ctx, courseID, lessonID)
	return args.Error(0)
}

func (m *mockLessonRepo) ListByCourse(ctx context.Context, courseID int64) ([]*entity.Lesson, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).([]*entity.Lesson), args.Error(1)
}

type mockReviewRepo struct{ mock.Mock }

func (m *mockReviewRepo) Create(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) ExistsForCourse(ctx context.Context, studentID, courseID int64) (bool, error) {
	args := m.Called(ctx, studentID, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReviewRepo) ExistsForProfessor(ctx context.Context, studentID, professorID int64) (bool, error) {
	args := m.Called(ctx, studentID, professorID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReviewRepo) ListByCourse(ctx context.Context, courseID int64) ([]*entity.Review, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).([]*entity.Review), args.Error(1)
}

func (m *mockReviewRepo) ListByProfessor(ctx context.Context, professorID int64) ([]*entity.Review, error) {
	args := m.Called(ctx, professorID)
	return args.Get(0).([]*entity.Review), args.Error(1)
}

type mockConversationRepo struct{ mock.Mock }

func (m *mockConversationRepo) GetOrCreate(ctx context.Context, studentID, professorID int64) (*entity.Conversation, error) {
	args := m.Called(ctx, studentID, professorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Conversation), args.Error(1)
}

func (m *mockConversationRepo) GetByID(ctx context.Context, id int64) (*entity.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Conversation), args.Error(1)
}

func (m *mockConversationRepo) ListByUser(ctx context.Context, userID int64) ([]*entity.Conversation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*entity.Conversation), args.Error(1)
}

func (m *mockConversationRepo) AddMessage(ctx context.Context, msg *entity.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockConversationRepo) ListMessages(ctx context.Context, conversationID int64, limit int, beforeID int64) ([]*entity.Message, error) {
	args := m.Called(ctx, conversationID, limit, beforeID)
	return args.Get(0).([]*entity.Message), args.Error(1)
}

type mockProvider struct{ mock.Mock }

func (m *mockProvider) Name() string { return "test" }

func (m *mockProvider) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ChargeResult), args.Error(1)
}

func (m *mockProvider) Refund(ctx context.Context, externalRef string) error {
	args := m.Called(ctx, externalRef)
	return args.Error(0)
}

type mockCoverStorage struct{ mock.Mock }

func (m *mockCoverStorage) SaveCover(ctx context.Context, courseID int64, filename string, r io.Reader) (string, error) {
	args := m.Called(ctx, courseID, filename, r)
	return args.String(0), args.Error(1)
}

// recordingPublisher collects published events
type recordingPublisher struct {
	events []*entity.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event *entity.DomainEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []entity.EventType {
	out := make([]entity.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
