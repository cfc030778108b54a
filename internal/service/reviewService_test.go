package service

import (
	"context"
	"testing"

	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type reviewFixture struct {
	reviews  *mockReviewRepo
	courses  *mockCourseRepo
	bookings *mockBookingRepo
	users    *mockUserRepo
	payments *mockPaymentRepo
	svc      ReviewService
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{
		reviews:  &mockReviewRepo{},
		courses:  &mockCourseRepo{},
		bookings: &mockBookingRepo{},
		users:    &mockUserRepo{},
		payments: &mockPaymentRepo{},
	}
	access := NewAccessResolver(f.payments, f.reviews, nil)
	f.svc = NewReviewService(f.reviews, f.courses, f.bookings, f.users, access)
	return f
}

func TestCreateCourseReview(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		p        entity.Principal
		rating   int
		paid     bool
		reviewed bool
		want     error
	}{
		{name: "buyer reviews once", p: student, rating: 5, paid: true},
		{name: "no purchase", p: student, rating: 4, paid: false, want: entity.ErrReviewNotAllowed},
		{name: "second review", p: student, rating: 4, paid: true, reviewed: true, want: entity.ErrReviewExists},
		{name: "rating out of range", p: student, rating: 6, want: entity.ErrInvalidRating},
		{name: "professor cannot review", p: professor, rating: 5, want: entity.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReviewFixture()
			f.courses.On("GetByID", ctx, int64(5)).Return(publishedCourse(), nil)
			f.payments.On("HasPaidForCourse", ctx, tt.p.ID, int64(5)).Return(tt.paid, nil)
			f.reviews.On("ExistsForCourse", ctx, tt.p.ID, int64(5)).Return(tt.reviewed, nil)
			f.reviews.On("Create", ctx, mock.AnythingOfType("*entity.Review")).Return(nil)

			review, err := f.svc.CreateCourseReview(ctx, tt.p, 5, &ReviewRequest{Rating: tt.rating, Comment: " great "})

			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				f.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "great", review.Comment)
			assert.Equal(t, int64(5), *review.CourseID)
		})
	}
}

func TestCreateProfessorReview(t *testing.T) {
	ctx := context.Background()

	t.Run("after a completed session", func(t *testing.T) {
		f := newReviewFixture()
		f.users.On("GetByID", ctx, professor.ID).Return(&entity.User{ID: professor.ID, Role: entity.RoleProfessor}, nil)
		f.bookings.On("HasCompletedWith", ctx, student.ID, professor.ID).Return(true, nil)
		f.reviews.On("ExistsForProfessor", ctx, student.ID, professor.ID).Return(false, nil)
		f.reviews.On("Create", ctx, mock.AnythingOfType("*entity.Review")).Return(nil)

		review, err := f.svc.CreateProfessorReview(ctx, student, professor.ID, &ReviewRequest{Rating: 5})

		require.NoError(t, err)
		assert.Equal(t, professor.ID, *review.ProfessorID)
	})

	t.Run("without a completed session", func(t *testing.T) {
		f := newReviewFixture()
		f.users.On("GetByID", ctx, professor.ID).Return(&entity.User{ID: professor.ID, Role: entity.RoleProfessor}, nil)
		f.bookings.On("HasCompletedWith", ctx, student.ID, professor.ID).Return(false, nil)

		_, err := f.svc.CreateProfessorReview(ctx, student, professor.ID, &ReviewRequest{Rating: 5})

		assert.ErrorIs(t, err, entity.ErrForbidden)
	})

	t.Run("target is not a professor", func(t *testing.T) {
		f := newReviewFixture()
		f.users.On("GetByID", ctx, stranger.ID).Return(&entity.User{ID: stranger.ID, Role: entity.RoleStudent}, nil)

		_, err := f.svc.CreateProfessorReview(ctx, student, stranger.ID, &ReviewRequest{Rating: 5})

		assert.ErrorIs(t, err, entity.ErrProfessorNotFound)
	})
}

func TestListCourseReviews_Average(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()
	f.courses.On("GetByID", ctx, int64(5)).Return(publishedCourse(), nil)
	f.reviews.On("ListByCourse", ctx, int64(5)).Return([]*entity.Review{{Rating: 5}, {Rating: 4}}, nil)

	list, err := f.svc.ListCourseReviews(ctx, 5)

	require.NoError(t, err)
	assert.Equal(t, 2, list.Count)
	assert.InDelta(t, 4.5, list.AverageRating, 0.001)
}
