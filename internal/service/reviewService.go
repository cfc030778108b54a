package service

import (
	"context"
	"errors"
	"strings"

	repository "github.com/ds124wfegd/learnlink/internal/database/postgres"
	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/sirupsen/logrus"
)

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	courseRepo  repository.CourseRepository
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	access      AccessResolver
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	courseRepo repository.CourseRepository,
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	access AccessResolver,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		courseRepo:  courseRepo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		access:      access,
	}
}

func (s *reviewService) CreateCourseReview(ctx context.Context, p entity.Principal, courseID int64, req *ReviewRequest) (*entity.Review, error) {
	if err := RequireRole(p, entity.RoleStudent); err != nil {
		return nil, err
	}
	if err := validateRating(req.Rating); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	purchased, err := s.access.HasPurchasedCourse(ctx, p.ID, courseID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, entity.ErrReviewNotAllowed
	}
	allowed, err := s.access.CanReview(ctx, p.ID, course)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, entity.ErrReviewExists
	}

	review := &entity.Review{
		StudentID: p.ID,
		CourseID:  &course.ID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"review_id":  review.ID,
		"course_id":  courseID,
		"student_id": p.ID,
	}).Info("Course review created")

	return review, nil
}

func (s *reviewService) CreateProfessorReview(ctx context.Context, p entity.Principal, professorID int64, req *ReviewRequest) (*entity.Review, error) {
	if err := RequireRole(p, entity.RoleStudent); err != nil {
		return nil, err
	}
	if err := validateRating(req.Rating); err != nil {
		return nil, err
	}
	if err := s.requireProfessor(ctx, professorID); err != nil {
		return nil, err
	}

	completed, err := s.bookingRepo.HasCompletedWith(ctx, p.ID, professorID)
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, entity.ErrReviewNotAllowed
	}

	exists, err := s.reviewRepo.ExistsForProfessor(ctx, p.ID, professorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, entity.ErrReviewExists
	}

	review := &entity.Review{
		StudentID:   p.ID,
		ProfessorID: &professorID,
		Rating:      req.Rating,
		Comment:     strings.TrimSpace(req.Comment),
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"review_id":    review.ID,
		"professor_id": professorID,
		"student_id":   p.ID,
	}).Info("Professor review created")

	return review, nil
}

func (s *reviewService) ListCourseReviews(ctx context.Context, courseID int64) (*entity.ReviewList, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return entity.NewReviewList(reviews), nil
}

func (s *reviewService) ListProfessorReviews(ctx context.Context, professorID int64) (*entity.ReviewList, error) {
	if err := s.requireProfessor(ctx, professorID); err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.ListByProfessor(ctx, professorID)
	if err != nil {
		return nil, err
	}
	return entity.NewReviewList(reviews), nil
}

func (s *reviewService) requireProfessor(ctx context.Context, professorID int64) error {
	user, err := s.userRepo.GetByID(ctx, professorID)
	if errors.Is(err, entity.ErrUserNotFound) {
		return entity.ErrProfessorNotFound
	}
	if err != nil {
		return err
	}
	if !user.IsProfessor() {
		return entity.ErrProfessorNotFound
	}
	return nil
}

func validateRating(rating int) error {
	if rating < entity.MinRating || rating > entity.MaxRating {
		return entity.ErrInvalidRating
	}
	return nil
}
