package service

import (
	"context"

	repository "github.com/ds124wfegd/learnlink/internal/database/postgres"
	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/sirupsen/logrus"
)

type accessResolver struct {
	paymentRepo repository.PaymentRepository
	reviewRepo  repository.ReviewRepository
	cache       PurchaseCache
}

// NewAccessResolver works without a cache when cache is nil.
func NewAccessResolver(paymentRepo repository.PaymentRepository, reviewRepo repository.ReviewRepository, cache PurchaseCache) AccessResolver {
	return &accessResolver{
		paymentRepo: paymentRepo,
		reviewRepo:  reviewRepo,
		cache:       cache,
	}
}

func (r *accessResolver) HasPurchasedCourse(ctx context.Context, studentID, courseID int64) (bool, error) {
	if r.cache != nil {
		cached, err := r.cache.IsPurchased(ctx, studentID, courseID)
		if err != nil {
			logrus.WithError(err).Warn("Purchase cache lookup failed")
		} else if cached {
			return true, nil
		}
	}

	paid, err := r.paymentRepo.HasPaidForCourse(ctx, studentID, courseID)
	if err != nil {
		return false, err
	}

	if paid && r.cache != nil {
		if err := r.cache.MarkPurchased(ctx, studentID, courseID); err != nil {
			logrus.WithError(err).Warn("Purchase cache write failed")
		}
	}
	return paid, nil
}

func (r *accessResolver) CanViewLessonContent(ctx context.Context, userID int64, course *entity.Course) (bool, error) {
	if course.IsOwnedBy(userID) {
		return true, nil
	}
	return r.HasPurchasedCourse(ctx, userID, course.ID)
}

func (r *accessResolver) CanReview(ctx context.Context, studentID int64, course *entity.Course) (bool, error) {
	purchased, err := r.HasPurchasedCourse(ctx, studentID, course.ID)
	if err != nil || !purchased {
		return false, err
	}

	reviewed, err := r.reviewRepo.ExistsForCourse(ctx, studentID, course.ID)
	if err != nil {
		return false, err
	}
	return !reviewed, nil
}

func (r *accessResolver) CanPublish(course *entity.Course) bool {
	return len(course.Lessons) >= 1
}

func (r *accessResolver) Forget(ctx context.Context, studentID, courseID int64) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, studentID, courseID); err != nil {
		logrus.WithError(err).Warn("Purchase cache invalidation failed")
	}
}
