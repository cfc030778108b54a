package service

import (
	"context"
	"io"
	"strings"

	repository "github.com/ds124wfegd/learnlink/internal/database/postgres"
	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/sirupsen/logrus"
)

type courseService struct {
	courseRepo      repository.CourseRepository
	lessonRepo      repository.LessonRepository
	access          AccessResolver
	covers          CoverStorage
	defaultCurrency string
}

func NewCourseService(
	courseRepo repository.CourseRepository,
	lessonRepo repository.LessonRepository,
	access AccessResolver,
	covers CoverStorage,
	defaultCurrency string,
) CourseService {
	return &courseService{
		courseRepo:      courseRepo,
		lessonRepo:      lessonRepo,
		access:          access,
		covers:          covers,
		defaultCurrency: defaultCurrency,
	}
}

func (s *courseService) CreateCourse(ctx context.Context, p entity.Principal, req *CourseRequest) (*entity.Course, error) {
	if err := RequireRole(p, entity.RoleProfessor); err != nil {
		return nil, err
	}

	course := &entity.Course{ProfessorID: p.ID}
	if err := s.applyCourse(course, req); err != nil {
		return nil, err
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"course_id":    course.ID,
		"professor_id": course.ProfessorID,
	}).Info("Course created")

	return course, nil
}

func (s *courseService) UpdateCourse(ctx context.Context, p entity.Principal, courseID int64, req *CourseRequest) (*entity.Course, error) {
	course, err := s.ownedCourse(ctx, p, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.applyCourse(course, req); err != nil {
		return nil, err
	}
	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *courseService) applyCourse(course *entity.Course, req *CourseRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return entity.Invalidf("title is required")
	}
	if req.Price < 0 {
		return entity.Invalidf("price cannot be negative")
	}

	level := req.Level
	if level == "" {
		level = entity.LevelBeginner
	}
	if !level.Valid() {
		return entity.Invalidf("unknown course level %q", req.Level)
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	course.Title = title
	course.Description = req.Description
	course.Price = req.Price
	course.Currency = currency
	course.Category = strings.TrimSpace(req.Category)
	course.Level = level
	return nil
}

func (s *courseService) DeleteCourse(ctx context.Context, p entity.Principal, courseID int64) error {
	if _, err := s.ownedCourse(ctx, p, courseID); err != nil {
		return err
	}
	if err := s.courseRepo.Delete(ctx, courseID); err != nil {
		return err
	}

	logrus.WithField("course_id", courseID).Info("Course deleted")
	return nil
}

func (s *courseService) PublishCourse(ctx context.Context, p entity.Principal, courseID int64) (*entity.Course, error) {
	course, err := s.ownedCourse(ctx, p, courseID)
	if err != nil {
		return nil, err
	}

	course.Lessons, err = s.lessonRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !s.access.CanPublish(course) {
		return nil, entity.ErrCourseHasNoLesson
	}

	// lessons may vanish between the check and the update; the repository rechecks
	if err := s.courseRepo.SetPublished(ctx, courseID, true); err != nil {
		return nil, err
	}
	course.Published = true

	logrus.WithField("course_id", courseID).Info("Course published")
	return course, nil
}

func (s *courseService) UnpublishCourse(ctx context.Context, p entity.Principal, courseID int64) (*entity.Course, error) {
	course, err := s.ownedCourse(ctx, p, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.courseRepo.SetPublished(ctx, courseID, false); err != nil {
		return nil, err
	}
	course.Published = false
	return course, nil
}

func (s *courseService) UploadCover(ctx context.Context, p entity.Principal, courseID int64, filename string, image io.Reader) (*entity.Course, error) {
	course, err := s.ownedCourse(ctx, p, courseID)
	if err != nil {
		return nil, err
	}

	url, err := s.covers.SaveCover(ctx, courseID, filename, image)
	if err != nil {
		return nil, err
	}
	if err := s.courseRepo.SetCover(ctx, courseID, url); err != nil {
		return nil, err
	}
	course.CoverURL = url

	logrus.WithFields(logrus.Fields{
		"course_id": courseID,
		"cover_url": url,
	}).Info("Course cover uploaded")

	return course, nil
}

func (s *courseService) GetCourse(ctx context.Context, viewer *entity.Principal, courseID int64) (*entity.Course, error) {
	course, err := s.visibleCourse(ctx, viewer, courseID)
	if err != nil {
		return nil, err
	}

	course.Lessons, err = s.lessonRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	canView := false
	if viewer != nil {
		canView, err = s.access.CanViewLessonContent(ctx, viewer.ID, course)
		if err != nil {
			return nil, err
		}
	}
	if !canView {
		for _, lesson := range course.Lessons {
			lesson.ContentURL = ""
		}
	}
	return course, nil
}

func (s *courseService) GetAccess(ctx context.Context, p entity.Principal, courseID int64) (*entity.CourseAccess, error) {
	course, err := s.visibleCourse(ctx, &p, courseID)
	if err != nil {
		return nil, err
	}

	purchased, err := s.access.HasPurchasedCourse(ctx, p.ID, courseID)
	if err != nil {
		return nil, err
	}
	canView, err := s.access.CanViewLessonContent(ctx, p.ID, course)
	if err != nil {
		return nil, err
	}
	canReview, err := s.access.CanReview(ctx, p.ID, course)
	if err != nil {
		return nil, err
	}

	return &entity.CourseAccess{
		CourseID:       courseID,
		Purchased:      purchased,
		CanViewContent: canView,
		CanReview:      canReview,
	}, nil
}

func (s *courseService) ListPublished(ctx context.Context, filter entity.CourseFilter) ([]*entity.Course, error) {
	if filter.Level != "" && !filter.Level.Valid() {
		return nil, entity.Invalidf("unknown course level %q", filter.Level)
	}
	if filter.Offset < 0 {
		return nil, entity.Invalidf("offset cannot be negative")
	}
	return s.courseRepo.ListPublished(ctx, filter)
}

func (s *courseService) ListMine(ctx context.Context, p entity.Principal) ([]*entity.Course, error) {
	if err := RequireRole(p, entity.RoleProfessor); err != nil {
		return nil, err
	}
	return s.courseRepo.ListByProfessor(ctx, p.ID)
}

func (s *courseService) AddLesson(ctx context.Context, p entity.Principal, courseID int64, req *LessonRequest) (*entity.Lesson, error) {
	if _, err := s.ownedCourse(ctx, p, courseID); err != nil {
		return nil, err
	}

	lesson := &entity.Lesson{CourseID: courseID}
	if err := applyLesson(lesson, req); err != nil {
		return nil, err
	}
	if err := s.lessonRepo.Create(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *courseService) UpdateLesson(ctx context.Context, p entity.Principal, courseID, lessonID int64, req *LessonRequest) (*entity.Lesson, error) {
	if _, err := s.ownedCourse(ctx, p, courseID); err != nil {
		return nil, err
	}

	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.CourseID != courseID {
		return nil, entity.ErrLessonNotFound
	}

	if err := applyLesson(lesson, req); err != nil {
		return nil, err
	}
	if err := s.lessonRepo.Update(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *courseService) DeleteLesson(ctx context.Context, p entity.Principal, courseID, lessonID int64) error {
	if _, err := s.ownedCourse(ctx, p, courseID); err != nil {
		return err
	}
	return s.lessonRepo.Delete(ctx, courseID, lessonID)
}

func applyLesson(lesson *entity.Lesson, req *LessonRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return entity.Invalidf("lesson title is required")
	}
	if req.DurationMinutes < 0 || req.Price < 0 || req.Position < 0 {
		return entity.Invalidf("duration, price and position cannot be negative")
	}

	lesson.Title = title
	lesson.Description = req.Description
	lesson.ContentURL = strings.TrimSpace(req.ContentURL)
	lesson.DurationMinutes = req.DurationMinutes
	lesson.Price = req.Price
	if req.Position > 0 {
		lesson.Position = req.Position
	}
	return nil
}

// ownedCourse loads a course the caller is allowed to modify.
func (s *courseService) ownedCourse(ctx context.Context, p entity.Principal, courseID int64) (*entity.Course, error) {
	if err := RequireRole(p, entity.RoleProfessor); err != nil {
		return nil, err
	}
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := RequireOwnership(p, course.ProfessorID); err != nil {
		return nil, err
	}
	return course, nil
}

// visibleCourse hides unpublished courses from everyone except their owner.
func (s *courseService) visibleCourse(ctx context.Context, viewer *entity.Principal, courseID int64) (*entity.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.Published && (viewer == nil || !course.IsOwnedBy(viewer.ID)) {
		return nil, entity.ErrCourseNotFound
	}
	return course, nil
}
