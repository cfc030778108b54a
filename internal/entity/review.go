package entity

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID          int64     `json:"id" db:"id"`
	StudentID   int64     `json:"student_id" db:"student_id"`
	ProfessorID *int64    `json:"professor_id,omitempty" db:"professor_id"`
	CourseID    *int64    `json:"course_id,omitempty" db:"course_id"`
	Rating      int       `json:"rating" db:"rating"`
	Comment     string    `json:"comment" db:"comment"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type ReviewList struct {
	Reviews       []*Review `json:"reviews"`
	AverageRating float64   `json:"average_rating"`
	Count         int       `json:"count"`
}

func NewReviewList(reviews []*Review) *ReviewList {
	list := &ReviewList{Reviews: reviews, Count: len(reviews)}
	if len(reviews) == 0 {
		list.Reviews = []*Review{}
		return list
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	list.AverageRating = float64(sum) / float64(len(reviews))
	return list
}
