package entity

import "time"

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "BEGINNER"
	LevelIntermediate CourseLevel = "INTERMEDIATE"
	LevelAdvanced     CourseLevel = "ADVANCED"
)

func (l CourseLevel) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

type Course struct {
	ID          int64       `json:"id" db:"id"`
	ProfessorID int64       `json:"professor_id" db:"professor_id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	Price       int64       `json:"price" db:"price"` // minor units
	Currency    string      `json:"currency" db:"currency"`
	Category    string      `json:"category" db:"category"`
	Level       CourseLevel `json:"level" db:"level"`
	Published   bool        `json:"published" db:"published"`
	CoverURL    string      `json:"cover_url,omitempty" db:"cover_url"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`

	Lessons []*Lesson `json:"lessons,omitempty" db:"-"`
}

func (c *Course) IsOwnedBy(userID int64) bool {
	return c.ProfessorID == userID
}

type Lesson struct {
	ID              int64     `json:"id" db:"id"`
	CourseID        int64     `json:"course_id" db:"course_id"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	ContentURL      string    `json:"content_url,omitempty" db:"content_url"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	Price           int64     `json:"price" db:"price"`
	Position        int       `json:"position" db:"position"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

type CourseFilter struct {
	Category string
	Level    CourseLevel
	Limit    int
	Offset   int
}

// CourseAccess summarizes what a caller may do with a course.
type CourseAccess struct {
	CourseID       int64 `json:"course_id"`
	Purchased      bool  `json:"purchased"`
	CanViewContent bool  `json:"can_view_content"`
	CanReview      bool  `json:"can_review"`
}
