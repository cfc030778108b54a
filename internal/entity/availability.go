package entity

import "time"

type AvailabilitySlot struct {
	ID          int64     `json:"id" db:"id"`
	ProfessorID int64     `json:"professor_id" db:"professor_id"`
	StartTime   time.Time `json:"start_time" db:"start_time"`
	EndTime     time.Time `json:"end_time" db:"end_time"`
	Timezone    string    `json:"timezone" db:"timezone"`
	IsBooked    bool      `json:"is_booked" db:"is_booked"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (s *AvailabilitySlot) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// IsUpcoming reports whether the slot starts strictly after now.
func (s *AvailabilitySlot) IsUpcoming(now time.Time) bool {
	return s.StartTime.After(now)
}
