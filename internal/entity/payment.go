package entity

import "time"

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

type Payment struct {
	ID          int64         `json:"id" db:"id"`
	StudentID   int64         `json:"student_id" db:"student_id"`
	ProfessorID *int64        `json:"professor_id,omitempty" db:"professor_id"`
	BookingID   *int64        `json:"booking_id,omitempty" db:"booking_id"`
	CourseID    *int64        `json:"course_id,omitempty" db:"course_id"`
	Amount      int64         `json:"amount" db:"amount"` // minor units
	Currency    string        `json:"currency" db:"currency"`
	Provider    string        `json:"provider" db:"provider"`
	Status      PaymentStatus `json:"status" db:"status"`
	ExternalRef string        `json:"external_ref,omitempty" db:"external_ref"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

func (p *Payment) IsCoursePurchase() bool {
	return p.CourseID != nil
}

func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}
