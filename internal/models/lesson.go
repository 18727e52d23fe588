package models

import "time"

// PaymentStatus tracks whether a lesson has been settled.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusUnpaid    PaymentStatus = "unpaid"
	PaymentStatusFree      PaymentStatus = "free"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusOverdue   PaymentStatus = "overdue"
)

// Valid reports whether the status is one of the known values.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusUnpaid,
		PaymentStatusFree, PaymentStatusCancelled, PaymentStatusOverdue:
		return true
	}
	return false
}

// Lesson is a single scheduled tutoring session. PricePerHour is a decimal string.
type Lesson struct {
	ID            string        `db:"id" json:"id"`
	StudentID     string        `db:"student_id" json:"studentId"`
	Subject       string        `db:"subject" json:"subject"`
	DateTime      time.Time     `db:"date_time" json:"dateTime"`
	Duration      int           `db:"duration" json:"duration"`
	PricePerHour  string        `db:"price_per_hour" json:"pricePerHour"`
	MeetingLink   *string       `db:"meeting_link" json:"meetingLink,omitempty"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus"`
	SeriesID      *string       `db:"series_id" json:"seriesId,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updatedAt"`
}

// LessonFilter narrows lesson listings; empty fields are ignored.
type LessonFilter struct {
	StudentID string
	From      *time.Time
	To        *time.Time
	Status    PaymentStatus
}

// IsZero reports whether the filter selects the whole collection.
func (f LessonFilter) IsZero() bool {
	return f.StudentID == "" && f.From == nil && f.To == nil && f.Status == ""
}
