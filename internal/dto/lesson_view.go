package dto

import (
	"time"

	"github.com/noah-isme/tutor-desk-api/internal/models"
)

// ViewLesson is a lesson joined with its student's display attributes.
type ViewLesson struct {
	ID            string               `json:"id"`
	StudentID     string               `json:"studentId"`
	Subject       string               `json:"subject"`
	DateTime      time.Time            `json:"dateTime"`
	Duration      int                  `json:"duration"`
	PricePerHour  float64              `json:"pricePerHour"`
	TotalPrice    float64              `json:"totalPrice"`
	MeetingLink   *string              `json:"meetingLink,omitempty"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	SeriesID      *string              `json:"seriesId,omitempty"`
	StudentName   string               `json:"studentName"`
	StudentColor  string               `json:"studentColor"`
}

// DateGroup holds the lessons falling on one calendar day.
type DateGroup struct {
	Date         string       `json:"date"`
	FirstOfMonth bool         `json:"firstOfMonth"`
	IsToday      bool         `json:"isToday"`
	Lessons      []ViewLesson `json:"lessons"`
}

// Agenda is the grouped lesson list starting at the lookback window.
type Agenda struct {
	Today  string      `json:"today"`
	From   time.Time   `json:"from"`
	Groups []DateGroup `json:"groups"`
}
