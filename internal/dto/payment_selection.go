package dto

import (
	"time"

	"github.com/noah-isme/tutor-desk-api/internal/models"
)

// Selection is the lesson picking state of a payment form.
// DateExplicit is set once the user picked a payment date by hand.
type Selection struct {
	LessonIDs    []string   `json:"lessonIds"`
	Amount       string     `json:"amount"`
	PaymentDate  *time.Time `json:"paymentDate,omitempty"`
	DateExplicit bool       `json:"dateExplicit"`
}

// Contains reports whether the lesson is selected.
func (s Selection) Contains(lessonID string) bool {
	for _, id := range s.LessonIDs {
		if id == lessonID {
			return true
		}
	}
	return false
}

// CandidateLesson is a lesson offered for linking to a payment.
type CandidateLesson struct {
	ViewLesson
	Selected bool `json:"selected"`
}

// ToggleSelectionRequest flips one lesson in the provided selection.
type ToggleSelectionRequest struct {
	models.Payer
	Selection Selection `json:"selection"`
	LessonID  string    `json:"lessonId" validate:"required"`
	ShowAll   bool      `json:"showAll"`
}

// AutoSelectRequest asks for lessons matching a target amount.
// Selection is returned untouched when the amount is not a positive number.
type AutoSelectRequest struct {
	models.Payer
	Amount    string    `json:"amount" validate:"required"`
	Selection Selection `json:"selection"`
}

// AutoSelectResponse carries the replaced selection and how close the match came.
type AutoSelectResponse struct {
	Selection    Selection `json:"selection"`
	MatchedTotal string    `json:"matchedTotal"`
	Exact        bool      `json:"exact"`
	Applied      bool      `json:"applied"`
}

// CandidatesResponse lists the payer's lessons eligible for a payment.
type CandidatesResponse struct {
	Payer   models.Payer      `json:"payer"`
	ShowAll bool              `json:"showAll"`
	Lessons []CandidateLesson `json:"lessons"`
}
