package models

import "time"

// PayerType distinguishes student and parent payers.
type PayerType string

const (
	PayerStudent PayerType = "student"
	PayerParent  PayerType = "parent"
)

// Payer identifies who a payment is recorded against.
type Payer struct {
	Type PayerType `json:"payerType" form:"payerType" validate:"required,oneof=student parent"`
	ID   string    `json:"payerId" form:"payerId" validate:"required,uuid"`
}

// Payment records money received from a payer. Amount is a decimal string.
type Payment struct {
	ID          string    `db:"id" json:"id"`
	StudentID   *string   `db:"student_id" json:"studentId,omitempty"`
	ParentID    *string   `db:"parent_id" json:"parentId,omitempty"`
	Amount      string    `db:"amount" json:"amount"`
	PaymentDate time.Time `db:"payment_date" json:"paymentDate"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
	LessonIDs   []string  `db:"-" json:"lessonIds,omitempty"`
}

// Payer returns the payer the payment is recorded against.
func (p Payment) Payer() Payer {
	if p.ParentID != nil {
		return Payer{Type: PayerParent, ID: *p.ParentID}
	}
	if p.StudentID != nil {
		return Payer{Type: PayerStudent, ID: *p.StudentID}
	}
	return Payer{}
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	StudentID string
	ParentID  string
}
