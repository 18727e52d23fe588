package models

import (
	"strings"
	"time"
)

// Parent is a guardian who may pay for one or more students.
type Parent struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"firstName"`
	LastName  *string   `db:"last_name" json:"lastName,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name.
func (p Parent) FullName() string {
	return joinName(p.FirstName, p.LastName)
}

// ParentFilter narrows parent listings.
type ParentFilter struct {
	Search   string
	Page     int
	PageSize int
}

func joinName(first string, last *string) string {
	if last == nil {
		return first
	}
	return strings.TrimSpace(first + " " + *last)
}
