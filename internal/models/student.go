package models

import "time"

// Student is a learner with default lesson attributes used to prefill new lessons.
type Student struct {
	ID                  string    `db:"id" json:"id"`
	PublicID            string    `db:"public_id" json:"publicId"`
	FirstName           string    `db:"first_name" json:"firstName"`
	LastName            *string   `db:"last_name" json:"lastName,omitempty"`
	Email               *string   `db:"email" json:"email,omitempty"`
	Phone               *string   `db:"phone" json:"phone,omitempty"`
	ParentID            *string   `db:"parent_id" json:"parentId,omitempty"`
	DefaultSubject      *string   `db:"default_subject" json:"defaultSubject,omitempty"`
	DefaultPricePerHour *string   `db:"default_price_per_hour" json:"defaultPricePerHour,omitempty"`
	DefaultMeetingLink  *string   `db:"default_meeting_link" json:"defaultMeetingLink,omitempty"`
	Color               *string   `db:"color" json:"color,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time `db:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	return joinName(s.FirstName, s.LastName)
}

// StudentFilter encapsulates allowed search parameters for listing students.
// A zero PageSize returns the whole collection.
type StudentFilter struct {
	Search    string
	ParentID  string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// IsZero reports whether no filter or paging was requested.
func (f StudentFilter) IsZero() bool {
	return f == StudentFilter{}
}
