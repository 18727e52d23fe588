package models

import "time"

// Note is a free-form memo, optionally tied to a student.
type Note struct {
	ID        string    `db:"id" json:"id"`
	StudentID *string   `db:"student_id" json:"studentId,omitempty"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NoteFilter narrows note listings.
type NoteFilter struct {
	StudentID string
}
