package models

import (
	"time"

	"github.com/lib/pq"
)

// Comment is a remark attached to a lesson.
type Comment struct {
	ID               string         `db:"id" json:"id"`
	LessonID         string         `db:"lesson_id" json:"lessonId"`
	Content          string         `db:"content" json:"content"`
	VisibleToStudent bool           `db:"visible_to_student" json:"visibleToStudent"`
	Tags             pq.StringArray `db:"tags" json:"tags"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
}
