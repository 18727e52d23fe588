package models

import "time"

// Frequency is the repeat interval of a recurring series.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
)

// IntervalDays returns the day step between occurrences, or 0 for unknown values.
func (f Frequency) IntervalDays() int {
	switch f {
	case FrequencyWeekly:
		return 7
	case FrequencyBiweekly:
		return 14
	}
	return 0
}

// RecurringLesson marks a template lesson as the head of a series.
type RecurringLesson struct {
	ID               string    `db:"id" json:"id"`
	TemplateLessonID string    `db:"template_lesson_id" json:"templateLessonId"`
	Frequency        Frequency `db:"frequency" json:"frequency"`
	EndDate          time.Time `db:"end_date" json:"endDate"`
	SeriesID         string    `db:"series_id" json:"seriesId"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}
