package service

import (
	"errors"
	"time"

	"github.com/noah-isme/tutor-desk-api/internal/models"
)

var (
	// ErrUnknownFrequency is returned for frequencies other than weekly and biweekly.
	ErrUnknownFrequency = errors.New("unknown recurrence frequency")
	// ErrEndBeforeStart is returned when the series end date precedes the template lesson.
	ErrEndBeforeStart = errors.New("end date precedes template lesson")
)

const clockLayout = "15:04:05"

// MatchSeries returns the lessons that structurally belong to the reference's series:
// same student, same UTC weekday and HH:MM:SS, scheduled at or after the reference.
// The reference itself is included when present in all.
func MatchSeries(reference models.Lesson, all []models.Lesson) []models.Lesson {
	ref := reference.DateTime.UTC()
	refClock := ref.Format(clockLayout)

	matched := make([]models.Lesson, 0)
	for _, lesson := range all {
		if lesson.StudentID != reference.StudentID {
			continue
		}
		at := lesson.DateTime.UTC()
		if at.Weekday() != ref.Weekday() || at.Format(clockLayout) != refClock {
			continue
		}
		if at.Before(ref) {
			continue
		}
		matched = append(matched, lesson)
	}
	return matched
}

// SeriesMembers resolves series membership by the stamped series id when the reference
// carries one and falls back to MatchSeries for lessons created without it.
func SeriesMembers(reference models.Lesson, all []models.Lesson) []models.Lesson {
	if reference.SeriesID == nil || *reference.SeriesID == "" {
		return MatchSeries(reference, all)
	}
	seriesID := *reference.SeriesID
	members := make([]models.Lesson, 0)
	for _, lesson := range all {
		if lesson.SeriesID == nil || *lesson.SeriesID != seriesID {
			continue
		}
		if lesson.DateTime.Before(reference.DateTime) {
			continue
		}
		members = append(members, lesson)
	}
	return members
}

// ExpandOccurrences lists the start times following the template, stepping by the
// frequency in loc with the wall-clock time held constant. endDate is inclusive of
// the whole day and the result holds at most limit entries (unbounded when limit <= 0).
// truncated reports that the limit cut off occurrences the end date still allowed.
// The template start is not repeated.
func ExpandOccurrences(start time.Time, frequency models.Frequency, endDate time.Time, loc *time.Location, limit int) (occurrences []time.Time, truncated bool, err error) {
	step := frequency.IntervalDays()
	if step == 0 {
		return nil, false, ErrUnknownFrequency
	}
	if loc == nil {
		loc = time.UTC
	}

	local := start.In(loc)
	y, m, d := endDate.In(loc).Date()
	until := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	if !local.Before(until) {
		return nil, false, ErrEndBeforeStart
	}

	occurrences = make([]time.Time, 0)
	for i := 1; ; i++ {
		next := local.AddDate(0, 0, i*step)
		if !next.Before(until) {
			return occurrences, false, nil
		}
		if limit > 0 && len(occurrences) == limit {
			return occurrences, true, nil
		}
		occurrences = append(occurrences, next.UTC())
	}
}
