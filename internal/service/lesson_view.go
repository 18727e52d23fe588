package service

import (
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/tutor-desk-api/internal/dto"
	"github.com/noah-isme/tutor-desk-api/internal/models"
)

const (
	UnknownStudentName  = "Unknown Student"
	DefaultStudentColor = "#3b82f6"

	dateKeyLayout = "2006-01-02"
)

// TransformLessonWithStudent joins a lesson with its student's name and color.
// A nil student yields the unknown-student fallbacks.
func TransformLessonWithStudent(lesson models.Lesson, student *models.Student) dto.ViewLesson {
	price, _ := ParseAmount(lesson.PricePerHour)
	view := dto.ViewLesson{
		ID:            lesson.ID,
		StudentID:     lesson.StudentID,
		Subject:       lesson.Subject,
		DateTime:      lesson.DateTime,
		Duration:      lesson.Duration,
		PricePerHour:  price,
		TotalPrice:    TotalPrice(lesson),
		MeetingLink:   lesson.MeetingLink,
		PaymentStatus: lesson.PaymentStatus,
		SeriesID:      lesson.SeriesID,
		StudentName:   UnknownStudentName,
		StudentColor:  DefaultStudentColor,
	}
	if student == nil {
		return view
	}

	lastName := ""
	if student.LastName != nil {
		lastName = *student.LastName
	}
	view.StudentName = strings.TrimRight(student.FirstName+" "+lastName, " ")
	if student.Color != nil && *student.Color != "" {
		view.StudentColor = *student.Color
	}
	return view
}

// TransformLessons joins every lesson with its student looked up by id.
func TransformLessons(lessons []models.Lesson, students []models.Student) []dto.ViewLesson {
	byID := make(map[string]*models.Student, len(students))
	for i := range students {
		byID[students[i].ID] = &students[i]
	}
	views := make([]dto.ViewLesson, 0, len(lessons))
	for _, lesson := range lessons {
		views = append(views, TransformLessonWithStudent(lesson, byID[lesson.StudentID]))
	}
	return views
}

// AgendaWindowStart is local midnight lookbackDays before now.
func AgendaWindowStart(now time.Time, loc *time.Location, lookbackDays int) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d-lookbackDays, 0, 0, 0, 0, loc)
}

// GroupByDate keeps lessons from the agenda window onwards, sorts them ascending and
// buckets them by local calendar day. Today's bucket is always present. A group is
// flagged firstOfMonth when its month differs from the previous group's.
func GroupByDate(views []dto.ViewLesson, now time.Time, loc *time.Location, lookbackDays int) []dto.DateGroup {
	if loc == nil {
		loc = time.UTC
	}
	start := AgendaWindowStart(now, loc, lookbackDays)

	kept := make([]dto.ViewLesson, 0, len(views))
	for _, v := range views {
		if !v.DateTime.Before(start) {
			kept = append(kept, v)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].DateTime.Before(kept[j].DateTime)
	})

	today := now.In(loc).Format(dateKeyLayout)
	groups := make([]dto.DateGroup, 0)
	index := make(map[string]int)
	for _, v := range kept {
		key := v.DateTime.In(loc).Format(dateKeyLayout)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, dto.DateGroup{Date: key, Lessons: []dto.ViewLesson{}})
		}
		groups[i].Lessons = append(groups[i].Lessons, v)
	}

	if _, ok := index[today]; !ok {
		pos := sort.Search(len(groups), func(i int) bool { return groups[i].Date > today })
		groups = append(groups, dto.DateGroup{})
		copy(groups[pos+1:], groups[pos:])
		groups[pos] = dto.DateGroup{Date: today, Lessons: []dto.ViewLesson{}}
	}

	for i := range groups {
		groups[i].IsToday = groups[i].Date == today
		groups[i].FirstOfMonth = i == 0 || groups[i].Date[:7] != groups[i-1].Date[:7]
	}
	return groups
}
