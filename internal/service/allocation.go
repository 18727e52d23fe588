package service

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/tutor-desk-api/internal/dto"
	"github.com/noah-isme/tutor-desk-api/internal/models"
)

// amountTolerance absorbs rounding when comparing summed lesson prices to a target.
const amountTolerance = 0.01

// ErrLessonNotCandidate is returned when toggling a lesson outside the payer's candidates.
var ErrLessonNotCandidate = errors.New("lesson is not a candidate for this payer")

// ParseAmount parses a decimal string; ok is false for empty, malformed or non-finite input.
func ParseAmount(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatAmount renders an amount with two decimals.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// TotalPrice is pricePerHour * duration / 60. An unparsable price counts as zero.
func TotalPrice(lesson models.Lesson) float64 {
	price, _ := ParseAmount(lesson.PricePerHour)
	return price * float64(lesson.Duration) / 60
}

// CandidateLessons returns the payer's lessons: the student's own, or those of every
// student linked to the parent. Without showAll only pending lessons are kept.
func CandidateLessons(lessons []models.Lesson, students []models.Student, payer models.Payer, showAll bool) []models.Lesson {
	owners := make(map[string]struct{})
	switch payer.Type {
	case models.PayerStudent:
		owners[payer.ID] = struct{}{}
	case models.PayerParent:
		for _, st := range students {
			if st.ParentID != nil && *st.ParentID == payer.ID {
				owners[st.ID] = struct{}{}
			}
		}
	}

	candidates := make([]models.Lesson, 0)
	for _, lesson := range lessons {
		if _, ok := owners[lesson.StudentID]; !ok {
			continue
		}
		if !showAll && lesson.PaymentStatus != models.PaymentStatusPending {
			continue
		}
		candidates = append(candidates, lesson)
	}
	return candidates
}

// ToggleLesson adds or removes a lesson from the selection and recomputes the amount
// from the selected lessons, replacing whatever amount was typed. Adding the first lesson
// to an empty selection also moves the payment date to that lesson unless the date was
// picked explicitly.
func ToggleLesson(sel dto.Selection, lessonID string, pool []models.Lesson) (dto.Selection, error) {
	byID := make(map[string]models.Lesson, len(pool))
	for _, lesson := range pool {
		byID[lesson.ID] = lesson
	}

	next := dto.Selection{
		Amount:       sel.Amount,
		PaymentDate:  sel.PaymentDate,
		DateExplicit: sel.DateExplicit,
	}

	if sel.Contains(lessonID) {
		next.LessonIDs = make([]string, 0, len(sel.LessonIDs))
		for _, id := range sel.LessonIDs {
			if id != lessonID {
				next.LessonIDs = append(next.LessonIDs, id)
			}
		}
	} else {
		lesson, ok := byID[lessonID]
		if !ok {
			return sel, ErrLessonNotCandidate
		}
		next.LessonIDs = append(append(make([]string, 0, len(sel.LessonIDs)+1), sel.LessonIDs...), lessonID)
		if len(sel.LessonIDs) == 0 && !sel.DateExplicit {
			at := lesson.DateTime
			next.PaymentDate = &at
		}
	}

	var total float64
	for _, id := range next.LessonIDs {
		if lesson, ok := byID[id]; ok {
			total += TotalPrice(lesson)
		}
	}
	next.Amount = FormatAmount(total)
	return next, nil
}

// AutoSelectByAmount greedily picks pending lessons, most recent first, while the running
// total stays within target+0.01, stopping once it is within 0.01 of the target. It is a
// single irrevocable pass, so an exact subset can be missed. ok is false when amount is
// not a positive number, in which case nothing is selected.
func AutoSelectByAmount(candidates []models.Lesson, amount string) (selected []models.Lesson, total float64, ok bool) {
	target, parsed := ParseAmount(amount)
	if !parsed || target <= 0 {
		return nil, 0, false
	}

	pending := make([]models.Lesson, 0, len(candidates))
	for _, lesson := range candidates {
		if lesson.PaymentStatus == models.PaymentStatusPending {
			pending = append(pending, lesson)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].DateTime.After(pending[j].DateTime)
	})

	selected = make([]models.Lesson, 0)
	for _, lesson := range pending {
		price := TotalPrice(lesson)
		if total+price <= target+amountTolerance {
			selected = append(selected, lesson)
			total += price
		}
		if math.Abs(total-target) < amountTolerance {
			break
		}
	}
	return selected, total, true
}
