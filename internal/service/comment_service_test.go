package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-desk-api/internal/models"
	appErrors "github.com/noah-isme/tutor-desk-api/pkg/errors"
)

type mockCommentRepo struct {
	comments map[string]models.Comment
}

func (m *mockCommentRepo) ListByLesson(ctx context.Context, lessonID string, visibleOnly bool) ([]models.Comment, error) {
	out := make([]models.Comment, 0)
	for _, c := range m.comments {
		if c.LessonID == lessonID && (!visibleOnly || c.VisibleToStudent) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCommentRepo) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	if c, ok := m.comments[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	comment.ID = fmt.Sprintf("comment-%d", len(m.comments)+1)
	m.comments[comment.ID] = *comment
	return nil
}

func (m *mockCommentRepo) Update(ctx context.Context, comment *models.Comment) error {
	m.comments[comment.ID] = *comment
	return nil
}

func (m *mockCommentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.comments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.comments, id)
	return nil
}

type mockNoteRepo struct {
	notes map[string]models.Note
}

func (m *mockNoteRepo) List(ctx context.Context, filter models.NoteFilter) ([]models.Note, error) {
	out := make([]models.Note, 0)
	for _, n := range m.notes {
		if filter.StudentID != "" && (n.StudentID == nil || *n.StudentID != filter.StudentID) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *mockNoteRepo) FindByID(ctx context.Context, id string) (*models.Note, error) {
	if n, ok := m.notes[id]; ok {
		return &n, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockNoteRepo) Create(ctx context.Context, note *models.Note) error {
	note.ID = fmt.Sprintf("note-%d", len(m.notes)+1)
	m.notes[note.ID] = *note
	return nil
}

func (m *mockNoteRepo) Update(ctx context.Context, note *models.Note) error {
	m.notes[note.ID] = *note
	return nil
}

func (m *mockNoteRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.notes[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.notes, id)
	return nil
}

func TestCommentServiceLifecycle(t *testing.T) {
	lessons := newMockLessonRepo(lessonAt("l1", lessonStudentID, time.Now()))
	repo := &mockCommentRepo{comments: map[string]models.Comment{}}
	svc := NewCommentService(repo, lessons, nil, nil)
	ctx := context.Background()

	shared, err := svc.Create(ctx, "l1", CommentRequest{Content: "Great progress", VisibleToStudent: true, Tags: []string{" Homework ", "homework", "Algebra"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"homework", "algebra"}, []string(shared.Tags))

	_, err = svc.Create(ctx, "l1", CommentRequest{Content: "Private remark"})
	require.NoError(t, err)

	visible, err := svc.ListByLesson(ctx, "l1", true)
	require.NoError(t, err)
	assert.Len(t, visible, 1)
	all, err := svc.ListByLesson(ctx, "l1", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	updated, err := svc.Update(ctx, shared.ID, CommentRequest{Content: "Edited"})
	require.NoError(t, err)
	assert.False(t, updated.VisibleToStudent)
	assert.Empty(t, updated.Tags)

	require.NoError(t, svc.Delete(ctx, shared.ID))
	err = svc.Delete(ctx, shared.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCommentServiceRequiresLessonAndContent(t *testing.T) {
	svc := NewCommentService(&mockCommentRepo{comments: map[string]models.Comment{}}, newMockLessonRepo(), nil, nil)

	_, err := svc.Create(context.Background(), "missing", CommentRequest{Content: "hi"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), "missing", CommentRequest{})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Details, "content")
}

func TestNoteServiceLifecycle(t *testing.T) {
	students := newMockStudentRepo(models.Student{ID: lessonStudentID, FirstName: "Ada"})
	repo := &mockNoteRepo{notes: map[string]models.Note{}}
	svc := NewNoteService(repo, students, nil, nil)
	ctx := context.Background()

	general, err := svc.Create(ctx, NoteRequest{Title: "Ideas", Content: "Buy whiteboard"})
	require.NoError(t, err)
	assert.Nil(t, general.StudentID)

	_, err = svc.Create(ctx, NoteRequest{Title: "Ada", StudentID: strPtr(lessonStudentID)})
	require.NoError(t, err)

	_, err = svc.Create(ctx, NoteRequest{Title: "Ghost", StudentID: strPtr("1c0e2b1a-7f3d-4c5e-8a6b-1d2e3f4a5b6c")})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Details, "studentId")

	forAda, err := svc.List(ctx, models.NoteFilter{StudentID: lessonStudentID})
	require.NoError(t, err)
	assert.Len(t, forAda, 1)

	updated, err := svc.Update(ctx, general.ID, NoteRequest{Title: "Ideas v2"})
	require.NoError(t, err)
	assert.Equal(t, "Ideas v2", updated.Title)

	require.NoError(t, svc.Delete(ctx, general.ID))
	_, err = svc.Get(ctx, general.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
