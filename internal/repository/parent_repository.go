package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutor-desk-api/internal/models"
)

const parentColumns = "id, first_name, last_name, email, phone, created_at, updated_at"

// ParentRepository manages persistence for parents.
type ParentRepository struct {
	db *sqlx.DB
}

// NewParentRepository constructs a ParentRepository.
func NewParentRepository(db *sqlx.DB) *ParentRepository {
	return &ParentRepository{db: db}
}

// List returns parents matching the filter with the unpaged total.
func (r *ParentRepository) List(ctx context.Context, filter models.ParentFilter) ([]models.Parent, int, error) {
	base := "FROM parents"
	var args []interface{}
	if filter.Search != "" {
		base += " WHERE LOWER(first_name) LIKE $1 OR LOWER(COALESCE(last_name, '')) LIKE $1 OR LOWER(COALESCE(email, '')) LIKE $1"
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	limit, offset := pageBounds(filter.Page, filter.PageSize)

	parents := make([]models.Parent, 0)
	query := fmt.Sprintf("SELECT %s %s ORDER BY first_name, id%s", parentColumns, base, limitClause(limit, offset))
	if err := r.db.SelectContext(ctx, &parents, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list parents: %w", err)
	}
	if limit == 0 {
		return parents, len(parents), nil
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count parents: %w", err)
	}
	return parents, total, nil
}

// FindByID fetches a parent by ID.
func (r *ParentRepository) FindByID(ctx context.Context, id string) (*models.Parent, error) {
	var parent models.Parent
	if err := r.db.GetContext(ctx, &parent, `SELECT `+parentColumns+` FROM parents WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find parent: %w", err)
	}
	return &parent, nil
}

// Create inserts a parent.
func (r *ParentRepository) Create(ctx context.Context, parent *models.Parent) error {
	if parent.ID == "" {
		parent.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if parent.CreatedAt.IsZero() {
		parent.CreatedAt = now
	}
	parent.UpdatedAt = now
	const query = `INSERT INTO parents (id, first_name, last_name, email, phone, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :email, :phone, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, parent); err != nil {
		return fmt.Errorf("create parent: %w", err)
	}
	return nil
}

// Update modifies a parent.
func (r *ParentRepository) Update(ctx context.Context, parent *models.Parent) error {
	parent.UpdatedAt = time.Now().UTC()
	const query = `UPDATE parents SET first_name = :first_name, last_name = :last_name, email = :email, phone = :phone, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, parent)
	if err != nil {
		return fmt.Errorf("update parent: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a parent; linked students keep living with parent_id nulled.
func (r *ParentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM parents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete parent: %w", err)
	}
	return expectAffected(res)
}
