package repository

import (
	"database/sql"
	"fmt"
)

// expectAffected maps a statement that touched no rows to sql.ErrNoRows.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// pageBounds normalises paging input. A non-positive size disables paging.
func pageBounds(page, size int) (limit, offset int) {
	if size <= 0 {
		return 0, 0
	}
	if size > 200 {
		size = 200
	}
	if page < 1 {
		page = 1
	}
	return size, (page - 1) * size
}

func limitClause(limit, offset int) string {
	if limit == 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
}
