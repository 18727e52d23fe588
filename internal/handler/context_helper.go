package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/tutor-desk-api/internal/middleware"
	"github.com/noah-isme/tutor-desk-api/internal/models"
	appErrors "github.com/noah-isme/tutor-desk-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.SessionClaims {
	return middleware.CurrentSession(c)
}

func invalidPayload(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
}

func invalidQuery(field, message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrValidation, "invalid query parameters").WithDetails(map[string]string{field: message})
}

// pathID reads the :id route parameter; ids that are not UUIDs cannot match any row.
func pathID(c *gin.Context) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid path parameter").WithDetails(map[string]string{"id": "id must be a UUID"})
	}
	return id, nil
}

// idQuery reads an optional UUID filter.
func idQuery(c *gin.Context, key string) (string, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return "", nil
	}
	if _, err := uuid.Parse(raw); err != nil {
		return "", invalidQuery(key, key+" must be a UUID")
	}
	return raw, nil
}

// parseTimeQuery accepts RFC 3339 timestamps or plain dates (midnight UTC).
func parseTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, invalidQuery(key, key+" must be an RFC 3339 timestamp or YYYY-MM-DD date")
	}
	return &t, nil
}

// pagingQuery reads page and limit; paging is off unless limit is given.
func pagingQuery(c *gin.Context) (page, size int, err error) {
	if raw := c.Query("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil || page < 1 {
			return 0, 0, invalidQuery("page", "page must be a positive integer")
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if size, err = strconv.Atoi(raw); err != nil || size < 1 {
			return 0, 0, invalidQuery("limit", "limit must be a positive integer")
		}
	}
	return page, size, nil
}

func boolQuery(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}
