package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-desk-api/internal/service"
)

const (
	unmatchedRoute = "unmatched"
	systemResource = "system"
)

// Metrics records latency and count per route pattern, labelled with the API resource the
// route belongs to (lessons, payments, ...). Requests that match no route share one label.
func Metrics(metricsSvc *service.MetricsService, apiPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, routeResource(path, apiPrefix), path, c.Writer.Status(), time.Since(start))
	}
}

// routeResource returns the first segment below apiPrefix, e.g. "lessons" for
// /api/lessons/:id/series. Routes outside the prefix count as system routes.
func routeResource(path, apiPrefix string) string {
	if path == unmatchedRoute {
		return unmatchedRoute
	}
	rest, ok := strings.CutPrefix(path, strings.TrimRight(apiPrefix, "/")+"/")
	if !ok {
		return systemResource
	}
	resource, _, _ := strings.Cut(rest, "/")
	if resource == "" {
		return systemResource
	}
	return resource
}
