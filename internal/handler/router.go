package handler

import "github.com/gin-gonic/gin"

// Handlers groups the API handlers mounted under the API prefix.
type Handlers struct {
	Auth            *AuthHandler
	Students        *StudentHandler
	Parents         *ParentHandler
	Lessons         *LessonHandler
	RecurringLesson *RecurringLessonHandler
	Comments        *CommentHandler
	Notes           *NoteHandler
	Payments        *PaymentHandler
}

// Register mounts every route on the group. Only login is reachable without a session.
func (h Handlers) Register(api *gin.RouterGroup, session gin.HandlerFunc) {
	api.POST("/auth/login", h.Auth.Login)

	secured := api.Group("")
	secured.Use(session)

	auth := secured.Group("/auth")
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me)
	auth.POST("/change-password", h.Auth.ChangePassword)

	students := secured.Group("/students")
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.GET("/:id", h.Students.Get)
	students.PUT("/:id", h.Students.Update)
	students.DELETE("/:id", h.Students.Delete)

	parents := secured.Group("/parents")
	parents.GET("", h.Parents.List)
	parents.POST("", h.Parents.Create)
	parents.GET("/:id", h.Parents.Get)
	parents.PUT("/:id", h.Parents.Update)
	parents.DELETE("/:id", h.Parents.Delete)

	lessons := secured.Group("/lessons")
	lessons.GET("", h.Lessons.List)
	lessons.POST("", h.Lessons.Create)
	lessons.GET("/agenda", h.Lessons.Agenda)
	lessons.GET("/export", h.Lessons.Export)
	lessons.POST("/bulk-delete", h.Lessons.BulkDelete)
	lessons.GET("/:id", h.Lessons.Get)
	lessons.PUT("/:id", h.Lessons.Update)
	lessons.DELETE("/:id", h.Lessons.Delete)
	lessons.DELETE("/:id/series", h.Lessons.DeleteSeries)
	lessons.GET("/:id/comments", h.Comments.List)
	lessons.POST("/:id/comments", h.Comments.Create)

	comments := secured.Group("/comments")
	comments.PUT("/:id", h.Comments.Update)
	comments.DELETE("/:id", h.Comments.Delete)

	recurring := secured.Group("/recurring-lessons")
	recurring.GET("", h.RecurringLesson.List)
	recurring.POST("", h.RecurringLesson.Create)
	recurring.GET("/:id", h.RecurringLesson.Get)
	recurring.DELETE("/:id", h.RecurringLesson.Delete)

	notes := secured.Group("/notes")
	notes.GET("", h.Notes.List)
	notes.POST("", h.Notes.Create)
	notes.GET("/:id", h.Notes.Get)
	notes.PUT("/:id", h.Notes.Update)
	notes.DELETE("/:id", h.Notes.Delete)

	payments := secured.Group("/payments")
	payments.GET("", h.Payments.List)
	payments.POST("", h.Payments.Create)
	payments.GET("/candidates", h.Payments.Candidates)
	payments.POST("/selection/toggle", h.Payments.Toggle)
	payments.POST("/auto-select", h.Payments.AutoSelect)
	payments.GET("/:id", h.Payments.Get)
	payments.PUT("/:id", h.Payments.Update)
	payments.DELETE("/:id", h.Payments.Delete)
	payments.GET("/:id/lessons", h.Payments.Lessons)
}
