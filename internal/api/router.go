// Package api wires together all HTTP routes for the student registry
// backend.
//
// Route grouping philosophy:
//   - /health and /ready are unauthenticated so load balancers and
//     orchestrators can probe the process without credentials.
//   - /api/v1/auth/login is unauthenticated but sits behind a stricter rate
//     limit than the rest of the API.
//   - Everything else under /api/v1/ requires a valid JWT or API key, and the
//     /api/v1/users/ subtree additionally requires the admin role.
package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/student-registry/student-registry/internal/api/admin"
	"github.com/student-registry/student-registry/internal/audit"
	"github.com/student-registry/student-registry/internal/config"
	"github.com/student-registry/student-registry/internal/db/repositories"
	"github.com/student-registry/student-registry/internal/middleware"
	"github.com/student-registry/student-registry/internal/services"
)

// BackgroundServices holds resources that must be stopped during graceful
// shutdown. The caller (cmd/server) is responsible for calling Shutdown()
// after the HTTP server has drained.
type BackgroundServices struct {
	rateLimiters []*middleware.RateLimiter
	shipper      audit.Shipper
}

// Shutdown stops background goroutines and flushes the audit shipper.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	if bg.shipper != nil {
		if err := bg.shipper.Close(); err != nil {
			slog.Warn("failed to close audit shipper", "error", err)
		}
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg *config.Config, database *sql.DB, shipper audit.Shipper) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	userRepo := repositories.NewUserRepository(database)
	studentRepo := repositories.NewStudentRepository(database)
	courseRepo := repositories.NewCourseRepository(database)
	enrollmentRepo := repositories.NewEnrollmentRepository(database)
	activityRepo := repositories.NewActivityRepository(database)

	// Wrap *sql.DB with sqlx for the API key repository.
	sqlxDB := sqlx.NewDb(database, "sqlite3")
	apiKeyRepo := repositories.NewAPIKeyRepository(sqlxDB)

	recorder := audit.NewRecorder(activityRepo, shipper)

	authenticator := services.NewAuthenticator(userRepo, recorder)
	userService := services.NewUserService(userRepo, recorder)
	studentService := services.NewStudentService(studentRepo, enrollmentRepo, recorder)
	courseService := services.NewCourseService(courseRepo, enrollmentRepo, recorder)
	enrollmentService := services.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, recorder)

	authHandlers := admin.NewAuthHandlers(cfg, authenticator)
	userHandlers := admin.NewUserHandlers(userService)
	studentHandlers := admin.NewStudentHandlers(studentService)
	courseHandlers := admin.NewCourseHandlers(courseService)
	enrollmentHandlers := admin.NewEnrollmentHandlers(enrollmentService)
	apiKeyHandlers := admin.NewAPIKeyHandlers(apiKeyRepo, recorder)
	activityHandlers := admin.NewActivityHandlers(activityRepo, cfg.Audit.QueryDefaultLimit)
	statsHandlers := admin.NewStatsHandlers(studentRepo, courseRepo, enrollmentRepo, userRepo, activityRepo)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ready", func(c *gin.Context) {
		if err := database.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	authLimiter := middleware.NewRateLimiter(middleware.AuthRateLimitConfig())
	apiLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())

	login := router.Group("/api/v1/auth")
	login.Use(middleware.RateLimitMiddleware(authLimiter))
	login.POST("/login", authHandlers.LoginHandler())

	authed := router.Group("/api/v1")
	authed.Use(middleware.RateLimitMiddleware(apiLimiter))
	authed.Use(middleware.AuthMiddleware(userRepo, apiKeyRepo))
	{
		authed.POST("/auth/logout", authHandlers.LogoutHandler())
		authed.GET("/auth/me", authHandlers.MeHandler())

		authed.GET("/students", studentHandlers.ListHandler())
		authed.POST("/students", studentHandlers.CreateHandler())
		authed.GET("/students/:student_id", studentHandlers.GetHandler())
		authed.PUT("/students/:student_id", studentHandlers.UpdateHandler())
		authed.DELETE("/students/:student_id", studentHandlers.DeleteHandler())
		authed.GET("/students/:student_id/enrollments", enrollmentHandlers.ListByStudentHandler())

		authed.GET("/courses", courseHandlers.ListHandler())
		authed.POST("/courses", courseHandlers.CreateHandler())
		authed.GET("/courses/:course_id", courseHandlers.GetHandler())
		authed.PUT("/courses/:course_id", courseHandlers.UpdateHandler())
		authed.DELETE("/courses/:course_id", courseHandlers.DeleteHandler())
		authed.GET("/courses/:course_id/enrollments", enrollmentHandlers.ListByCourseHandler())

		authed.POST("/enrollments", enrollmentHandlers.EnrollHandler())
		authed.DELETE("/enrollments/:enrollment_id", enrollmentHandlers.DropHandler())
		authed.PUT("/enrollments/:enrollment_id/grade", enrollmentHandlers.GradeHandler())

		authed.GET("/apikeys", apiKeyHandlers.ListHandler())
		authed.POST("/apikeys", apiKeyHandlers.CreateHandler())
		authed.DELETE("/apikeys/:key_id", apiKeyHandlers.DeleteHandler())

		authed.GET("/activity", activityHandlers.ListHandler())
		authed.GET("/stats/dashboard", statsHandlers.DashboardHandler())

		users := authed.Group("/users")
		users.Use(middleware.RequireAdmin())
		{
			users.GET("", userHandlers.ListHandler())
			users.POST("", userHandlers.CreateHandler())
			users.GET("/:user_id", userHandlers.GetHandler())
			users.PUT("/:user_id", userHandlers.UpdateHandler())
			users.DELETE("/:user_id", userHandlers.DeleteHandler())
			users.PUT("/:user_id/password", userHandlers.PasswordHandler())
			users.PUT("/:user_id/active", userHandlers.ActiveHandler())
		}
	}

	bg := &BackgroundServices{
		rateLimiters: []*middleware.RateLimiter{authLimiter, apiLimiter},
		shipper:      shipper,
	}
	return router, bg
}
