package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/course-portal-api/internal/handler"
	"github.com/noah-isme/course-portal-api/internal/middleware"
	"github.com/noah-isme/course-portal-api/internal/models"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth        *handler.AuthHandler
	Courses     *handler.CourseHandler
	Enrollments *handler.EnrollmentHandler
	Messages    *handler.MessageHandler
	Metrics     *handler.MetricsHandler
	Static      *handler.StaticHandler
}

// Options controls optional surfaces.
type Options struct {
	APIPrefix      string
	RequestTimeout time.Duration
	EnableMetrics  bool
	EnableDocs     bool
}

// Register mounts every route on r.
func Register(r *gin.Engine, h Handlers, tokens middleware.TokenValidator, audit middleware.AuditWriter, logger *zap.Logger, opts Options) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		if opts.EnableMetrics {
			r.GET("/metrics", h.Metrics.Prometheus)
		}
	}
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)
	api.Use(middleware.Timeout(opts.RequestTimeout))

	authenticated := middleware.JWT(tokens)
	students := middleware.RequireRoles(models.RoleStudent)
	teachers := middleware.RequireRoles(models.RoleTeacher)
	admins := middleware.RequireRoles(models.RoleAdmin)
	anyRole := middleware.RequireRoles(models.AllRoles...)

	auth := api.Group("/auth")
	{
		auth.POST("/register/student", h.Auth.RegisterStudent)
		auth.POST("/register/teacher", h.Auth.RegisterTeacher)
		auth.POST("/register/admin", authenticated, admins, h.Auth.RegisterAdmin)
		auth.POST("/login/student", h.Auth.Login(models.RoleStudent))
		auth.POST("/login/teacher", h.Auth.Login(models.RoleTeacher))
		auth.POST("/login/admin", h.Auth.Login(models.RoleAdmin))
		auth.GET("/me", authenticated, anyRole, h.Auth.Me)
	}

	courses := api.Group("/courses", authenticated)
	{
		courses.GET("", anyRole, h.Courses.ListApproved)
		courses.POST("", teachers, h.Courses.Submit)
		courses.GET("/my", teachers, h.Courses.ListMine)
		courses.GET("/pending", admins, h.Courses.ListPending)
		courses.PUT("/:id/approve", admins, h.Courses.Approve)
		courses.PUT("/:id/reject", admins, h.Courses.Reject)
		courses.POST("/:id/select", students,
			middleware.Audit(audit, logger, models.AuditActionSelect, string(models.ApprovalKindCourse)),
			h.Enrollments.Select)
	}

	selections := api.Group("/selections", authenticated, students)
	{
		selections.GET("/my", h.Enrollments.ListMine)
		selections.GET("/my/export", h.Enrollments.Export)
		selections.DELETE("/:id",
			middleware.Audit(audit, logger, models.AuditActionWithdraw, string(models.ApprovalKindCourse)),
			h.Enrollments.Withdraw)
	}

	messages := api.Group("/messages", authenticated)
	{
		messages.POST("", students, h.Messages.Submit)
		messages.GET("/my", students, h.Messages.ListMine)
		messages.GET("/pending", admins, h.Messages.ListPending)
		messages.PUT("/:id/approve", admins, h.Messages.Approve)
		messages.PUT("/:id/reject", admins, h.Messages.Reject)
	}

	if h.Static != nil {
		r.NoRoute(h.Static.NoRoute)
	}
}
