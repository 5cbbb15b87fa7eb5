package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/portal-backend/internal/config"
	"github.com/stemsi/portal-backend/internal/handler"
	"github.com/stemsi/portal-backend/internal/middleware"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/response"
	"github.com/stemsi/portal-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Grade        *handler.GradeHandler
	Registration *handler.RegistrationHandler
	Certificate  *handler.CertificateHandler
	Notification *handler.NotificationHandler
	StudentMgmt  *handler.StudentManagementHandler
	AdminRole    *handler.AdminRoleHandler
	AdminUser    *handler.AdminUserHandler
	Dashboard    *handler.DashboardHandler
	WS           *handler.WSHandler
	System       *handler.SystemHandler
}

// Infra groups the cross-cutting pieces the router mounts.
type Infra struct {
	Metrics        *middleware.Metrics
	MetricsHandler http.Handler
	AuthLimiter    *middleware.RateLimiter
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	infra *Infra,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(infra.Metrics.Middleware())
	router.Use(middleware.Brotli())

	// Certificate scans have UUID names and never change.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", handlers.System.Health)
	router.GET("/metrics", gin.WrapH(infra.MetricsHandler))

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/student/login", infra.AuthLimiter.Middleware(), handlers.Auth.StudentLogin)
		auth.POST("/admin/login", infra.AuthLimiter.Middleware(), handlers.Auth.AdminLogin)

		auth.POST("/student/logout",
			middleware.RequireStudentJWT(authService),
			middleware.CheckSingleDeviceSession(authService),
			handlers.Auth.StudentLogout,
		)
		auth.GET("/student/me",
			middleware.RequireStudentJWT(authService),
			middleware.CheckSingleDeviceSession(authService),
			handlers.Auth.GetStudentProfile,
		)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
		middleware.NoStore(),
	)
	{
		studentAPI.GET("/grades", handlers.Grade.GetGrades)
		studentAPI.GET("/grades/statistics", handlers.Grade.GetStatistics)

		studentAPI.GET("/registration", handlers.Registration.GetPlan)
		studentAPI.POST("/registration/:course_id", handlers.Registration.Register)
		studentAPI.DELETE("/registration/:course_id", handlers.Registration.Cancel)

		studentAPI.GET("/certificates", handlers.Certificate.ListCertificates)
		studentAPI.POST("/certificates", handlers.Certificate.CreateCertificate)
		studentAPI.DELETE("/certificates/:id", handlers.Certificate.DeleteCertificate)

		studentAPI.GET("/notifications", handlers.Notification.ListNotifications)
		studentAPI.POST("/notifications/:id/read", handlers.Notification.MarkRead)
	}

	// ─── 3. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireStudentWSAuth(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		ws.GET("/student/notifications", handlers.WS.NotificationStream)
	}

	// ─── 4. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Student management
		adminAPI.GET("/students",
			middleware.RequirePermission(model.PermissionStudentsRead),
			handlers.StudentMgmt.ListStudents,
		)
		adminAPI.POST("/students",
			middleware.RequirePermission(model.PermissionStudentsWrite),
			handlers.StudentMgmt.CreateStudent,
		)
		adminAPI.DELETE("/students/:id",
			middleware.RequirePermission(model.PermissionStudentsWrite),
			handlers.StudentMgmt.DeleteStudent,
		)
		adminAPI.POST("/students/:id/reset-session",
			middleware.RequirePermission(model.PermissionStudentsResetSession),
			handlers.StudentMgmt.ResetStudentSession,
		)

		// Transcript import
		adminAPI.PUT("/students/:id/grades",
			middleware.RequirePermission(model.PermissionGradesWrite),
			handlers.Grade.ImportGrades,
		)

		// Offered courses
		adminAPI.GET("/courses",
			middleware.RequireAnyPermission(model.PermissionCoursesRead, model.PermissionCoursesWrite),
			handlers.Registration.ListCourses,
		)
		adminAPI.POST("/courses",
			middleware.RequirePermission(model.PermissionCoursesWrite),
			handlers.Registration.CreateCourse,
		)
		adminAPI.DELETE("/courses/:id",
			middleware.RequirePermission(model.PermissionCoursesWrite),
			handlers.Registration.DeleteCourse,
		)

		// Dashboard
		adminAPI.GET("/dashboard",
			middleware.RequirePermission(model.PermissionDashboardRead),
			handlers.Dashboard.GetDashboardData,
		)

		// Staff accounts and roles
		staff := adminAPI.Group("")
		staff.Use(middleware.RequirePermission(model.PermissionAdminsManage))
		{
			staff.GET("/admins", handlers.AdminUser.ListAdmins)
			staff.POST("/admins", handlers.AdminUser.CreateAdmin)
			staff.DELETE("/admins/:id", handlers.AdminUser.DeleteAdmin)

			staff.GET("/roles", handlers.AdminRole.ListRoles)
			staff.GET("/roles/:id", handlers.AdminRole.GetRole)
			staff.POST("/roles", handlers.AdminRole.CreateRole)
			staff.PUT("/roles/:id", handlers.AdminRole.UpdateRole)
			staff.DELETE("/roles/:id", handlers.AdminRole.DeleteRole)
			staff.GET("/permissions", handlers.AdminRole.ListPermissions)
		}
	}

	return router
}
