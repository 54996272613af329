package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/snuggli/internal/enums"
	"github.com/snuggli/internal/handler"
	"github.com/snuggli/internal/logger"
)

const sessionName = "snuggli_session"

// Options 描述路由层需要的外部依赖。
type Options struct {
	SessionSecret string
	SecureCookie  bool
	Logger        *logger.Logger
	// Gatherer 为空时不暴露 /metrics。
	Gatherer prometheus.Gatherer
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handler.RequestID(opts.Logger))
	r.Use(handler.RequestLogger(opts.Logger))

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		Secure:   opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/healthz", api.HealthCheck)
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	apiGroup := r.Group("/api")

	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/register", api.Register)
		authGroup.POST("/login", api.Login)
		authGroup.POST("/logout", api.Logout)
		authGroup.GET("/me", api.AuthRequired(), api.Me)
	}

	// 需要登录的路由
	auth := apiGroup.Group("")
	auth.Use(api.AuthRequired())
	{
		auth.GET("/recommendations", api.GetRecommendations)

		auth.GET("/activities", api.ListActivities)
		auth.POST("/activities", api.CreateActivity)
		auth.PATCH("/activities/:id/status", api.UpdateActivityStatus)

		auth.GET("/moods", api.ListMoods)
		auth.POST("/moods", api.LogMood)

		auth.POST("/listener/chat", api.ListenerChat)
		auth.POST("/listener/summary", api.ListenerSummary)

		auth.GET("/professionals", api.ListProfessionals)

		auth.GET("/appointments", api.ListAppointments)
		auth.GET("/appointments/upcoming", api.UpcomingAppointments)
		auth.POST("/appointments", api.ScheduleAppointment)
		auth.PATCH("/appointments/:id/status", api.UpdateAppointmentStatus)

		auth.GET("/patients/:id/inputs/latest", api.LatestProfessionalInput)
		auth.GET("/patients/:id/activities", api.ListPatientActivities)
		auth.GET("/patients/:id/recommendations", api.GetPatientRecommendations)
	}

	// 专业人员与管理员
	staff := auth.Group("")
	staff.Use(api.RequireRole(enums.UserRoleProfessional, enums.UserRoleAdmin))
	{
		staff.GET("/patients", api.ListPatients)
		staff.POST("/patients/:id/inputs", api.SubmitProfessionalInput)
		staff.GET("/reports", api.ListReports)
		staff.PATCH("/reports/:id", api.UpdateReport)
	}

	// 管理后台
	admin := auth.Group("/admin")
	admin.Use(api.RequireRole(enums.UserRoleAdmin))
	{
		admin.GET("/users", api.ListUsers)
		admin.PATCH("/users/:id", api.UpdateUser)
		admin.GET("/stats", api.Statistics)
		admin.GET("/activity-log", api.ActivityLog)
		admin.GET("/settings", api.GetSystemSettings)
		admin.PUT("/settings", api.UpdateSystemSettings)
		admin.POST("/settings/test-ai", api.TestAIConnection)
	}

	return r
}
