package handler

import (
	"github.com/snuggli/internal/config"
	"github.com/snuggli/internal/logger"
	"github.com/snuggli/internal/metrics"
	"github.com/snuggli/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db              *gorm.DB
	log             *logger.Logger
	users           *service.UserService
	moods           *service.MoodService
	activities      *service.ActivityService
	inputs          *service.ProfessionalInputService
	reports         *service.ReportService
	appointments    *service.AppointmentService
	listener        *service.ListenerService
	stats           *service.StatsService
	system          *service.SystemSettingService
	generator       *service.RecommendationService
	recommendations *service.RecommendationWorkflow
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, aiCfg config.AIConfig, m *metrics.GenerationMetrics, log *logger.Logger) *API {
	users := service.NewUserService(gdb)
	moods := service.NewMoodService(gdb, log)
	activities := service.NewActivityService(gdb, log)
	inputs := service.NewProfessionalInputService(gdb, log)
	reports := service.NewReportService(gdb)
	system := service.NewSystemSettingService(gdb, aiCfg)
	generator := service.NewRecommendationService(system, aiCfg, m, log)

	return &API{
		db:              gdb,
		log:             log,
		users:           users,
		moods:           moods,
		activities:      activities,
		inputs:          inputs,
		reports:         reports,
		appointments:    service.NewAppointmentService(gdb),
		listener:        service.NewListenerService(system, reports, aiCfg, m, log),
		stats:           service.NewStatsService(gdb, activities),
		system:          system,
		generator:       generator,
		recommendations: service.NewRecommendationWorkflow(users, moods, inputs, activities, generator, m, log),
	}
}

// SetAIHTTPClient 替换所有文本生成调用使用的 HTTP 客户端，主要面向测试场景。
func (a *API) SetAIHTTPClient(client service.HTTPDoer) {
	a.generator.SetHTTPClient(client)
	a.listener.SetHTTPClient(client)
	a.system.SetHTTPClient(client)
}

// DB exposes the underlying gorm instance for health checks.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Users exposes account operations for bootstrap tasks.
func (a *API) Users() *service.UserService {
	return a.users
}
