package service

import (
	"context"
	"time"

	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/enums"
	"gorm.io/gorm"
)

const (
	userGrowthDays   = 30
	activityLogLimit = 50
	growthDateLayout = "2006-01-02"
)

// StatsService 为后台汇总全站统计数据。
type StatsService struct {
	db         *gorm.DB
	activities *ActivityService
	now        func() time.Time
}

// Totals 是各类记录的总数。
type Totals struct {
	Users         int64            `json:"users"`
	UsersByRole   map[string]int64 `json:"users_by_role"`
	MoodEntries   int64            `json:"mood_entries"`
	Activities    int64            `json:"activities"`
	Reports       int64            `json:"reports"`
	Appointments  int64            `json:"appointments"`
	PendingReview int64            `json:"pending_review"`
}

// DailyCount 是某一天的新增数量。
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// Statistics 汇总后台首页展示的数据。
type Statistics struct {
	Totals               Totals                `json:"totals"`
	UserGrowth           []DailyCount          `json:"user_growth"`
	ActivityDistribution []ActivityStatusCount `json:"activity_distribution"`
}

// ActivityLogEntry 是附带用户邮箱的活动记录。
type ActivityLogEntry struct {
	db.Activity
	Email string `json:"email"`
}

// NewStatsService 构造 StatsService。
func NewStatsService(gdb *gorm.DB, activities *ActivityService) *StatsService {
	return &StatsService{db: gdb, activities: activities, now: time.Now}
}

// WithClock 替换当前时间来源，主要面向测试场景。
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	if now != nil {
		s.now = now
	}
	return s
}

// Statistics 计算总数、近 30 天注册趋势与活动状态分布。
func (s *StatsService) Statistics(ctx context.Context) (*Statistics, error) {
	totals, err := s.totals(ctx)
	if err != nil {
		return nil, err
	}
	growth, err := s.userGrowth(ctx)
	if err != nil {
		return nil, err
	}
	distribution, err := s.activities.StatusDistribution(ctx)
	if err != nil {
		return nil, err
	}
	return &Statistics{Totals: totals, UserGrowth: growth, ActivityDistribution: distribution}, nil
}

func (s *StatsService) totals(ctx context.Context) (Totals, error) {
	totals := Totals{UsersByRole: map[string]int64{}}
	gdb := s.db.WithContext(ctx)

	counts := []struct {
		model interface{}
		dest  *int64
		name  string
	}{
		{&db.User{}, &totals.Users, "users"},
		{&db.MoodEntry{}, &totals.MoodEntries, "moods"},
		{&db.Activity{}, &totals.Activities, "activities"},
		{&db.Report{}, &totals.Reports, "reports"},
		{&db.Appointment{}, &totals.Appointments, "appointments"},
	}
	for _, c := range counts {
		if err := gdb.Model(c.model).Count(c.dest).Error; err != nil {
			return Totals{}, persistenceError(err, "count "+c.name)
		}
	}

	if err := gdb.Model(&db.Report{}).Where("status = ?", enums.ReportStatusUnreviewed).Count(&totals.PendingReview).Error; err != nil {
		return Totals{}, persistenceError(err, "count unreviewed reports")
	}

	var roles []struct {
		Role  string
		Count int64
	}
	if err := gdb.Model(&db.User{}).Select("user_type AS role, COUNT(*) AS count").Group("user_type").Scan(&roles).Error; err != nil {
		return Totals{}, persistenceError(err, "count users by role")
	}
	for _, role := range enums.UserRoles() {
		totals.UsersByRole[role.String()] = 0
	}
	for _, row := range roles {
		totals.UsersByRole[row.Role] = row.Count
	}
	return totals, nil
}

// userGrowth 在 Go 中按 UTC 日期分组，避免依赖各数据库的日期函数。
func (s *StatsService) userGrowth(ctx context.Context) ([]DailyCount, error) {
	end := s.now().UTC()
	start := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(userGrowthDays - 1))

	var stamps []time.Time
	if err := s.db.WithContext(ctx).Model(&db.User{}).Where("created_at >= ?", start).Pluck("created_at", &stamps).Error; err != nil {
		return nil, persistenceError(err, "load user growth")
	}

	byDay := make(map[string]int64, userGrowthDays)
	for _, stamp := range stamps {
		byDay[stamp.UTC().Format(growthDateLayout)]++
	}

	out := make([]DailyCount, 0, userGrowthDays)
	for i := 0; i < userGrowthDays; i++ {
		day := start.AddDate(0, 0, i).Format(growthDateLayout)
		out = append(out, DailyCount{Date: day, Count: byDay[day]})
	}
	return out, nil
}

// ActivityLog 返回全站最近的活动记录，limit 非正时取 50。
func (s *StatsService) ActivityLog(ctx context.Context, limit int) ([]ActivityLogEntry, error) {
	if limit <= 0 {
		limit = activityLogLimit
	}
	entries := []ActivityLogEntry{}
	err := s.db.WithContext(ctx).
		Table("activities").
		Select("activities.*, users.email AS email").
		Joins("LEFT JOIN users ON users.id = activities.user_id").
		Order("activities.created_at DESC").
		Order("activities.id DESC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, persistenceError(err, "load activity log")
	}
	return entries, nil
}
