package service

import (
	"context"
	"errors"
	"time"

	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/enums"
	"github.com/snuggli/internal/logger"
	"gorm.io/gorm"
)

// ActivityLister 读取某个用户的活动台账。
type ActivityLister interface {
	List(ctx context.Context, userID string) ([]db.Activity, error)
}

// ActivityService 是活动台账：按用户新建、列出活动并更新状态。
// 状态更新没有乐观锁，同一活动的并发更新以最后一次写入为准。
type ActivityService struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

// ActivityInput 描述新建活动所需字段，Status 为空时默认 pending。
type ActivityInput struct {
	UserID      string `validate:"required"`
	Name        string `validate:"required,max=255"`
	Description string
	Benefit     string
	Status      string
}

// ActivityStatusCount 是按状态聚合的活动数量。
type ActivityStatusCount struct {
	Status enums.ActivityStatus `json:"status"`
	Count  int64                `json:"count"`
}

// NewActivityService 构造 ActivityService。
func NewActivityService(gdb *gorm.DB, log *logger.Logger) *ActivityService {
	return &ActivityService{db: gdb, log: log, now: time.Now}
}

// WithClock 替换当前时间来源，主要面向测试场景。
func (s *ActivityService) WithClock(now func() time.Time) *ActivityService {
	if now != nil {
		s.now = now
	}
	return s
}

// Create 写入一行活动，时间戳取当前时间。
func (s *ActivityService) Create(ctx context.Context, input ActivityInput) (*db.Activity, error) {
	input.Name = sanitizePlainText(input.Name)
	input.Description = sanitizePlainText(input.Description)
	input.Benefit = sanitizePlainText(input.Benefit)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	status := enums.ActivityStatusPending
	if input.Status != "" {
		parsed, err := enums.ParseActivityStatus(input.Status)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeValidation, err, "invalid activity status")
		}
		status = parsed
	}
	if _, err := requireUser(ctx, s.db, input.UserID); err != nil {
		return nil, err
	}

	activity := db.Activity{
		UserID:       input.UserID,
		ActivityName: input.Name,
		Description:  input.Description,
		Benefit:      input.Benefit,
		Status:       status,
		CreatedAt:    s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&activity).Error; err != nil {
		s.log.Error(s.log.WithUserID(ctx, input.UserID), "create activity failed", err)
		return nil, persistenceError(err, "create activity")
	}
	return &activity, nil
}

// List 返回用户的全部活动，最新创建的在前；没有活动时返回空切片。
func (s *ActivityService) List(ctx context.Context, userID string) ([]db.Activity, error) {
	activities := []db.Activity{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&activities).Error
	if err != nil {
		s.log.Error(s.log.WithUserID(ctx, userID), "list activities failed", err)
		return nil, persistenceError(err, "list activities")
	}
	return activities, nil
}

// Get 按 ID 读取活动。
func (s *ActivityService) Get(ctx context.Context, id uint) (*db.Activity, error) {
	var activity db.Activity
	err := s.db.WithContext(ctx).First(&activity, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.CodeNotFound, "activity not found")
	}
	if err != nil {
		return nil, persistenceError(err, "load activity")
	}
	return &activity, nil
}

// UpdateStatus 修改活动状态；取值必须属于 pending/in_progress/completed。
func (s *ActivityService) UpdateStatus(ctx context.Context, id uint, status string) (*db.Activity, error) {
	parsed, err := enums.ParseActivityStatus(status)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeValidation, err, "invalid activity status").
			WithDetails(map[string]any{"allowed": enums.ActivityStatuses()})
	}

	result := s.db.WithContext(ctx).Model(&db.Activity{}).Where("id = ?", id).Update("status", parsed)
	if result.Error != nil {
		s.log.Error(s.log.WithField(ctx, "activity_id", id), "update activity status failed", result.Error)
		return nil, persistenceError(result.Error, "update activity status")
	}
	if result.RowsAffected == 0 {
		return nil, apperr.New(apperr.CodeNotFound, "activity not found")
	}
	return s.Get(ctx, id)
}

// StatusDistribution 按状态统计活动数量，返回顺序与状态枚举一致。
func (s *ActivityService) StatusDistribution(ctx context.Context) ([]ActivityStatusCount, error) {
	var rows []ActivityStatusCount
	err := s.db.WithContext(ctx).Model(&db.Activity{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, persistenceError(err, "count activities by status")
	}

	counts := make(map[enums.ActivityStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	out := make([]ActivityStatusCount, 0, len(rows))
	for _, status := range enums.ActivityStatuses() {
		out = append(out, ActivityStatusCount{Status: status, Count: counts[status]})
	}
	return out, nil
}
