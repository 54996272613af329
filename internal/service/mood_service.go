package service

import (
	"context"
	"time"

	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/logger"
	"gorm.io/gorm"
)

const (
	// MinMood 与 MaxMood 限定心情打分范围。
	MinMood = 1
	MaxMood = 10

	recentMoodLimit  = 5
	moodHistoryLimit = 10
)

// MoodReader 读取用户最近的心情记录。
type MoodReader interface {
	Recent(ctx context.Context, userID string) ([]db.MoodEntry, error)
}

// MoodService 管理心情日记，记录写入后不可修改。
type MoodService struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

// NewMoodService 构造 MoodService。
func NewMoodService(gdb *gorm.DB, log *logger.Logger) *MoodService {
	return &MoodService{db: gdb, log: log, now: time.Now}
}

// WithClock 替换当前时间来源，主要面向测试场景。
func (s *MoodService) WithClock(now func() time.Time) *MoodService {
	if now != nil {
		s.now = now
	}
	return s
}

// Log 写入一条心情记录。
func (s *MoodService) Log(ctx context.Context, userID string, mood int, journal string) (*db.MoodEntry, error) {
	if userID == "" {
		return nil, apperr.New(apperr.CodeValidation, "user id is required")
	}
	if mood < MinMood || mood > MaxMood {
		return nil, apperr.Newf(apperr.CodeValidation, "mood must be between %d and %d", MinMood, MaxMood)
	}
	if _, err := requireUser(ctx, s.db, userID); err != nil {
		return nil, err
	}

	entry := db.MoodEntry{UserID: userID, Mood: mood, JournalEntry: sanitizePlainText(journal), CreatedAt: s.now()}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.log.Error(s.log.WithUserID(ctx, userID), "log mood failed", err)
		return nil, persistenceError(err, "log mood")
	}
	return &entry, nil
}

// Recent 返回最近 5 条记录，按时间倒序。
func (s *MoodService) Recent(ctx context.Context, userID string) ([]db.MoodEntry, error) {
	return s.latest(ctx, userID, recentMoodLimit)
}

// History 返回最近 limit 条记录，limit 非正时取 10。
func (s *MoodService) History(ctx context.Context, userID string, limit int) ([]db.MoodEntry, error) {
	if limit <= 0 {
		limit = moodHistoryLimit
	}
	return s.latest(ctx, userID, limit)
}

func (s *MoodService) latest(ctx context.Context, userID string, limit int) ([]db.MoodEntry, error) {
	entries := []db.MoodEntry{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, persistenceError(err, "load moods")
	}
	return entries, nil
}
