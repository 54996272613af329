package service

import (
	"context"
	"time"

	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/enums"
	"github.com/snuggli/internal/logger"
	"gorm.io/gorm"
)

// NoProfessionalInput 是用户尚无专业建议时使用的占位文本。
const NoProfessionalInput = "No professional input available."

// ProfessionalInputReader 读取用户当前生效的专业建议。
type ProfessionalInputReader interface {
	Latest(ctx context.Context, userID string) (string, error)
}

// ProfessionalInputService 是按用户追加的专业建议日志，只增不改。
type ProfessionalInputService struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

// NewProfessionalInputService 构造 ProfessionalInputService。
func NewProfessionalInputService(gdb *gorm.DB, log *logger.Logger) *ProfessionalInputService {
	return &ProfessionalInputService{db: gdb, log: log, now: time.Now}
}

// WithClock 替换当前时间来源，主要面向测试场景。
func (s *ProfessionalInputService) WithClock(now func() time.Time) *ProfessionalInputService {
	if now != nil {
		s.now = now
	}
	return s
}

// Submit 追加一条建议；空白内容或目标不是患者时拒绝。
func (s *ProfessionalInputService) Submit(ctx context.Context, userID, authorID, text string) (*db.ProfessionalInput, error) {
	body := sanitizePlainText(text)
	if body == "" {
		return nil, apperr.New(apperr.CodeValidation, "professional input must not be empty")
	}
	if userID == "" {
		return nil, apperr.New(apperr.CodeValidation, "patient id is required")
	}
	if _, err := requireUser(ctx, s.db, userID, enums.UserRolePatient); err != nil {
		return nil, err
	}

	input := db.ProfessionalInput{UserID: userID, AuthorID: authorID, Input: body, CreatedAt: s.now()}
	if err := s.db.WithContext(ctx).Create(&input).Error; err != nil {
		s.log.Error(s.log.WithUserID(ctx, userID), "submit professional input failed", err)
		return nil, persistenceError(err, "submit professional input")
	}
	return &input, nil
}

// Latest 返回最新一条建议；没有记录时返回占位文本而不是错误。
func (s *ProfessionalInputService) Latest(ctx context.Context, userID string) (string, error) {
	var rows []db.ProfessionalInput
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return "", persistenceError(err, "load professional input")
	}
	if len(rows) == 0 {
		return NoProfessionalInput, nil
	}
	return rows[0].Input, nil
}

// List 返回用户的全部建议，最新的在前。
func (s *ProfessionalInputService) List(ctx context.Context, userID string) ([]db.ProfessionalInput, error) {
	inputs := []db.ProfessionalInput{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&inputs).Error
	if err != nil {
		return nil, persistenceError(err, "list professional inputs")
	}
	return inputs, nil
}
