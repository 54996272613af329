package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/enums"
	"gorm.io/gorm"
)

// ReportService 管理倾听对话摘要报告。
type ReportService struct {
	db *gorm.DB
}

// ReportWithUser 是附带患者邮箱的报告视图。
type ReportWithUser struct {
	db.Report
	Email string `json:"email"`
}

// ReportFilter 描述报告列表的过滤条件。
type ReportFilter struct {
	Status string
	UserID string
}

// ReportUpdateInput 为专业人员审阅报告，空字段表示不修改。
type ReportUpdateInput struct {
	Status            string
	Urgency           string
	ProfessionalNotes *string
}

// NewReportService 构造 ReportService。
func NewReportService(gdb *gorm.DB) *ReportService {
	return &ReportService{db: gdb}
}

// Create 以 unreviewed/low 初始状态保存一份摘要。
func (s *ReportService) Create(ctx context.Context, userID, summary string) (*db.Report, error) {
	report := db.Report{
		UserID:  userID,
		Summary: summary,
		Status:  enums.ReportStatusUnreviewed,
		Urgency: enums.ReportUrgencyLow,
	}
	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, persistenceError(err, "create report")
	}
	return &report, nil
}

// List 返回报告及患者邮箱，最新的在前。
func (s *ReportService) List(ctx context.Context, filter ReportFilter) ([]ReportWithUser, error) {
	query := s.db.WithContext(ctx).
		Table("reports").
		Select("reports.*, users.email AS email").
		Joins("LEFT JOIN users ON users.id = reports.user_id")

	if status := strings.TrimSpace(filter.Status); status != "" {
		parsed, err := enums.ParseReportStatus(status)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeValidation, err, "invalid report status")
		}
		query = query.Where("reports.status = ?", parsed)
	}
	if filter.UserID != "" {
		query = query.Where("reports.user_id = ?", filter.UserID)
	}

	reports := []ReportWithUser{}
	if err := query.Order("reports.created_at DESC").Order("reports.id DESC").Scan(&reports).Error; err != nil {
		return nil, persistenceError(err, "list reports")
	}
	return reports, nil
}

// Get 按 ID 读取报告。
func (s *ReportService) Get(ctx context.Context, id uint) (*db.Report, error) {
	var report db.Report
	err := s.db.WithContext(ctx).First(&report, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.CodeNotFound, "report not found")
	}
	if err != nil {
		return nil, persistenceError(err, "load report")
	}
	return &report, nil
}

// Update 修改审阅状态、紧急程度与备注，并记录更新时间。
func (s *ReportService) Update(ctx context.Context, id uint, input ReportUpdateInput) (*db.Report, error) {
	updates := map[string]interface{}{}
	if value := strings.TrimSpace(input.Status); value != "" {
		status, err := enums.ParseReportStatus(value)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeValidation, err, "invalid report status")
		}
		updates["status"] = status
	}
	if value := strings.TrimSpace(input.Urgency); value != "" {
		urgency, err := enums.ParseReportUrgency(value)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeValidation, err, "invalid report urgency")
		}
		updates["urgency"] = urgency
	}
	if input.ProfessionalNotes != nil {
		updates["professional_notes"] = sanitizePlainText(*input.ProfessionalNotes)
	}
	if len(updates) == 0 {
		return nil, apperr.New(apperr.CodeValidation, "nothing to update")
	}
	updates["updated_at"] = time.Now()

	result := s.db.WithContext(ctx).Model(&db.Report{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, persistenceError(result.Error, "update report")
	}
	if result.RowsAffected == 0 {
		return nil, apperr.New(apperr.CodeNotFound, "report not found")
	}
	return s.Get(ctx, id)
}

// Count 返回报告总数。
func (s *ReportService) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&db.Report{}).Count(&total).Error; err != nil {
		return 0, persistenceError(err, "count reports")
	}
	return total, nil
}
