package db

import (
	"time"

	"github.com/snuggli/internal/enums"
)

// Report 保存 AI 倾听对话的摘要，供专业人员审阅。
// UpdatedAt 仅在审阅更新时写入，新建报告保持为空。
type Report struct {
	ID                uint                `gorm:"primaryKey"`
	UserID            string              `gorm:"type:varchar(36);not null;index"`
	Summary           string              `gorm:"type:text"`
	Status            enums.ReportStatus  `gorm:"size:30;not null;default:unreviewed;index"`
	Urgency           enums.ReportUrgency `gorm:"size:20;not null;default:low"`
	ProfessionalNotes string              `gorm:"type:text"`
	CreatedAt         time.Time           `gorm:"index"`
	UpdatedAt         *time.Time          `gorm:"autoUpdateTime:false"`
}
