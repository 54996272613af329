package db

import (
	"time"

	"github.com/snuggli/internal/enums"
)

// Appointment 描述患者与专业人员之间的预约。
// 日期与时间按 ISO 字符串存储（2006-01-02 / 15:04），字典序即时间序。
type Appointment struct {
	ID              uint                    `gorm:"primaryKey"`
	PatientID       string                  `gorm:"type:varchar(36);not null;index"`
	ProfessionalID  string                  `gorm:"type:varchar(36);not null;index"`
	AppointmentDate string                  `gorm:"size:10;not null;index"`
	AppointmentTime string                  `gorm:"size:8;not null"`
	Status          enums.AppointmentStatus `gorm:"size:20;not null;default:scheduled"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
