package db

import (
	"time"

	"github.com/snuggli/internal/enums"
)

// Activity 是用户活动台账中的一行；创建后仅 Status 可变，UserID 必须指向已有账号。
type Activity struct {
	ID           uint                 `gorm:"primaryKey"`
	UserID       string               `gorm:"type:varchar(36);not null;index:idx_activity_user_created,priority:1"`
	ActivityName string               `gorm:"column:activity_name;size:255;not null"`
	Description  string               `gorm:"type:text"`
	Benefit      string               `gorm:"type:text"`
	Status       enums.ActivityStatus `gorm:"size:20;not null;default:pending;index"`
	CreatedAt    time.Time            `gorm:"index:idx_activity_user_created,priority:2"`
	UpdatedAt    time.Time

	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}
