package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/snuggli/internal/enums"
	"gorm.io/gorm"
)

// User 定义了账号模型，ID 为不透明的 UUID 字符串。
// Role 沿用原有列名 user_type；账号不会被物理删除，停用通过 Status 控制。
type User struct {
	ID           string           `gorm:"type:varchar(36);primaryKey"`
	Email        string           `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string           `gorm:"size:255"`
	Role         enums.UserRole   `gorm:"column:user_type;size:20;not null;default:patient;index"`
	Status       enums.UserStatus `gorm:"size:20;not null;default:active"`
	CreatedAt    time.Time        `gorm:"index"`
	UpdatedAt    time.Time
}

// BeforeCreate 在缺失 ID 时生成 UUID。
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
