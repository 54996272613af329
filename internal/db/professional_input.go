package db

import "time"

// ProfessionalInput 是专业人员针对某位患者的追加式建议，最新一条即“当前”建议。
type ProfessionalInput struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"type:varchar(36);not null;index:idx_input_user_created,priority:1"`
	AuthorID  string    `gorm:"type:varchar(36);index"`
	Input     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index:idx_input_user_created,priority:2"`

	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}
