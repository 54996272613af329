package db

import "time"

// MoodEntry 记录一次心情打分（1-10）及日记正文，写入后不再修改。
type MoodEntry struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       string    `gorm:"type:varchar(36);not null;index:idx_mood_user_created,priority:1"`
	Mood         int       `gorm:"not null"`
	JournalEntry string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"index:idx_mood_user_created,priority:2"`

	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// TableName 保持与原有表名一致。
func (MoodEntry) TableName() string {
	return "mood_journal"
}
