package model

import "time"

// Lookup 志愿者查看记录（仅追加，保留最近几条）
type Lookup struct {
	AutoID       uint      `gorm:"primaryKey;column:autoid"`
	InmateAutoID uint      `gorm:"column:inmate_autoid;not null;index"`
	Datetime     time.Time `gorm:"not null;index"`
}

func (Lookup) TableName() string { return "lookups" }
