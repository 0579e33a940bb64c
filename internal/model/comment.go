package model

import "time"

// Comment 志愿者对某个 inmate 的备注
type Comment struct {
	AutoID       uint      `gorm:"primaryKey;column:autoid"`
	InmateAutoID uint      `gorm:"column:inmate_autoid;not null;index"`
	Datetime     time.Time `gorm:"not null"`
	Author       string    `gorm:"not null"`
	Body         string    `gorm:"type:text;not null"`
}

func (Comment) TableName() string { return "comments" }
