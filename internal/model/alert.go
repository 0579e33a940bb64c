package model

import "time"

// Alert a requester asking to be told when mail from an inmate arrives.
type Alert struct {
	AutoID       uint   `gorm:"primaryKey;column:autoid"`
	InmateAutoID uint   `gorm:"column:inmate_autoid;not null;index"`
	Requester    string `gorm:"not null"`
	Email        string
	CreatedAt    time.Time
	NotifiedAt   *time.Time
}

func (Alert) TableName() string { return "alerts" }
