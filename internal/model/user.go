package model

import "time"

// User 通过 Google 登录的志愿者
type User struct {
	Email      string `gorm:"primaryKey;type:varchar(255)"`
	Name       string
	Authorized bool `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (User) TableName() string { return "users" }
