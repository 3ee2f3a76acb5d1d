package model

import "time"

// User stores Telegram user metadata. ID is the Telegram user id.
type User struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"`
	Name      string
	Active    bool `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
