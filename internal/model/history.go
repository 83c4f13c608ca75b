package model

import (
	"time"

	"gorm.io/gorm"
)

type SyncStatus string

const (
	StatusSuccess  SyncStatus = "SUCCESS"
	StatusFailed   SyncStatus = "FAILED"
	StatusConflict SyncStatus = "CONFLICT"
)

type History struct {
	gorm.Model
	TaskID      string     `gorm:"index;not null"`
	Kind        string     `gorm:"not null"`
	Description string     `gorm:"not null"`
	Status      SyncStatus `gorm:"not null"`
	ErrMsg      string
	Duration    time.Duration
	SyncedAt    time.Time `gorm:"not null"`
}
