package db

import (
	"time"

	"gorm.io/datatypes"
)

type Game struct {
	ID        uint           `gorm:"primaryKey"`
	Code      string         `gorm:"size:8;uniqueIndex;not null"`
	Stage     string         `gorm:"size:16"`
	Active    bool           `gorm:"not null;default:false"`
	Winner    string         `gorm:"size:16"`
	Version   int64          `gorm:"not null;default:0"`
	State     datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
	Events    []Event
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	GameID    uint           `gorm:"index;not null"`
	PlayerID  string         `gorm:"size:64;index"`
	Type      string         `gorm:"size:32;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
