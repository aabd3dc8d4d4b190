package model

import "time"

// CompressorSession is one run of the compressor. At most one row may be
// active; a partial unique index enforces it.
type CompressorSession struct {
	ID                     int64     `gorm:"primaryKey"`
	Operator               string    `gorm:"size:128;not null"`
	Status                 string    `gorm:"size:16;not null;index"`
	StartedAt              time.Time `gorm:"not null"`
	EndedAt                *time.Time
	ElapsedSeconds         int64  `gorm:"not null;default:0"`
	CloseReason            string `gorm:"type:text"`
	Reset                  bool   `gorm:"not null"`
	PreviousElapsedSeconds int64  `gorm:"not null;default:0"`
	ResetReason            string `gorm:"type:text"`
	ResetAt                *time.Time
	CreatedAt              time.Time `gorm:"not null"`
	UpdatedAt              time.Time `gorm:"not null"`
}
