package model

import "time"

// WaitlistEntry is one bottle on the filling waiting list. At most one entry
// per bottle may be waiting or filling; a partial unique index enforces it.
type WaitlistEntry struct {
	ID                  int64     `gorm:"primaryKey"`
	BottleID            int64     `gorm:"not null;index"`
	IntakeDate          time.Time `gorm:"not null;index"`
	RequestedPressure   int       `gorm:"not null"`
	Priority            string    `gorm:"size:16;not null;default:normal"`
	Notes               string    `gorm:"type:text"`
	Status              string    `gorm:"size:16;not null;index"`
	Operator            string    `gorm:"size:128"`
	GasMixture          string    `gorm:"size:64"`
	FillStart           *time.Time
	FillEnd             *time.Time
	AchievedPressure    *int
	CompressorSessionID *int64 `gorm:"index"`
	CancelReason        string `gorm:"type:text"`
	CancelledAt         *time.Time
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`

	// Associations
	Bottle Bottle `gorm:"constraint:OnDelete:RESTRICT"`
}
