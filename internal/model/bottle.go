package model

import "time"

// Bottle is a registered gas bottle. Bottles are never deleted, only
// deactivated.
type Bottle struct {
	ID                 int64      `gorm:"primaryKey" json:"id"`
	InternalNumber     string     `gorm:"uniqueIndex;size:32;not null" json:"internalNumber"`
	ExternalNumber     string     `gorm:"size:64" json:"externalNumber,omitempty"`
	Barcode            string     `gorm:"index;size:128" json:"barcode,omitempty"`
	BarcodeType        string     `gorm:"size:16" json:"barcodeType,omitempty"`
	SizeLiters         float64    `json:"sizeLiters,omitempty"`
	MaxPressure        int        `json:"maxPressure,omitempty"`
	WeightKg           float64    `json:"weightKg,omitempty"`
	ValveType          string     `gorm:"size:64" json:"valveType,omitempty"`
	Manufacturer       string     `gorm:"size:128" json:"manufacturer,omitempty"`
	ManufacturedAt     *time.Time `json:"manufacturedAt,omitempty"`
	InspectionDate     *time.Time `json:"inspectionDate,omitempty"`
	NextInspectionDue  *time.Time `gorm:"index" json:"nextInspectionDue,omitempty"`
	InspectionProtocol string     `gorm:"type:text" json:"inspectionProtocol,omitempty"`
	InspectionNotified bool       `gorm:"not null" json:"inspectionNotified"`
	Active             bool       `gorm:"not null;index" json:"active"`
	CustomerID         *int64     `gorm:"index" json:"customerId,omitempty"`
	CreatedAt          time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updatedAt"`

	// Associations
	Customer *Customer `gorm:"constraint:OnDelete:SET NULL" json:"customer,omitempty"`
}
