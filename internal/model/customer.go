package model

import "time"

// Customer owns bottles brought to the workshop.
type Customer struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200;not null;index" json:"name"`
	Phone     string    `gorm:"size:64" json:"phone,omitempty"`
	Email     string    `gorm:"size:200" json:"email,omitempty"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`

	// Associations
	Bottles []Bottle `gorm:"foreignKey:CustomerID" json:"-"`
}
