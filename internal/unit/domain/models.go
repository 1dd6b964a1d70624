package domain

import "time"

// Unit is a measurement unit a product is sold in (e.g. weight/kg, volume/l).
type Unit struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	MeasureType string    `gorm:"not null;size:25" json:"measure_type"`
	Unit        string    `gorm:"not null;size:25" json:"unit"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Unit) TableName() string { return "units" }
