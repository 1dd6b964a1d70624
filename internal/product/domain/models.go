package domain

import "time"

// Product is a purchasable item. Category is optional, the measurement unit
// is required.
type Product struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"not null;size:500" json:"name"`
	CategoryID *int64    `gorm:"index" json:"category_id,omitempty"`
	UnitID     int64     `gorm:"not null;index" json:"unit_id"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// Response is a product enriched with its category and unit names.
type Response struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	CategoryID  *int64  `json:"category_id,omitempty"`
	Category    *string `json:"category,omitempty"`
	UnitID      int64   `json:"unit_id"`
	Unit        string  `json:"unit"`
	MeasureType string  `json:"measure_type"`
}
