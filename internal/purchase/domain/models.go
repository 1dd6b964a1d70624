package domain

import "time"

// Purchase is a single recorded purchase. UnitPrice is derived from
// TotalPrice/Quantity on write and rounded to cents. Promo fields are
// normalized so they never contradict IsPromo.
type Purchase struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	ProductID        int64     `gorm:"not null;index" json:"product_id"`
	StoreID          *int64    `gorm:"index" json:"store_id,omitempty"`
	PurchaseDate     time.Time `gorm:"not null;index" json:"purchase_date"`
	Quantity         float64   `gorm:"not null" json:"quantity"`
	TotalPrice       float64   `gorm:"not null" json:"total_price"`
	UnitPrice        float64   `gorm:"not null" json:"unit_price"`
	IsPromo          bool      `gorm:"not null;default:false" json:"is_promo"`
	PromoType        *string   `json:"promo_type,omitempty"`
	RegularUnitPrice *float64  `json:"regular_unit_price,omitempty"`
	Comment          *string   `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}

func (Purchase) TableName() string { return "purchases" }

// Filter narrows a purchase fetch. Nil fields are ignored. CategoryID is
// resolved through the product join.
type Filter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	StoreID    *int64
	ProductID  *int64
	ProductIDs []int64
	CategoryID *int64
	IsPromo    *bool
}

// FilteredRow is a purchase joined with its product, category and store
// names. It is the row shape the analytics dataset is prepared from.
type FilteredRow struct {
	ID               int64     `json:"id"`
	PurchaseDate     time.Time `json:"purchase_date"`
	ProductID        int64     `json:"product_id"`
	Product          string    `json:"product"`
	CategoryID       *int64    `json:"category_id,omitempty"`
	Category         *string   `json:"category,omitempty"`
	StoreID          *int64    `json:"store_id,omitempty"`
	Store            *string   `json:"store,omitempty"`
	Quantity         float64   `json:"quantity"`
	TotalPrice       float64   `json:"total_price"`
	UnitPrice        float64   `json:"unit_price"`
	RegularUnitPrice *float64  `json:"regular_unit_price,omitempty"`
	IsPromo          bool      `json:"is_promo"`
}

// UsageCounts carries per-entity purchase counters for UI pickers.
type UsageCounts struct {
	Products   map[int64]int64 `json:"products"`
	Stores     map[int64]int64 `json:"stores"`
	Categories map[int64]int64 `json:"categories"`
}

// DateBounds is the min/max purchase date over the whole table.
type DateBounds struct {
	MinDate *time.Time `json:"min_date"`
	MaxDate *time.Time `json:"max_date"`
}
