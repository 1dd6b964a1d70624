package domain

import (
	"context"
	"strconv"
	"time"
)

const periodLayout = "2006-01-02"

// Period is a bucket-start date. It renders as YYYY-MM-DD regardless of
// the bucket width.
type Period struct {
	time.Time
}

func NewPeriod(t time.Time) Period {
	return Period{t.UTC()}
}

func (p Period) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.Format(periodLayout))), nil
}

func (p *Period) UnmarshalJSON(data []byte) error {
	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	t, err := time.ParseInLocation(periodLayout, raw, time.UTC)
	if err != nil {
		return err
	}
	p.Time = t
	return nil
}

func (p Period) String() string {
	return p.Format(periodLayout)
}

// Query is the shared filter every analysis starts from.
type Query struct {
	FromDate   *time.Time
	ToDate     *time.Time
	StoreID    *int64
	ProductID  *int64
	ProductIDs []int64
	CategoryID *int64
	GroupBy    GroupBy
	PriceMode  PriceMode
	PromoMode  PromoMode
}

func (q Query) validateModes() error {
	if !q.GroupBy.Valid() {
		return ErrInvalidGroupBy
	}
	if !q.PriceMode.Valid() {
		return ErrInvalidPriceMode
	}
	if !q.PromoMode.Valid() {
		return ErrInvalidPromoMode
	}
	return nil
}

type BasketIndexRequest struct {
	Query

	// BasePeriod pins the index base; the earliest observed period is
	// used when unset.
	BasePeriod *time.Time
}

func (r BasketIndexRequest) Validate() error {
	return r.validateModes()
}

type BasketIndexPoint struct {
	Period   Period  `json:"period"`
	Index    float64 `json:"index"`
	Coverage float64 `json:"coverage"`
	Items    int     `json:"items"`
}

type BasketIndexKPI struct {
	BasePeriod      *Period `json:"base_period"`
	LastPeriod      *Period `json:"last_period"`
	Periods         int     `json:"periods"`
	ItemsInBase     int     `json:"items_in_base"`
	TotalBaseWeight float64 `json:"items_total_base_weight"`
	CoverageLast    float64 `json:"coverage_last"`
	IndexLast       float64 `json:"index_last"`
	InflationTotal  float64 `json:"inflation_total"`
}

type BasketIndexResult struct {
	Points []BasketIndexPoint `json:"points"`
	KPI    BasketIndexKPI     `json:"kpi"`
}

type ProductIndexRequest struct {
	ProductID int64
	FromDate  *time.Time
	ToDate    *time.Time
	GroupBy   GroupBy
	PriceMode PriceMode
	PromoMode PromoMode
}

func (r ProductIndexRequest) Validate() error {
	if r.ProductID <= 0 {
		return ErrInvalidProduct
	}
	if !r.GroupBy.Valid() {
		return ErrInvalidGroupBy
	}
	if !r.PriceMode.Valid() {
		return ErrInvalidPriceMode
	}
	if !r.PromoMode.Valid() {
		return ErrInvalidPromoMode
	}
	return nil
}

type ProductIndexPoint struct {
	Period               Period  `json:"period"`
	AvgUnitPrice         float64 `json:"avg_unit_price"`
	Index100             float64 `json:"index_100"`
	InflationPctFromBase float64 `json:"inflation_pct_from_base"`
	N                    int     `json:"n"`
}

type ProductIndexKPI struct {
	BasePeriod            Period   `json:"base_period"`
	LastPeriod            Period   `json:"last_period"`
	BasePrice             float64  `json:"base_price"`
	LastPrice             float64  `json:"last_price"`
	IndexLast             float64  `json:"index_last"`
	InflationTotal        float64  `json:"inflation_total"`
	ChangeVsPrevPeriodPct *float64 `json:"change_vs_prev_period_pct"`
}

type ProductIndexResult struct {
	Points []ProductIndexPoint `json:"points"`
	KPI    *ProductIndexKPI    `json:"kpi"`
}

type ContributionsRequest struct {
	Query

	By  ContributionBy
	Top int
}

func (r ContributionsRequest) Validate() error {
	if !r.By.Valid() {
		return ErrInvalidContributionBy
	}
	return r.validateModes()
}

type ContributionPoint struct {
	ProductID    *int64   `json:"product_id,omitempty"`
	Product      *string  `json:"product,omitempty"`
	Category     *string  `json:"category,omitempty"`
	Ratio        *float64 `json:"ratio,omitempty"`
	ShareW       float64  `json:"share_w"`
	Contribution float64  `json:"contribution"`
	Items        int      `json:"items,omitempty"`
}

type ContributionsKPI struct {
	By            ContributionBy `json:"by"`
	BasePeriod    *Period        `json:"base_period"`
	TargetPeriod  *Period        `json:"target_period"`
	CoveredWeight float64        `json:"covered_weight"`
}

type ContributionsResult struct {
	Points []ContributionPoint `json:"points"`
	KPI    ContributionsKPI    `json:"kpi"`
}

type StoreComparisonRequest struct {
	ProductID int64
	FromDate  *time.Time
	ToDate    *time.Time
	PriceMode PriceMode
	PromoMode PromoMode
}

func (r StoreComparisonRequest) Validate() error {
	if r.ProductID <= 0 {
		return ErrInvalidProduct
	}
	if !r.PriceMode.Valid() {
		return ErrInvalidPriceMode
	}
	if !r.PromoMode.Valid() {
		return ErrInvalidPromoMode
	}
	return nil
}

type StoreComparisonPoint struct {
	StoreID      *int64  `json:"store_id"`
	Store        *string `json:"store"`
	AvgUnitPrice float64 `json:"avg_unit_price"`
	MinUnitPrice float64 `json:"min_unit_price"`
	MaxUnitPrice float64 `json:"max_unit_price"`
	Qty          float64 `json:"qty"`
	Purchases    int     `json:"purchases"`
	LastDate     Period  `json:"last_date"`
}

type StoreComparisonKPI struct {
	Stores           int      `json:"stores"`
	BestStoreID      *int64   `json:"best_store_id"`
	BestAvgUnitPrice *float64 `json:"best_avg_unit_price"`
}

type StoreComparisonResult struct {
	Points []StoreComparisonPoint `json:"points"`
	KPI    StoreComparisonKPI     `json:"kpi"`
}

// Service computes price-index analyses over purchase history. Every
// call fetches one snapshot of matching rows and derives its result in
// a single pass; nothing is cached between calls.
type Service interface {
	BasketIndex(ctx context.Context, req BasketIndexRequest) (*BasketIndexResult, error)
	ProductIndex(ctx context.Context, req ProductIndexRequest) (*ProductIndexResult, error)
	Contributions(ctx context.Context, req ContributionsRequest) (*ContributionsResult, error)
	StoreComparison(ctx context.Context, req StoreComparisonRequest) (*StoreComparisonResult, error)
}
