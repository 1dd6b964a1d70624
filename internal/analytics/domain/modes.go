package domain

import "errors"

var (
	ErrInvalidGroupBy        = errors.New("invalid_group_by")
	ErrInvalidPriceMode      = errors.New("invalid_price_mode")
	ErrInvalidPromoMode      = errors.New("invalid_promo_mode")
	ErrInvalidContributionBy = errors.New("invalid_contribution_by")
	ErrInvalidProduct        = errors.New("invalid_product")
)

// GroupBy selects the aggregation bucket for every computed time series.
type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
	GroupByYear  GroupBy = "year"
)

func ParseGroupBy(value string) (GroupBy, error) {
	switch GroupBy(value) {
	case GroupByDay, GroupByWeek, GroupByMonth, GroupByYear:
		return GroupBy(value), nil
	}
	return "", ErrInvalidGroupBy
}

func (g GroupBy) Valid() bool {
	switch g {
	case GroupByDay, GroupByWeek, GroupByMonth, GroupByYear:
		return true
	}
	return false
}

// PriceMode selects which unit price a row contributes. Regular falls
// back to the paid price per row when no regular price was recorded.
type PriceMode string

const (
	PriceModePaid    PriceMode = "paid"
	PriceModeRegular PriceMode = "regular"
)

func ParsePriceMode(value string) (PriceMode, error) {
	switch PriceMode(value) {
	case PriceModePaid, PriceModeRegular:
		return PriceMode(value), nil
	}
	return "", ErrInvalidPriceMode
}

func (p PriceMode) Valid() bool {
	return p == PriceModePaid || p == PriceModeRegular
}

// PromoMode filters promotional purchases in or out of the dataset.
type PromoMode string

const (
	PromoModeInclude PromoMode = "include"
	PromoModeExclude PromoMode = "exclude"
	PromoModeOnly    PromoMode = "only"
)

func ParsePromoMode(value string) (PromoMode, error) {
	switch PromoMode(value) {
	case PromoModeInclude, PromoModeExclude, PromoModeOnly:
		return PromoMode(value), nil
	}
	return "", ErrInvalidPromoMode
}

func (p PromoMode) Valid() bool {
	switch p {
	case PromoModeInclude, PromoModeExclude, PromoModeOnly:
		return true
	}
	return false
}

// ContributionBy selects the grouping axis of a contribution decomposition.
type ContributionBy string

const (
	ContributionByProduct  ContributionBy = "product"
	ContributionByCategory ContributionBy = "category"
)

func ParseContributionBy(value string) (ContributionBy, error) {
	switch ContributionBy(value) {
	case ContributionByProduct, ContributionByCategory:
		return ContributionBy(value), nil
	}
	return "", ErrInvalidContributionBy
}

func (c ContributionBy) Valid() bool {
	return c == ContributionByProduct || c == ContributionByCategory
}
