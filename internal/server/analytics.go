package server

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/spendindex/spendindex/internal/analytics/domain"
)

const (
	analysisBasketIndex     = "basket_index"
	analysisProductIndex    = "product_index"
	analysisContributions   = "contributions"
	analysisStoreComparison = "store_comparison"
)

type analyticsQuery struct {
	From       string `form:"from"`
	To         string `form:"to"`
	StoreID    string `form:"store_id"`
	ProductID  string `form:"product_id"`
	ProductIDs string `form:"product_ids"`
	CategoryID string `form:"category_id"`
	GroupBy    string `form:"group_by"`
	PriceMode  string `form:"price_mode"`
	PromoMode  string `form:"promo_mode"`
}

func (s *Server) parseAnalyticsQuery(c *gin.Context, query analyticsQuery) (analyticsdomain.Query, error) {
	defaults := s.analyticsCfg.Current()

	groupBy, err := analyticsdomain.ParseGroupBy(orDefault(query.GroupBy, defaults.DefaultGroupBy))
	if err != nil {
		return analyticsdomain.Query{}, err
	}
	priceMode, err := analyticsdomain.ParsePriceMode(orDefault(query.PriceMode, defaults.DefaultPriceMode))
	if err != nil {
		return analyticsdomain.Query{}, err
	}
	promoMode, err := analyticsdomain.ParsePromoMode(orDefault(query.PromoMode, defaults.DefaultPromoMode))
	if err != nil {
		return analyticsdomain.Query{}, err
	}

	from, err := parseOptionalTime(query.From, false)
	if err != nil {
		return analyticsdomain.Query{}, newValidationError("from", "invalid_from", "invalid from date")
	}
	to, err := parseOptionalTime(query.To, true)
	if err != nil {
		return analyticsdomain.Query{}, newValidationError("to", "invalid_to", "invalid to date")
	}
	storeID, err := parseOptionalInt64(query.StoreID)
	if err != nil {
		return analyticsdomain.Query{}, newValidationError("store_id", "invalid_store_id", "invalid store id")
	}
	productID, err := parseOptionalInt64(query.ProductID)
	if err != nil {
		return analyticsdomain.Query{}, newValidationError("product_id", "invalid_product_id", "invalid product id")
	}
	productIDs, err := parseInt64List(query.ProductIDs)
	if err != nil {
		return analyticsdomain.Query{}, newValidationError("product_ids", "invalid_product_ids", "invalid product ids")
	}
	categoryID, err := parseOptionalInt64(query.CategoryID)
	if err != nil {
		return analyticsdomain.Query{}, newValidationError("category_id", "invalid_category_id", "invalid category id")
	}

	return analyticsdomain.Query{
		FromDate:   from,
		ToDate:     to,
		StoreID:    storeID,
		ProductID:  productID,
		ProductIDs: productIDs,
		CategoryID: categoryID,
		GroupBy:    groupBy,
		PriceMode:  priceMode,
		PromoMode:  promoMode,
	}, nil
}

func (s *Server) BasketIndex(c *gin.Context) {
	var query struct {
		analyticsQuery
		BasePeriod string `form:"base_period"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	parsed, err := s.parseAnalyticsQuery(c, query.analyticsQuery)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	basePeriod, err := parseOptionalTime(query.BasePeriod, false)
	if err != nil {
		AbortWithError(c, newValidationError("base_period", "invalid_base_period", "invalid base period"))
		return
	}

	resp, err := s.analyticsSvc.BasketIndex(c.Request.Context(), analyticsdomain.BasketIndexRequest{
		Query:      parsed,
		BasePeriod: basePeriod,
	})
	if err != nil {
		s.metrics.RecordAnalysis(analysisBasketIndex, "error")
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordAnalysis(analysisBasketIndex, outcomeForPoints(len(resp.Points)))
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ProductIndex(c *gin.Context) {
	var query struct {
		ProductID string `form:"product_id"`
		From      string `form:"from"`
		To        string `form:"to"`
		GroupBy   string `form:"group_by"`
		PriceMode string `form:"price_mode"`
		PromoMode string `form:"promo_mode"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	productID, err := parseRequiredInt64(query.ProductID)
	if err != nil {
		AbortWithError(c, newValidationError("product_id", "invalid_product_id", "invalid product id"))
		return
	}
	parsed, err := s.parseAnalyticsQuery(c, analyticsQuery{
		From:      query.From,
		To:        query.To,
		GroupBy:   query.GroupBy,
		PriceMode: query.PriceMode,
		PromoMode: query.PromoMode,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.analyticsSvc.ProductIndex(c.Request.Context(), analyticsdomain.ProductIndexRequest{
		ProductID: productID,
		FromDate:  parsed.FromDate,
		ToDate:    parsed.ToDate,
		GroupBy:   parsed.GroupBy,
		PriceMode: parsed.PriceMode,
		PromoMode: parsed.PromoMode,
	})
	if err != nil {
		s.metrics.RecordAnalysis(analysisProductIndex, "error")
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordAnalysis(analysisProductIndex, outcomeForPoints(len(resp.Points)))
	c.JSON(http.StatusOK, resp)
}

func (s *Server) Contributions(c *gin.Context) {
	var query struct {
		analyticsQuery
		By  string `form:"by"`
		Top string `form:"top"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	defaults := s.analyticsCfg.Current()

	by, err := analyticsdomain.ParseContributionBy(orDefault(query.By, string(analyticsdomain.ContributionByProduct)))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	parsed, err := s.parseAnalyticsQuery(c, query.analyticsQuery)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	top, err := parseOptionalInt(query.Top)
	if err != nil || (top != nil && *top <= 0) {
		AbortWithError(c, newValidationError("top", "invalid_top", "invalid top"))
		return
	}

	req := analyticsdomain.ContributionsRequest{
		Query: parsed,
		By:    by,
		Top:   defaults.DefaultTop,
	}
	if top != nil {
		req.Top = *top
	}

	resp, err := s.analyticsSvc.Contributions(c.Request.Context(), req)
	if err != nil {
		s.metrics.RecordAnalysis(analysisContributions, "error")
		AbortWithError(c, err)
		return
	}

	// When the date filter collapses into a single bucket every ratio is 1
	// and the decomposition says nothing. Retry with finer buckets until a
	// non-trivial drift appears. The calculators themselves never do this.
	if defaults.RefineDegenerate && isDegenerateContributions(resp) {
		for _, groupBy := range finerGroupBys(req.GroupBy) {
			retryReq := req
			retryReq.GroupBy = groupBy

			retry, err := s.analyticsSvc.Contributions(c.Request.Context(), retryReq)
			if err != nil {
				break
			}
			if !isDegenerateContributions(retry) {
				resp = retry
				break
			}
		}
	}

	s.metrics.RecordAnalysis(analysisContributions, outcomeForPoints(len(resp.Points)))
	c.JSON(http.StatusOK, resp)
}

func (s *Server) StoreComparison(c *gin.Context) {
	var query struct {
		ProductID string `form:"product_id"`
		From      string `form:"from"`
		To        string `form:"to"`
		PriceMode string `form:"price_mode"`
		PromoMode string `form:"promo_mode"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	productID, err := parseRequiredInt64(query.ProductID)
	if err != nil {
		AbortWithError(c, newValidationError("product_id", "invalid_product_id", "invalid product id"))
		return
	}
	parsed, err := s.parseAnalyticsQuery(c, analyticsQuery{
		From:      query.From,
		To:        query.To,
		PriceMode: query.PriceMode,
		PromoMode: query.PromoMode,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.analyticsSvc.StoreComparison(c.Request.Context(), analyticsdomain.StoreComparisonRequest{
		ProductID: productID,
		FromDate:  parsed.FromDate,
		ToDate:    parsed.ToDate,
		PriceMode: parsed.PriceMode,
		PromoMode: parsed.PromoMode,
	})
	if err != nil {
		s.metrics.RecordAnalysis(analysisStoreComparison, "error")
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordAnalysis(analysisStoreComparison, outcomeForPoints(len(resp.Points)))
	c.JSON(http.StatusOK, resp)
}

func (s *Server) UsageCounts(c *gin.Context) {
	by := orDefault(c.Query("by"), "product")
	switch by {
	case "product", "store", "category":
	default:
		AbortWithError(c, newValidationError("by", "invalid_by", "invalid by"))
		return
	}

	counts, err := s.purchaseSvc.UsageCounts(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	selected := counts.Products
	switch by {
	case "store":
		selected = counts.Stores
	case "category":
		selected = counts.Categories
	}
	if selected == nil {
		selected = map[int64]int64{}
	}

	bounds, err := s.purchaseSvc.DateBounds(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"by":       by,
		"counts":   selected,
		"min_date": bounds.MinDate,
		"max_date": bounds.MaxDate,
	})
}

func isDegenerateContributions(resp *analyticsdomain.ContributionsResult) bool {
	kpi := resp.KPI
	if kpi.BasePeriod == nil || kpi.TargetPeriod == nil {
		return false
	}
	if !kpi.BasePeriod.Equal(kpi.TargetPeriod.Time) {
		return false
	}
	var maxAbs float64
	for _, point := range resp.Points {
		if abs := math.Abs(point.Contribution); abs > maxAbs {
			maxAbs = abs
		}
	}
	return maxAbs < 1e-9
}

func finerGroupBys(groupBy analyticsdomain.GroupBy) []analyticsdomain.GroupBy {
	order := []analyticsdomain.GroupBy{
		analyticsdomain.GroupByYear,
		analyticsdomain.GroupByMonth,
		analyticsdomain.GroupByWeek,
		analyticsdomain.GroupByDay,
	}
	for i, g := range order {
		if g == groupBy {
			return order[i+1:]
		}
	}
	return nil
}

func outcomeForPoints(points int) string {
	if points == 0 {
		return "empty"
	}
	return "ok"
}
