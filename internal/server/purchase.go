package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	purchasedomain "github.com/spendindex/spendindex/internal/purchase/domain"
	"github.com/spendindex/spendindex/pkg/db/pagination"
)

type createPurchaseRequest struct {
	ProductID        int64    `json:"product_id"`
	StoreID          *int64   `json:"store_id"`
	Quantity         float64  `json:"quantity"`
	TotalPrice       float64  `json:"total_price"`
	PurchaseDate     *string  `json:"purchase_date"`
	Comment          *string  `json:"comment"`
	IsPromo          bool     `json:"is_promo"`
	PromoType        *string  `json:"promo_type"`
	RegularUnitPrice *float64 `json:"regular_unit_price"`
}

type updatePurchaseRequest struct {
	ProductID        *int64   `json:"product_id"`
	StoreID          *int64   `json:"store_id"`
	Quantity         *float64 `json:"quantity"`
	TotalPrice       *float64 `json:"total_price"`
	PurchaseDate     *string  `json:"purchase_date"`
	Comment          *string  `json:"comment"`
	IsPromo          *bool    `json:"is_promo"`
	PromoType        *string  `json:"promo_type"`
	RegularUnitPrice *float64 `json:"regular_unit_price"`
}

func (s *Server) CreatePurchase(c *gin.Context) {
	var req createPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	purchaseDate, err := parsePurchaseDate(req.PurchaseDate)
	if err != nil {
		AbortWithError(c, newValidationError("purchase_date", "invalid_purchase_date", "invalid purchase date"))
		return
	}

	resp, err := s.purchaseSvc.Create(c.Request.Context(), purchasedomain.CreateRequest{
		ProductID:        req.ProductID,
		StoreID:          req.StoreID,
		Quantity:         req.Quantity,
		TotalPrice:       req.TotalPrice,
		PurchaseDate:     purchaseDate,
		Comment:          req.Comment,
		IsPromo:          req.IsPromo,
		PromoType:        req.PromoType,
		RegularUnitPrice: req.RegularUnitPrice,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPurchases(c *gin.Context) {
	var query struct {
		pagination.Pagination
		From      string `form:"from"`
		To        string `form:"to"`
		StoreID   string `form:"store_id"`
		ProductID string `form:"product_id"`
		IsPromo   string `form:"is_promo"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalTime(query.From, false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from date"))
		return
	}
	to, err := parseOptionalTime(query.To, true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to date"))
		return
	}
	storeID, err := parseOptionalInt64(query.StoreID)
	if err != nil {
		AbortWithError(c, newValidationError("store_id", "invalid_store_id", "invalid store id"))
		return
	}
	productID, err := parseOptionalInt64(query.ProductID)
	if err != nil {
		AbortWithError(c, newValidationError("product_id", "invalid_product_id", "invalid product id"))
		return
	}
	isPromo, err := parseOptionalBool(query.IsPromo)
	if err != nil {
		AbortWithError(c, newValidationError("is_promo", "invalid_is_promo", "invalid is_promo"))
		return
	}

	resp, err := s.purchaseSvc.List(c.Request.Context(), purchasedomain.ListRequest{
		Pagination: query.Pagination,
		Filter: purchasedomain.Filter{
			FromDate:  from,
			ToDate:    to,
			StoreID:   storeID,
			ProductID: productID,
			IsPromo:   isPromo,
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPurchase(c *gin.Context) {
	id, err := parseRequiredInt64(c.Param("id"))
	if err != nil {
		AbortWithError(c, purchasedomain.ErrNotFound)
		return
	}

	resp, err := s.purchaseSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePurchase(c *gin.Context) {
	id, err := parseRequiredInt64(c.Param("id"))
	if err != nil {
		AbortWithError(c, purchasedomain.ErrNotFound)
		return
	}

	var req updatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	purchaseDate, err := parsePurchaseDate(req.PurchaseDate)
	if err != nil {
		AbortWithError(c, newValidationError("purchase_date", "invalid_purchase_date", "invalid purchase date"))
		return
	}

	resp, err := s.purchaseSvc.Update(c.Request.Context(), id, purchasedomain.UpdateRequest{
		ProductID:        req.ProductID,
		StoreID:          req.StoreID,
		Quantity:         req.Quantity,
		TotalPrice:       req.TotalPrice,
		PurchaseDate:     purchaseDate,
		Comment:          req.Comment,
		IsPromo:          req.IsPromo,
		PromoType:        req.PromoType,
		RegularUnitPrice: req.RegularUnitPrice,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePurchase(c *gin.Context) {
	id, err := parseRequiredInt64(c.Param("id"))
	if err != nil {
		AbortWithError(c, purchasedomain.ErrNotFound)
		return
	}

	if err := s.purchaseSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parsePurchaseDate(value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	return parseOptionalTime(*value, false)
}
