package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	productdomain "github.com/spendindex/spendindex/internal/product/domain"
)

type createProductRequest struct {
	Name       string `json:"name"`
	CategoryID *int64 `json:"category_id"`
	UnitID     int64  `json:"unit_id"`
}

type updateProductRequest struct {
	Name       *string `json:"name"`
	CategoryID *int64  `json:"category_id"`
	UnitID     *int64  `json:"unit_id"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), productdomain.CreateRequest{
		Name:       strings.TrimSpace(req.Name),
		CategoryID: req.CategoryID,
		UnitID:     req.UnitID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	resp, err := s.productSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProduct(c *gin.Context) {
	id, err := parseRequiredInt64(c.Param("id"))
	if err != nil {
		AbortWithError(c, productdomain.ErrNotFound)
		return
	}

	resp, err := s.productSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProduct(c *gin.Context) {
	id, err := parseRequiredInt64(c.Param("id"))
	if err != nil {
		AbortWithError(c, productdomain.ErrNotFound)
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Update(c.Request.Context(), id, productdomain.UpdateRequest{
		Name:       req.Name,
		CategoryID: req.CategoryID,
		UnitID:     req.UnitID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	id, err := parseRequiredInt64(c.Param("id"))
	if err != nil {
		AbortWithError(c, productdomain.ErrNotFound)
		return
	}

	if err := s.productSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
