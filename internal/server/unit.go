package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	unitdomain "github.com/spendindex/spendindex/internal/unit/domain"
)

type createUnitRequest struct {
	MeasureType string `json:"measure_type"`
	Unit        string `json:"unit"`
}

type updateUnitRequest struct {
	MeasureType *string `json:"measure_type"`
	Unit        *string `json:"unit"`
}

func (s *Server) CreateUnit(c *gin.Context) {
	var req createUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.unitSvc.Create(c.Request.Context(), unitdomain.CreateRequest{
		MeasureType: strings.TrimSpace(req.MeasureType),
		Unit:        strings.TrimSpace(req.Unit),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListUnits(c *gin.Context) {
	resp, err := s.unitSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetUnit(c *gin.Context) {
	id, err := parseRequiredInt64(c.Param("id"))
	if err != nil {
		AbortWithError(c, unitdomain.ErrNotFound)
		return
	}

	resp, err := s.unitSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateUnit(c *gin.Context) {
	id, err := parseRequiredInt64(c.Param("id"))
	if err != nil {
		AbortWithError(c, unitdomain.ErrNotFound)
		return
	}

	var req updateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.unitSvc.Update(c.Request.Context(), id, unitdomain.UpdateRequest{
		MeasureType: req.MeasureType,
		Unit:        req.Unit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteUnit(c *gin.Context) {
	id, err := parseRequiredInt64(c.Param("id"))
	if err != nil {
		AbortWithError(c, unitdomain.ErrNotFound)
		return
	}

	if err := s.unitSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
