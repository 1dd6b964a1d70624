package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	storedomain "github.com/spendindex/spendindex/internal/store/domain"
)

type createStoreRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type updateStoreRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (s *Server) CreateStore(c *gin.Context) {
	var req createStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.storeSvc.Create(c.Request.Context(), storedomain.CreateRequest{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListStores(c *gin.Context) {
	resp, err := s.storeSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetStore(c *gin.Context) {
	id, err := parseRequiredInt64(c.Param("id"))
	if err != nil {
		AbortWithError(c, storedomain.ErrNotFound)
		return
	}

	resp, err := s.storeSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateStore(c *gin.Context) {
	id, err := parseRequiredInt64(c.Param("id"))
	if err != nil {
		AbortWithError(c, storedomain.ErrNotFound)
		return
	}

	var req updateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.storeSvc.Update(c.Request.Context(), id, storedomain.UpdateRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteStore(c *gin.Context) {
	id, err := parseRequiredInt64(c.Param("id"))
	if err != nil {
		AbortWithError(c, storedomain.ErrNotFound)
		return
	}

	if err := s.storeSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
