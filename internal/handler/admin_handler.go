package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/roadsafety-tn/accidents-backend-go/internal/cache"
	"github.com/roadsafety-tn/accidents-backend-go/pkg/response"
)

// AdminHandler exposes operational endpoints.
type AdminHandler struct {
	cache cache.Cache
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(c cache.Cache) *AdminHandler {
	return &AdminHandler{cache: c}
}

// FlushCache handles POST /cache/flush
func (h *AdminHandler) FlushCache(c *gin.Context) {
	if h.cache != nil {
		h.cache.Clear()
	}
	response.Success(c, gin.H{"flushed": true})
}

// Health handles GET /health
func Health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
