package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel-planner/internal/service"
)

// SpotHandler sirve el catálogo estático y las búsquedas en Overpass.
type SpotHandler struct {
	logger   *zap.Logger
	spotServ *service.SpotService
	catalog  *service.SpotCatalog
}

func NewSpotHandler(logger *zap.Logger, spotServ *service.SpotService, catalog *service.SpotCatalog) *SpotHandler {
	return &SpotHandler{logger: logger, spotServ: spotServ, catalog: catalog}
}

// Catalog maneja GET /api/spots.
func (h *SpotHandler) Catalog(c *gin.Context) {
	data, err := h.catalog.Load()
	if err != nil {
		if errors.Is(err, service.ErrCatalogNotFound) {
			respondMessage(c, http.StatusNotFound, "spot data not found")
			return
		}
		h.logger.Error("load spot catalog failed", zap.Error(err))
		respondMessage(c, http.StatusInternalServerError, "failed to load spot data")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Curated maneja GET /api/overpass-spots.
func (h *SpotHandler) Curated(c *gin.Context) {
	spots, err := h.spotServ.Curated(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "overpass spots", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(spots), "spots": spots})
}

// Search maneja GET /api/search-spots?query=.
func (h *SpotHandler) Search(c *gin.Context) {
	query := c.Query("query")
	spots, err := h.spotServ.SearchByName(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.logger, "search spots", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"query":   query,
		"count":   len(spots),
		"spots":   spots,
	})
}

// SearchByCategory maneja GET /api/search-by-category?category=.
func (h *SpotHandler) SearchByCategory(c *gin.Context) {
	res, err := h.spotServ.SearchByCategory(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, h.logger, "search by category", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"category":      res.Category.Key,
		"category_name": res.Category.Label,
		"count":         len(res.Spots),
		"spots":         res.Spots,
	})
}

// Categories maneja GET /api/categories.
func (h *SpotHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "categories": service.SpotCategories()})
}
