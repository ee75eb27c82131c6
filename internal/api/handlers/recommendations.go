package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/art2music-api/internal/models"
	"github.com/Conceptual-Machines/art2music-api/internal/services"
)

type RecommendationHandler struct {
	service *services.CompositionService
}

func NewRecommendationHandler(service *services.CompositionService) *RecommendationHandler {
	return &RecommendationHandler{service: service}
}

// Create finds recorded tracks whose mood matches a canvas image
func (h *RecommendationHandler) Create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req models.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}
	if limit > maxRecommendationLimit {
		limit = maxRecommendationLimit
	}

	resp, err := h.service.Recommend(c.Request.Context(), req.Image, limit)
	if err != nil {
		respondError(c, "Failed to search tracks", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
