package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/art2music-api/internal/compose"
	"github.com/Conceptual-Machines/art2music-api/internal/middleware"
	"github.com/Conceptual-Machines/art2music-api/internal/models"
	"github.com/Conceptual-Machines/art2music-api/internal/music"
	"github.com/Conceptual-Machines/art2music-api/internal/services"
)

type CompositionHandler struct {
	service *services.CompositionService
}

func NewCompositionHandler(service *services.CompositionService) *CompositionHandler {
	return &CompositionHandler{service: service}
}

// Create generates a composition from a canvas image
func (h *CompositionHandler) Create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req models.CompositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	res, err := h.service.Generate(c.Request.Context(), services.GenerateInput{
		Image:       req.Image,
		UserID:      userID,
		Seed:        req.Seed,
		Duration:    req.Duration,
		RenderAudio: req.RenderAudio,
	})
	if err != nil {
		respondError(c, "Failed to generate composition", err)
		return
	}

	layers := make(map[string]int, len(compose.Layers))
	for _, l := range compose.Layers {
		layers[string(l)] = len(res.Composition.Layer(l))
	}

	resp := models.CompositionResponse{
		ID:          res.ID,
		Seed:        res.Seed,
		Mood:        res.Parameters.Mood,
		Description: music.DescribeMood(res.Parameters.Mood),
		Parameters:  res.Parameters,
		Statistics:  res.Statistics,
		Duration:    res.Composition.TotalDuration,
		EventCount:  len(res.Composition.Events),
		Layers:      layers,
		AudioURL:    res.AudioURL,
		Persisted:   res.Persisted,
	}
	if req.IncludeEvents {
		resp.Events = res.Composition.Sorted()
	}

	c.JSON(http.StatusOK, resp)
}

// Get returns a persisted composition
func (h *CompositionHandler) Get(c *gin.Context) {
	rec, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to load composition", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
