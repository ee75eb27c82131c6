package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/Conceptual-Machines/art2music-api/internal/compose"
	"github.com/Conceptual-Machines/art2music-api/internal/music"
	"github.com/Conceptual-Machines/art2music-api/internal/palette"
	"github.com/Conceptual-Machines/art2music-api/internal/tracksearch"
)

// CompositionRecord is a persisted composition. Events are stored as
// JSON so a composition can be replayed without re-analysing the image.
type CompositionRecord struct {
	ID            string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	UserID        string         `gorm:"index" json:"user_id,omitempty"`
	Seed          int64          `json:"seed"`
	Mood          string         `gorm:"index;not null" json:"mood"`
	Hue           string         `json:"hue"`
	Tempo         float64        `json:"tempo"`
	Scale         string         `json:"scale"`
	BaseFreq      float64        `json:"base_freq"`
	Waveform      string         `json:"waveform"`
	Brightness    float64        `json:"brightness"`
	ColoredPixels int            `json:"colored_pixels"`
	Duration      float64        `json:"duration"`
	EventCount    int            `json:"event_count"`
	AudioURL      string         `json:"audio_url,omitempty"`
	Events        string         `gorm:"type:jsonb" json:"-"`
}

// CompositionRequest is the body of POST /api/v1/compositions
type CompositionRequest struct {
	Image         string   `json:"image" binding:"required"` // data URL or base64 PNG/JPEG
	Seed          *uint64  `json:"seed,omitempty"`           // Optional seed for reproducibility
	Duration      *float64 `json:"duration,omitempty"`       // Seconds, defaults to the server setting
	RenderAudio   bool     `json:"render_audio"`
	IncludeEvents bool     `json:"include_events"`
}

// CompositionResponse describes a generated composition
type CompositionResponse struct {
	ID          string             `json:"id"`
	Seed        uint64             `json:"seed"`
	Mood        music.Mood         `json:"mood"`
	Description string             `json:"description"`
	Parameters  music.Parameters   `json:"parameters"`
	Statistics  palette.Statistics `json:"statistics"`
	Duration    float64            `json:"duration"`
	EventCount  int                `json:"event_count"`
	Layers      map[string]int     `json:"layers"`
	Events      []compose.Event    `json:"events,omitempty"`
	AudioURL    string             `json:"audio_url,omitempty"`
	Persisted   bool               `json:"persisted"`
}

// RecommendationRequest is the body of POST /api/v1/recommendations
type RecommendationRequest struct {
	Image string `json:"image" binding:"required"`
	Limit int    `json:"limit,omitempty"`
}

// RecommendationResponse lists tracks matching a drawing's mood
type RecommendationResponse struct {
	Genre  string              `json:"genre"`
	Mood   string              `json:"mood"`
	Query  string              `json:"query"`
	Tracks []tracksearch.Track `json:"tracks"`
}
