package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Conceptual-Machines/art2music-api/internal/audio"
	"github.com/Conceptual-Machines/art2music-api/internal/compose"
	"github.com/Conceptual-Machines/art2music-api/internal/export"
	"github.com/Conceptual-Machines/art2music-api/internal/logger"
	"github.com/Conceptual-Machines/art2music-api/internal/metrics"
	"github.com/Conceptual-Machines/art2music-api/internal/models"
	"github.com/Conceptual-Machines/art2music-api/internal/music"
	"github.com/Conceptual-Machines/art2music-api/internal/palette"
	"github.com/Conceptual-Machines/art2music-api/internal/storage"
	"github.com/Conceptual-Machines/art2music-api/internal/tracksearch"
)

const (
	MinDuration = 1.0
	MaxDuration = 120.0

	audioContentType = "audio/wav"
)

var (
	ErrNotFound            = errors.New("composition not found")
	ErrPersistenceDisabled = errors.New("composition persistence not configured")
	ErrStorageDisabled     = errors.New("audio storage not configured")
	ErrInvalidDuration     = fmt.Errorf("duration must be between %.0f and %.0f seconds", MinDuration, MaxDuration)
)

// Searcher finds recorded tracks for a query.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]tracksearch.Track, error)
}

// GenerateInput describes one composition request.
type GenerateInput struct {
	Image       string // data URL or base64 PNG/JPEG
	UserID      string
	Seed        *uint64
	Duration    *float64
	RenderAudio bool
}

// GenerateResult is a generated composition and where it ended up.
type GenerateResult struct {
	ID          string
	Seed        uint64
	Statistics  palette.Statistics
	Parameters  music.Parameters
	Composition compose.Composition
	AudioURL    string
	Persisted   bool
}

// CompositionService turns drawings into compositions. Every backend is
// optional; a nil repository, store or searcher disables the feature
// that needs it.
type CompositionService struct {
	repo            Repository
	store           storage.Store
	searcher        Searcher
	metrics         metrics.Recorder
	sampleRate      int
	defaultDuration float64
}

// Option configures a CompositionService.
type Option func(*CompositionService)

func WithRepository(r Repository) Option {
	return func(s *CompositionService) { s.repo = r }
}

func WithStore(st storage.Store) Option {
	return func(s *CompositionService) { s.store = st }
}

func WithSearcher(se Searcher) Option {
	return func(s *CompositionService) { s.searcher = se }
}

func WithMetrics(m metrics.Recorder) Option {
	return func(s *CompositionService) { s.metrics = m }
}

func WithSampleRate(rate int) Option {
	return func(s *CompositionService) { s.sampleRate = rate }
}

func WithDefaultDuration(seconds float64) Option {
	return func(s *CompositionService) { s.defaultDuration = seconds }
}

func NewCompositionService(opts ...Option) *CompositionService {
	s := &CompositionService{
		metrics:         metrics.Multi(),
		sampleRate:      audio.DefaultSampleRate,
		defaultDuration: compose.DefaultDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate analyses the drawing, maps and schedules it, and optionally
// renders, stores and persists the result.
func (s *CompositionService) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	start := time.Now()

	duration := s.defaultDuration
	if in.Duration != nil {
		duration = *in.Duration
	}
	if duration < MinDuration || duration > MaxDuration {
		return nil, ErrInvalidDuration
	}
	if in.RenderAudio && s.store == nil {
		return nil, ErrStorageDisabled
	}

	img, err := palette.DecodeDataURL(in.Image)
	if err != nil {
		return nil, err
	}

	seed := rand.Uint64()
	if in.Seed != nil {
		seed = *in.Seed
	}

	stats := palette.AnalyzeImage(img)
	params := music.NewSeededMapper(seed).Map(stats)
	comp := compose.NewScheduler(compose.WithDuration(duration), compose.WithSeed(seed)).Schedule(params)

	res := &GenerateResult{
		ID:          uuid.New().String(),
		Seed:        seed,
		Statistics:  stats,
		Parameters:  params,
		Composition: comp,
	}

	if in.RenderAudio {
		url, err := s.renderAndStore(ctx, res)
		if err != nil {
			s.metrics.RecordComposition(ctx, string(params.Mood), time.Since(start), false)
			return nil, err
		}
		res.AudioURL = url
	}

	if s.repo != nil {
		if err := s.persist(ctx, res, in.UserID); err != nil {
			s.metrics.RecordComposition(ctx, string(params.Mood), time.Since(start), false)
			return nil, err
		}
		res.Persisted = true
	}

	elapsed := time.Since(start)
	s.metrics.RecordComposition(ctx, string(params.Mood), elapsed, true)
	logger.LogComposition(ctx, string(params.Mood), elapsed, len(comp.Events), logger.Fields{
		"composition_id": res.ID,
		"seed":           seed,
		"hue":            string(params.Hue),
		"rendered":       in.RenderAudio,
	})
	return res, nil
}

func (s *CompositionService) renderAndStore(ctx context.Context, res *GenerateResult) (string, error) {
	start := time.Now()
	samples, err := audio.RenderComposition(res.Composition, s.sampleRate, res.Seed)
	if err != nil {
		return "", fmt.Errorf("render composition: %w", err)
	}
	s.metrics.RecordRender(ctx, float64(len(samples))/float64(s.sampleRate), time.Since(start))

	f, err := os.CreateTemp("", "art2music-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp wav: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if err := export.WriteWAV(f, samples, s.sampleRate); err != nil {
		return "", fmt.Errorf("encode wav: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind wav: %w", err)
	}

	url, err := s.store.Put(ctx, "compositions/"+res.ID+".wav", audioContentType, f)
	if err != nil {
		return "", fmt.Errorf("store wav: %w", err)
	}
	return url, nil
}

func (s *CompositionService) persist(ctx context.Context, res *GenerateResult, userID string) error {
	events, err := json.Marshal(res.Composition.Events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}

	p := res.Parameters
	rec := &models.CompositionRecord{
		ID:            res.ID,
		UserID:        userID,
		Seed:          int64(res.Seed),
		Mood:          string(p.Mood),
		Hue:           string(p.Hue),
		Tempo:         p.Tempo,
		Scale:         string(p.Scale),
		BaseFreq:      p.BaseFrequency,
		Waveform:      string(p.Waveform),
		Brightness:    res.Statistics.Brightness,
		ColoredPixels: res.Statistics.ColoredPixels,
		Duration:      res.Composition.TotalDuration,
		EventCount:    len(res.Composition.Events),
		AudioURL:      res.AudioURL,
		Events:        string(events),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return fmt.Errorf("save composition: %w", err)
	}
	return nil
}

// Get returns a persisted composition record.
func (s *CompositionService) Get(ctx context.Context, id string) (*models.CompositionRecord, error) {
	if s.repo == nil {
		return nil, ErrPersistenceDisabled
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Recommend maps the drawing to a search query and looks up matching
// tracks.
func (s *CompositionService) Recommend(ctx context.Context, image string, limit int) (*models.RecommendationResponse, error) {
	if s.searcher == nil {
		return nil, tracksearch.ErrNotConfigured
	}

	img, err := palette.DecodeDataURL(image)
	if err != nil {
		return nil, err
	}
	search := music.SearchFor(palette.AnalyzeImage(img))

	tracks, err := s.searcher.Search(ctx, search.Query, limit)
	s.metrics.RecordRecommendation(ctx, search.Query, len(tracks), err == nil)
	if err != nil {
		return nil, err
	}

	return &models.RecommendationResponse{
		Genre:  search.Genre,
		Mood:   string(search.Mood),
		Query:  search.Query,
		Tracks: tracks,
	}, nil
}

// CanPersist reports whether compositions are saved.
func (s *CompositionService) CanPersist() bool { return s.repo != nil }

// CanRender reports whether audio can be rendered and stored.
func (s *CompositionService) CanRender() bool { return s.store != nil }

// CanRecommend reports whether track search is available.
func (s *CompositionService) CanRecommend() bool {
	if s.searcher == nil {
		return false
	}
	if c, ok := s.searcher.(*tracksearch.Client); ok {
		return c.Configured()
	}
	return true
}
