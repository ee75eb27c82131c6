package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Conceptual-Machines/art2music-api/internal/models"
)

// Repository persists composition records.
type Repository interface {
	Create(ctx context.Context, rec *models.CompositionRecord) error
	Get(ctx context.Context, id string) (*models.CompositionRecord, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGormRepository returns a Repository backed by db.
func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, rec *models.CompositionRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *gormRepository) Get(ctx context.Context, id string) (*models.CompositionRecord, error) {
	var rec models.CompositionRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}
