package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jhonlemus05/FastBite-Delivery/app/models"
)

// PreferenceRepository handles database operations for VisitorPreference.
type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Migrate creates or updates the visitor_preferences table.
func (r *PreferenceRepository) Migrate() error {
	return r.db.AutoMigrate(&models.VisitorPreference{})
}

// Find returns the stored preferences for visitorID; ok is false when none exist.
func (r *PreferenceRepository) Find(ctx context.Context, visitorID string) (models.Accessibility, bool, error) {
	var row models.VisitorPreference
	err := r.db.WithContext(ctx).Where("visitor_id = ?", visitorID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Accessibility{}, false, nil
	}
	if err != nil {
		return models.Accessibility{}, false, err
	}
	return row.Accessibility(), true, nil
}

// Save upserts the preferences for visitorID.
func (r *PreferenceRepository) Save(ctx context.Context, visitorID string, a models.Accessibility) error {
	a = a.Normalize()
	row := models.VisitorPreference{
		VisitorID:    visitorID,
		HighContrast: a.HighContrast,
		FontScale:    a.FontScale,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "visitor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"high_contrast", "font_scale", "updated_at"}),
	}).Create(&row).Error
}
