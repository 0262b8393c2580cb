package repositories

import (
	"errors"

	"github.com/waveline/notification-service/internal/models"
	"gorm.io/gorm"
)

// PreferenceRepository defines the interface for notification preference
// persistence. Preferences live in PostgreSQL: one row per user, low churn,
// read on every eligibility check.
type PreferenceRepository interface {
	GetOrCreate(userID string) (*models.NotificationPreferences, error)
	Update(prefs *models.NotificationPreferences) error
}

// PostgresPreferenceRepository implements PreferenceRepository with GORM.
type PostgresPreferenceRepository struct {
	db *gorm.DB
}

// NewPostgresPreferenceRepository creates a new PostgresPreferenceRepository.
func NewPostgresPreferenceRepository(db *gorm.DB) *PostgresPreferenceRepository {
	return &PostgresPreferenceRepository{db: db}
}

// GetOrCreate loads the user's preference record, lazily creating it with
// per-type defaults on first access.
func (r *PostgresPreferenceRepository) GetOrCreate(userID string) (*models.NotificationPreferences, error) {
	var prefs models.NotificationPreferences
	err := r.db.Where("user_id = ?", userID).First(&prefs).Error
	if err == nil {
		return &prefs, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	defaults := models.DefaultPreferences(userID)
	if err := r.db.Create(defaults).Error; err != nil {
		// A concurrent eligibility check may have created the row first;
		// re-read before giving up.
		if readErr := r.db.Where("user_id = ?", userID).First(&prefs).Error; readErr == nil {
			return &prefs, nil
		}
		return nil, err
	}
	return defaults, nil
}

// Update persists a fully merged preference record.
func (r *PostgresPreferenceRepository) Update(prefs *models.NotificationPreferences) error {
	return r.db.Save(prefs).Error
}
