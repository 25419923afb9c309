package settings

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/swiftretail/pos-backend/pkg/db/models"
)

// Repository persists the key/value settings table.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) All(ctx context.Context) ([]models.Setting, error) {
	var rows []models.Setting
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert writes the value, inserting or replacing as needed.
func (r *Repository) Upsert(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&models.Setting{Key: key, Value: value}).Error
}

// InsertMissing writes only keys that do not exist yet, leaving operator
// overrides alone.
func (r *Repository) InsertMissing(ctx context.Context, defaults map[string]string) error {
	for key, value := range defaults {
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Setting{Key: key, Value: value}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
