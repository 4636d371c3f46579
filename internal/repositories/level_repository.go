package repositories

import (
	"errors"

	"antigravity/focus/internal/leveling"
	"antigravity/focus/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrLevelNotFound = errors.New("level record not found")

type LevelRepository struct {
	DB *gorm.DB
}

func (r *LevelRepository) GetByOwner(ownerID uint) (*models.UserLevel, error) {
	var level models.UserLevel
	err := r.DB.First(&level, "owner_id = ?", ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLevelNotFound
	}
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// EnsureExists creates the owner's default level record if absent. The
// insert ignores conflicts on the unique owner index, so two racing first
// completions cannot double-insert.
func (r *LevelRepository) EnsureExists(ownerID uint) error {
	return r.DB.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}},
			DoNothing: true,
		}).
		Create(leveling.NewDefaultLevel(ownerID)).Error
}

// Grant applies a leveling outcome to the owner's record and returns the
// updated row. Experience is incremented inside the database rather than
// read-modify-written, so concurrent grants for the same owner cannot lose
// updates; the rank overwrite is last-writer-wins, which is acceptable
// because a rank draw replaces the label outright.
func (r *LevelRepository) Grant(ownerID uint, outcome leveling.Outcome) (*models.UserLevel, error) {
	if err := r.EnsureExists(ownerID); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"total_experience": gorm.Expr("total_experience + ?", outcome.ExpGain),
	}
	if outcome.LeveledUp {
		updates["cultivation_rank"] = outcome.NewRank
	}
	if err := r.DB.Model(&models.UserLevel{}).
		Where("owner_id = ?", ownerID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	return r.GetByOwner(ownerID)
}
