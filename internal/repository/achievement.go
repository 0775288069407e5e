package repository

import (
	"context"
	"time"

	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/pkg/xcontext"

	"gorm.io/gorm/clause"
)

type AchievementRepository interface {
	// Create inserts the achievement if its (player, name) key is new and
	// does nothing otherwise, so re-running detection can never duplicate.
	Create(ctx context.Context, achievement *entity.Achievement) error

	GetList(ctx context.Context, playerID string) ([]entity.Achievement, error)

	// UpdateCrossingDate moves the estimated crossing date of an existing
	// achievement, but only backwards in time.
	UpdateCrossingDate(ctx context.Context, playerID, name string, at time.Time, imprecise bool) error
}

type achievementRepository struct{}

func NewAchievementRepository() *achievementRepository {
	return &achievementRepository{}
}

func (r *achievementRepository) Create(ctx context.Context, achievement *entity.Achievement) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "player_id"},
				{Name: "name"},
			},
			DoNothing: true,
		}).
		Create(achievement).Error
}

func (r *achievementRepository) GetList(ctx context.Context, playerID string) ([]entity.Achievement, error) {
	var result []entity.Achievement
	err := xcontext.DB(ctx).
		Where("player_id=?", playerID).
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *achievementRepository) UpdateCrossingDate(
	ctx context.Context, playerID, name string, at time.Time, imprecise bool,
) error {
	return xcontext.DB(ctx).Model(&entity.Achievement{}).
		Where("player_id=? AND name=? AND created_at > ?", playerID, name, at).
		Updates(map[string]any{"created_at": at, "imprecise": imprecise}).Error
}
