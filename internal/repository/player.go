package repository

import (
	"context"
	"time"

	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/pkg/xcontext"
)

type GetListPlayerFilter struct {
	Statuses          []entity.PlayerStatus
	LastUpdatedBefore time.Time
	Limit             int
}

type PlayerRepository interface {
	Create(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	GetByUsername(ctx context.Context, username string) (*entity.Player, error)
	GetList(ctx context.Context, filter GetListPlayerFilter) ([]entity.Player, error)
	UpdateStatus(ctx context.Context, id string, status entity.PlayerStatus) error
	SetLastUpdated(ctx context.Context, id string, at time.Time) error
	SetLastChanged(ctx context.Context, id string, at time.Time) error
}

type playerRepository struct{}

func NewPlayerRepository() *playerRepository {
	return &playerRepository{}
}

func (r *playerRepository) Create(ctx context.Context, player *entity.Player) error {
	return xcontext.DB(ctx).Create(player).Error
}

func (r *playerRepository) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	result := &entity.Player{}
	if err := xcontext.DB(ctx).Take(result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *playerRepository) GetByUsername(ctx context.Context, username string) (*entity.Player, error) {
	result := &entity.Player{}
	if err := xcontext.DB(ctx).Take(result, "username=?", username).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *playerRepository) GetList(ctx context.Context, filter GetListPlayerFilter) ([]entity.Player, error) {
	tx := xcontext.DB(ctx)
	if len(filter.Statuses) > 0 {
		tx = tx.Where("status IN (?)", filter.Statuses)
	}

	if !filter.LastUpdatedBefore.IsZero() {
		tx = tx.Where("last_updated_at IS NULL OR last_updated_at < ?", filter.LastUpdatedBefore)
	}

	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var result []entity.Player
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *playerRepository) UpdateStatus(ctx context.Context, id string, status entity.PlayerStatus) error {
	return xcontext.DB(ctx).Model(&entity.Player{}).
		Where("id=?", id).
		Update("status", status).Error
}

func (r *playerRepository) SetLastUpdated(ctx context.Context, id string, at time.Time) error {
	return xcontext.DB(ctx).Model(&entity.Player{}).
		Where("id=?", id).
		Update("last_updated_at", at).Error
}

func (r *playerRepository) SetLastChanged(ctx context.Context, id string, at time.Time) error {
	return xcontext.DB(ctx).Model(&entity.Player{}).
		Where("id=?", id).
		Update("last_changed_at", at).Error
}
