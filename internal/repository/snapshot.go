package repository

import (
	"context"
	"time"

	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/pkg/xcontext"
)

type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *entity.Snapshot) error

	// GetLatest returns the newest snapshot of a player.
	GetLatest(ctx context.Context, playerID string) (*entity.Snapshot, error)

	// GetLatestBefore returns the newest snapshot created at or before t.
	GetLatestBefore(ctx context.Context, playerID string, t time.Time) (*entity.Snapshot, error)

	// GetFirstAfter returns the oldest snapshot created at or after t.
	GetFirstAfter(ctx context.Context, playerID string, t time.Time) (*entity.Snapshot, error)

	// GetFirst returns the oldest snapshot of a player.
	GetFirst(ctx context.Context, playerID string) (*entity.Snapshot, error)

	GetBetween(ctx context.Context, playerID string, start, end time.Time) ([]entity.Snapshot, error)

	// DeleteByPlayer removes a player's whole history. Administrative only,
	// used after a confirmed name change invalidates the history.
	DeleteByPlayer(ctx context.Context, playerID string) error
}

type snapshotRepository struct{}

func NewSnapshotRepository() *snapshotRepository {
	return &snapshotRepository{}
}

func (r *snapshotRepository) Create(ctx context.Context, snapshot *entity.Snapshot) error {
	return xcontext.DB(ctx).Create(snapshot).Error
}

func (r *snapshotRepository) GetLatest(ctx context.Context, playerID string) (*entity.Snapshot, error) {
	result := &entity.Snapshot{}
	err := xcontext.DB(ctx).Model(&entity.Snapshot{}).
		Where("player_id=?", playerID).
		Order("created_at DESC, id DESC").
		Take(result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *snapshotRepository) GetLatestBefore(
	ctx context.Context, playerID string, t time.Time,
) (*entity.Snapshot, error) {
	result := &entity.Snapshot{}
	err := xcontext.DB(ctx).Model(&entity.Snapshot{}).
		Where("player_id=? AND created_at <= ?", playerID, t).
		Order("created_at DESC, id DESC").
		Take(result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *snapshotRepository) GetFirstAfter(
	ctx context.Context, playerID string, t time.Time,
) (*entity.Snapshot, error) {
	result := &entity.Snapshot{}
	err := xcontext.DB(ctx).Model(&entity.Snapshot{}).
		Where("player_id=? AND created_at >= ?", playerID, t).
		Order("created_at ASC, id ASC").
		Take(result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *snapshotRepository) GetFirst(ctx context.Context, playerID string) (*entity.Snapshot, error) {
	result := &entity.Snapshot{}
	err := xcontext.DB(ctx).Model(&entity.Snapshot{}).
		Where("player_id=?", playerID).
		Order("created_at ASC, id ASC").
		Take(result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *snapshotRepository) GetBetween(
	ctx context.Context, playerID string, start, end time.Time,
) ([]entity.Snapshot, error) {
	var result []entity.Snapshot
	err := xcontext.DB(ctx).Model(&entity.Snapshot{}).
		Where("player_id=? AND created_at >= ? AND created_at < ?", playerID, start, end).
		Order("created_at ASC, id ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *snapshotRepository) DeleteByPlayer(ctx context.Context, playerID string) error {
	return xcontext.DB(ctx).
		Where("player_id=?", playerID).
		Delete(&entity.Snapshot{}).Error
}
