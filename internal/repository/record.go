package repository

import (
	"context"

	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/pkg/xcontext"
)

type GetListRecordFilter struct {
	PlayerID string
	Period   entity.PeriodName
	Metric   entity.Metric
}

type RecordRepository interface {
	Get(ctx context.Context, playerID string, period entity.PeriodName, metric entity.Metric) (*entity.Record, error)
	GetList(ctx context.Context, filter GetListRecordFilter) ([]entity.Record, error)
	Create(ctx context.Context, record *entity.Record) error

	// UpdateValue replaces the stored value only if the new one is strictly
	// greater. The guard also lives in the query so a stale writer can never
	// regress a record.
	UpdateValue(ctx context.Context, playerID string, period entity.PeriodName, metric entity.Metric, value int64) error
}

type recordRepository struct{}

func NewRecordRepository() *recordRepository {
	return &recordRepository{}
}

func (r *recordRepository) Get(
	ctx context.Context, playerID string, period entity.PeriodName, metric entity.Metric,
) (*entity.Record, error) {
	result := &entity.Record{}
	err := xcontext.DB(ctx).
		Take(result, "player_id=? AND period=? AND metric=?", playerID, period, metric).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *recordRepository) GetList(
	ctx context.Context, filter GetListRecordFilter,
) ([]entity.Record, error) {
	tx := xcontext.DB(ctx).Where("player_id=?", filter.PlayerID)
	if filter.Period != "" {
		tx = tx.Where("period=?", filter.Period)
	}

	if filter.Metric != "" {
		tx = tx.Where("metric=?", filter.Metric)
	}

	var result []entity.Record
	if err := tx.Order("value DESC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *recordRepository) Create(ctx context.Context, record *entity.Record) error {
	return xcontext.DB(ctx).Create(record).Error
}

func (r *recordRepository) UpdateValue(
	ctx context.Context, playerID string, period entity.PeriodName, metric entity.Metric, value int64,
) error {
	return xcontext.DB(ctx).Model(&entity.Record{}).
		Where("player_id=? AND period=? AND metric=? AND value < ?", playerID, period, metric, value).
		Update("value", value).Error
}
