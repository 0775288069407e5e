package repository

import (
	"context"
	"time"

	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/pkg/xcontext"
)

type CompetitionRepository interface {
	Create(ctx context.Context, competition *entity.Competition) error
	GetByID(ctx context.Context, id string) (*entity.Competition, error)
	GetActive(ctx context.Context, now time.Time) ([]entity.Competition, error)
	GetEndedBetween(ctx context.Context, start, end time.Time) ([]entity.Competition, error)
	CreateParticipation(ctx context.Context, participation *entity.Participation) error
	GetParticipations(ctx context.Context, competitionID string) ([]entity.Participation, error)
	GetParticipationsByPlayer(ctx context.Context, playerID string) ([]entity.Participation, error)
}

type competitionRepository struct{}

func NewCompetitionRepository() *competitionRepository {
	return &competitionRepository{}
}

func (r *competitionRepository) Create(ctx context.Context, competition *entity.Competition) error {
	return xcontext.DB(ctx).Create(competition).Error
}

func (r *competitionRepository) GetByID(ctx context.Context, id string) (*entity.Competition, error) {
	result := &entity.Competition{}
	if err := xcontext.DB(ctx).Take(result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *competitionRepository) GetActive(
	ctx context.Context, now time.Time,
) ([]entity.Competition, error) {
	var result []entity.Competition
	err := xcontext.DB(ctx).
		Where("starts_at<=? AND ends_at>=?", now, now).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *competitionRepository) GetEndedBetween(
	ctx context.Context, start, end time.Time,
) ([]entity.Competition, error) {
	var result []entity.Competition
	err := xcontext.DB(ctx).
		Where("ends_at>=? AND ends_at<?", start, end).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *competitionRepository) CreateParticipation(
	ctx context.Context, participation *entity.Participation,
) error {
	return xcontext.DB(ctx).Create(participation).Error
}

func (r *competitionRepository) GetParticipations(
	ctx context.Context, competitionID string,
) ([]entity.Participation, error) {
	var result []entity.Participation
	err := xcontext.DB(ctx).
		Preload("Player").
		Where("competition_id=?", competitionID).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *competitionRepository) GetParticipationsByPlayer(
	ctx context.Context, playerID string,
) ([]entity.Participation, error) {
	var result []entity.Participation
	err := xcontext.DB(ctx).
		Preload("Competition").
		Where("player_id=?", playerID).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
