package domain

import (
	"context"
	"errors"

	"github.com/xptrack-lab/backend/internal/model"
	"github.com/xptrack-lab/backend/internal/repository"
	"github.com/xptrack-lab/backend/pkg/errorx"
	"github.com/xptrack-lab/backend/pkg/xcontext"

	"gorm.io/gorm"
)

type AchievementDomain interface {
	GetAchievements(ctx context.Context, req *model.GetAchievementsRequest) (*model.GetAchievementsResponse, error)
}

type achievementDomain struct {
	playerRepo      repository.PlayerRepository
	achievementRepo repository.AchievementRepository
}

func NewAchievementDomain(
	playerRepo repository.PlayerRepository,
	achievementRepo repository.AchievementRepository,
) AchievementDomain {
	return &achievementDomain{
		playerRepo:      playerRepo,
		achievementRepo: achievementRepo,
	}
}

func (d *achievementDomain) GetAchievements(
	ctx context.Context, req *model.GetAchievementsRequest,
) (*model.GetAchievementsResponse, error) {
	player, err := d.playerRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.PlayerNotFound, "Player %s is not tracked", req.Username)
		}

		xcontext.Logger(ctx).Errorf("Cannot get player %s: %v", req.Username, err)
		return nil, errorx.Unknown
	}

	achievements, err := d.achievementRepo.GetList(ctx, player.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get achievements of %s: %v", req.Username, err)
		return nil, errorx.Unknown
	}

	resp := &model.GetAchievementsResponse{
		Achievements: make([]model.Achievement, 0, len(achievements)),
	}
	for _, a := range achievements {
		resp.Achievements = append(resp.Achievements, model.Achievement{
			Name:      a.Name,
			Metric:    string(a.Metric),
			Threshold: a.Threshold,
			CreatedAt: a.CreatedAt,
			Imprecise: a.Imprecise,
		})
	}

	return resp, nil
}
