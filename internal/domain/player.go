package domain

import (
	"context"
	"errors"

	"github.com/xptrack-lab/backend/internal/domain/updater"
	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/internal/model"
	"github.com/xptrack-lab/backend/internal/repository"
	"github.com/xptrack-lab/backend/pkg/enum"
	"github.com/xptrack-lab/backend/pkg/errorx"
	"github.com/xptrack-lab/backend/pkg/xcontext"

	"gorm.io/gorm"
)

type PlayerDomain interface {
	RequestUpdate(ctx context.Context, req *model.RequestUpdateRequest) (*model.RequestUpdateResponse, error)
	GetPlayer(ctx context.Context, req *model.GetPlayerRequest) (*model.GetPlayerResponse, error)
}

type playerDomain struct {
	playerRepo repository.PlayerRepository
	updater    *updater.Updater
}

func NewPlayerDomain(
	playerRepo repository.PlayerRepository,
	updater *updater.Updater,
) PlayerDomain {
	return &playerDomain{
		playerRepo: playerRepo,
		updater:    updater,
	}
}

// RequestUpdate asks the pipeline to refresh a player. A rejection is a
// normal response, not an error: callers always learn which of the three
// outcomes they got.
func (d *playerDomain) RequestUpdate(
	ctx context.Context, req *model.RequestUpdateRequest,
) (*model.RequestUpdateResponse, error) {
	if req.Username == "" {
		return nil, errorx.New(errorx.BadRequest, "Username is required")
	}

	_, err := d.updater.RequestUpdate(ctx, req.Username)
	if err != nil {
		var errx errorx.Error
		if !errors.As(err, &errx) {
			return nil, err
		}

		switch errx.Code {
		case errorx.UpdateInProgress:
			return &model.RequestUpdateResponse{
				Status: model.UpdateAlreadyInProgress,
				Reason: errx.Message,
			}, nil
		case errorx.PlayerBlocked, errorx.TooManyRequests:
			return &model.RequestUpdateResponse{
				Status: model.UpdateRejected,
				Reason: errx.Message,
			}, nil
		default:
			return nil, err
		}
	}

	return &model.RequestUpdateResponse{Status: model.UpdateAccepted}, nil
}

func (d *playerDomain) GetPlayer(
	ctx context.Context, req *model.GetPlayerRequest,
) (*model.GetPlayerResponse, error) {
	player, err := d.playerRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.PlayerNotFound, "Player %s is not tracked", req.Username)
		}

		xcontext.Logger(ctx).Errorf("Cannot get player %s: %v", req.Username, err)
		return nil, errorx.Unknown
	}

	return &model.GetPlayerResponse{Player: convertPlayer(player)}, nil
}

func convertPlayer(player *entity.Player) model.Player {
	resp := model.Player{
		ID:           player.ID,
		Username:     player.Username,
		DisplayName:  player.DisplayName,
		Status:       enum.ToString(player.Status),
		RegisteredAt: player.CreatedAt,
	}

	if player.LastUpdatedAt.Valid {
		at := player.LastUpdatedAt.Time
		resp.LastUpdatedAt = &at
	}

	if player.LastChangedAt.Valid {
		at := player.LastChangedAt.Time
		resp.LastChangedAt = &at
	}

	return resp
}
