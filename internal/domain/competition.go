package domain

import (
	"context"
	"errors"

	"github.com/xptrack-lab/backend/internal/common"
	"github.com/xptrack-lab/backend/internal/domain/competition"
	"github.com/xptrack-lab/backend/internal/model"
	"github.com/xptrack-lab/backend/internal/repository"
	"github.com/xptrack-lab/backend/pkg/errorx"
	"github.com/xptrack-lab/backend/pkg/xcontext"
	"github.com/xptrack-lab/backend/pkg/xredis"

	"gorm.io/gorm"
)

// topRankedLimit is how many cached scoreboard entries a rank lookup
// returns alongside the player's own position.
const topRankedLimit = 10

type CompetitionDomain interface {
	ScoreCompetition(ctx context.Context, req *model.ScoreCompetitionRequest) (*model.ScoreCompetitionResponse, error)
	GetRank(ctx context.Context, req *model.GetCompetitionRankRequest) (*model.GetCompetitionRankResponse, error)
}

type competitionDomain struct {
	scorer      *competition.Scorer
	playerRepo  repository.PlayerRepository
	redisClient xredis.Client
}

func NewCompetitionDomain(
	scorer *competition.Scorer,
	playerRepo repository.PlayerRepository,
	redisClient xredis.Client,
) CompetitionDomain {
	return &competitionDomain{
		scorer:      scorer,
		playerRepo:  playerRepo,
		redisClient: redisClient,
	}
}

func (d *competitionDomain) ScoreCompetition(
	ctx context.Context, req *model.ScoreCompetitionRequest,
) (*model.ScoreCompetitionResponse, error) {
	if req.CompetitionID == "" {
		return nil, errorx.New(errorx.BadRequest, "Competition id is required")
	}

	scoreboard, err := d.scorer.Score(ctx, req.CompetitionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Competition %s does not exist", req.CompetitionID)
		}

		xcontext.Logger(ctx).Errorf("Cannot score competition %s: %v", req.CompetitionID, err)
		return nil, errorx.Unknown
	}

	resp := &model.ScoreCompetitionResponse{
		CompetitionID: scoreboard.Competition.ID,
		Metric:        string(scoreboard.Competition.Metric),
		StartsAt:      scoreboard.Competition.StartsAt,
		EndsAt:        scoreboard.EndsAt,
		Standings:     make([]model.CompetitionStanding, 0, len(scoreboard.Standings)),
	}

	for i, standing := range scoreboard.Standings {
		resp.Standings = append(resp.Standings, model.CompetitionStanding{
			PlayerID:        standing.PlayerID,
			Username:        standing.Username,
			TeamName:        standing.TeamName,
			Rank:            i + 1,
			Gained:          standing.Gained,
			PartialCoverage: standing.PartialCoverage,
		})
	}

	for i, team := range scoreboard.Teams {
		resp.Teams = append(resp.Teams, model.TeamStanding{
			TeamName: team.TeamName,
			Rank:     i + 1,
			Gained:   team.Gained,
		})
	}

	return resp, nil
}

// GetRank answers a player's position in a competition from the cached
// scoreboard. A cold cache is filled by scoring the competition once.
func (d *competitionDomain) GetRank(
	ctx context.Context, req *model.GetCompetitionRankRequest,
) (*model.GetCompetitionRankResponse, error) {
	if req.CompetitionID == "" {
		return nil, errorx.New(errorx.BadRequest, "Competition id is required")
	}

	if req.Username == "" {
		return nil, errorx.New(errorx.BadRequest, "Username is required")
	}

	player, err := d.playerRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.PlayerNotFound, "Player %s is not tracked", req.Username)
		}

		xcontext.Logger(ctx).Errorf("Cannot get player %s: %v", req.Username, err)
		return nil, errorx.Unknown
	}

	key := common.RedisKeyCompetitionScoreboard(req.CompetitionID)
	cached, err := d.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot check scoreboard cache of %s: %v", req.CompetitionID, err)
	}

	if !cached {
		if _, err := d.scorer.Score(ctx, req.CompetitionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.NotFound, "Competition %s does not exist", req.CompetitionID)
			}

			xcontext.Logger(ctx).Errorf("Cannot score competition %s: %v", req.CompetitionID, err)
			return nil, errorx.Unknown
		}
	}

	rank, err := d.redisClient.ZRevRank(ctx, key, player.ID)
	if err != nil {
		return nil, errorx.New(errorx.NotFound,
			"Player %s has no ranked gain in competition %s", req.Username, req.CompetitionID)
	}

	top, err := d.redisClient.ZRevRangeWithScores(ctx, key, 0, topRankedLimit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot read scoreboard cache of %s: %v", req.CompetitionID, err)
		return nil, errorx.Unknown
	}

	resp := &model.GetCompetitionRankResponse{
		CompetitionID: req.CompetitionID,
		PlayerID:      player.ID,
		Rank:          int(rank) + 1,
		Top:           make([]model.RankedScore, 0, len(top)),
	}

	for _, z := range top {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}

		resp.Top = append(resp.Top, model.RankedScore{
			PlayerID: member,
			Gained:   int64(z.Score),
		})
	}

	return resp, nil
}
