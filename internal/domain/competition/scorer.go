package competition

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/xptrack-lab/backend/internal/common"
	"github.com/xptrack-lab/backend/internal/domain/gains"
	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/internal/repository"
	"github.com/xptrack-lab/backend/pkg/xcontext"
	"github.com/xptrack-lab/backend/pkg/xredis"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Standing is one participant's scored result inside a competition window.
type Standing struct {
	PlayerID string
	Username string
	TeamName string

	// RegisteredAt is the player's account registration time, not the
	// enrollment time. It breaks gain ties.
	RegisteredAt time.Time

	// Gained is nil when the participant had no ranked snapshot pair inside
	// the window. Such participants are still listed and sort last.
	Gained *int64

	// PartialCoverage marks participants whose tracking began after the
	// window opened; their gain starts from their first-ever snapshot.
	PartialCoverage bool
}

// TeamStanding aggregates member gains under one team name.
type TeamStanding struct {
	TeamName     string
	Gained       int64
	registeredAt time.Time
}

// Scoreboard is the full ranked outcome of one competition.
type Scoreboard struct {
	Competition *entity.Competition
	EndsAt      time.Time
	Standings   []Standing
	Teams       []TeamStanding
}

// Scorer ranks competition participants by their gain of the competition
// metric over the window.
type Scorer struct {
	competitionRepo repository.CompetitionRepository
	snapshotRepo    repository.SnapshotRepository
	redisClient     xredis.Client
}

func NewScorer(
	competitionRepo repository.CompetitionRepository,
	snapshotRepo repository.SnapshotRepository,
	redisClient xredis.Client,
) *Scorer {
	return &Scorer{
		competitionRepo: competitionRepo,
		snapshotRepo:    snapshotRepo,
		redisClient:     redisClient,
	}
}

// Score computes the scoreboard of a competition as of now. Participant
// histories are loaded concurrently; ranking is descending by gain with
// earlier registration breaking ties.
func (s *Scorer) Score(ctx context.Context, competitionID string) (*Scoreboard, error) {
	competition, err := s.competitionRepo.GetByID(ctx, competitionID)
	if err != nil {
		return nil, err
	}

	participations, err := s.competitionRepo.GetParticipations(ctx, competitionID)
	if err != nil {
		return nil, err
	}

	endsAt := competition.EndsAt
	if now := time.Now(); now.Before(endsAt) {
		endsAt = now
	}

	standings := make([]Standing, len(participations))

	eg, egCtx := errgroup.WithContext(ctx)
	for i := range participations {
		i := i
		p := participations[i]
		eg.Go(func() error {
			standing, err := s.scoreParticipant(egCtx, competition, &p, endsAt)
			if err != nil {
				return err
			}

			standings[i] = standing
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sortStandings(standings)

	scoreboard := &Scoreboard{
		Competition: competition,
		EndsAt:      endsAt,
		Standings:   standings,
		Teams:       teamStandings(standings),
	}

	s.cacheScoreboard(ctx, scoreboard)
	return scoreboard, nil
}

func (s *Scorer) scoreParticipant(
	ctx context.Context,
	competition *entity.Competition,
	participation *entity.Participation,
	endsAt time.Time,
) (Standing, error) {
	standing := Standing{
		PlayerID:     participation.PlayerID,
		Username:     participation.Player.Username,
		TeamName:     participation.TeamName.String,
		RegisteredAt: participation.Player.CreatedAt,
	}

	end, err := s.snapshotRepo.GetLatestBefore(ctx, participation.PlayerID, endsAt)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return standing, nil
		}

		return Standing{}, err
	}

	start, err := s.snapshotRepo.GetLatestBefore(ctx, participation.PlayerID, competition.StartsAt)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Standing{}, err
		}

		// Tracking began after the window opened: score from the first
		// snapshot instead of disqualifying.
		start, err = s.snapshotRepo.GetFirst(ctx, participation.PlayerID)
		if err != nil {
			return Standing{}, err
		}

		standing.PartialCoverage = true
	}

	delta := gains.Compute(start, end)
	for _, gain := range delta.Gains {
		if gain.Metric == competition.Metric {
			standing.Gained = gain.Gained
			break
		}
	}

	return standing, nil
}

func sortStandings(standings []Standing) {
	sort.SliceStable(standings, func(a, b int) bool {
		ga, gb := standings[a].Gained, standings[b].Gained
		switch {
		case ga == nil && gb == nil:
			return standings[a].RegisteredAt.Before(standings[b].RegisteredAt)
		case ga == nil:
			return false
		case gb == nil:
			return true
		case *ga != *gb:
			return *ga > *gb
		default:
			return standings[a].RegisteredAt.Before(standings[b].RegisteredAt)
		}
	})
}

func teamStandings(standings []Standing) []TeamStanding {
	totals := make(map[string]*TeamStanding)
	for _, standing := range standings {
		if standing.TeamName == "" {
			continue
		}

		team, ok := totals[standing.TeamName]
		if !ok {
			team = &TeamStanding{
				TeamName:     standing.TeamName,
				registeredAt: standing.RegisteredAt,
			}
			totals[standing.TeamName] = team
		}

		if standing.Gained != nil {
			team.Gained += *standing.Gained
		}

		if standing.RegisteredAt.Before(team.registeredAt) {
			team.registeredAt = standing.RegisteredAt
		}
	}

	teams := make([]TeamStanding, 0, len(totals))
	for _, team := range totals {
		teams = append(teams, *team)
	}

	sort.SliceStable(teams, func(a, b int) bool {
		if teams[a].Gained != teams[b].Gained {
			return teams[a].Gained > teams[b].Gained
		}

		return teams[a].registeredAt.Before(teams[b].registeredAt)
	})

	return teams
}

func (s *Scorer) cacheScoreboard(ctx context.Context, scoreboard *Scoreboard) {
	if s.redisClient == nil {
		return
	}

	key := common.RedisKeyCompetitionScoreboard(scoreboard.Competition.ID)
	for _, standing := range scoreboard.Standings {
		if standing.Gained == nil {
			continue
		}

		err := s.redisClient.ZAdd(ctx, key, redis.Z{
			Member: standing.PlayerID,
			Score:  float64(*standing.Gained),
		})
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot cache scoreboard of %s: %v", scoreboard.Competition.ID, err)
			return
		}
	}
}
