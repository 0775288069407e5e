package testutil

import (
	"context"
	"reflect"
	"time"

	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/internal/repository"
	"github.com/xptrack-lab/backend/pkg/idutil"

	"github.com/google/uuid"
)

// SamplePlayer creates a player in database with randomized fields. The
// sample can be overwritten by non-zero fields of init.
func SamplePlayer(ctx context.Context, init *entity.Player) (entity.Player, error) {
	playerRepo := repository.NewPlayerRepository()

	sample := &entity.Player{
		Base:     entity.Base{ID: uuid.NewString()},
		Username: uuid.NewString(),
		Status:   entity.PlayerActive,
	}

	if init != nil {
		overwriteFields(sample, *init)
	}
	sample.DisplayName = sample.Username

	if err := playerRepo.Create(ctx, sample); err != nil {
		return *sample, err
	}
	return *sample, nil
}

// SampleSnapshot creates a snapshot of the player at the given time with
// every catalog metric unranked except the provided values.
func SampleSnapshot(
	ctx context.Context, playerID string, at time.Time, values entity.MetricValues,
) (entity.Snapshot, error) {
	snapshotRepo := repository.NewSnapshotRepository()

	sample := &entity.Snapshot{
		ID:        idutil.NextID(),
		PlayerID:  playerID,
		CreatedAt: at,
		Source:    entity.SnapshotSourceUpdate,
		Values:    FullValues(values),
	}

	if err := snapshotRepo.Create(ctx, sample); err != nil {
		return *sample, err
	}
	return *sample, nil
}

// FullValues fills every catalog metric as unranked, then applies the
// overrides.
func FullValues(overrides entity.MetricValues) entity.MetricValues {
	values := entity.MetricValues{}
	for _, metric := range entity.AllMetrics() {
		values[metric] = entity.MetricValue{
			Rank:  int(entity.UnrankedValue),
			Value: entity.UnrankedValue,
		}
	}

	for metric, value := range overrides {
		values[metric] = value
	}

	return values
}

// SampleCompetition creates a competition with an hour-long window around
// the given time.
func SampleCompetition(ctx context.Context, init *entity.Competition) (entity.Competition, error) {
	competitionRepo := repository.NewCompetitionRepository()

	now := time.Now()
	sample := &entity.Competition{
		Base:     entity.Base{ID: uuid.NewString()},
		Title:    uuid.NewString(),
		Metric:   entity.MetricOverall,
		StartsAt: now.Add(-time.Hour),
		EndsAt:   now.Add(time.Hour),
	}

	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := competitionRepo.Create(ctx, sample); err != nil {
		return *sample, err
	}
	return *sample, nil
}

func overwriteFields[T any](origin *T, overwrite T) {
	originValue := reflect.ValueOf(origin).Elem()
	overwriteValue := reflect.ValueOf(overwrite)

	for i := 0; i < overwriteValue.NumField(); i++ {
		overwriteField := overwriteValue.Field(i)
		if !overwriteField.Comparable() {
			continue
		}

		if overwriteField.Interface() != reflect.Zero(overwriteField.Type()).Interface() {
			originValue.Field(i).Set(overwriteField)
		}
	}
}
