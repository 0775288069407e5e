package domain

import (
	"context"
	"errors"
	"time"

	"github.com/xptrack-lab/backend/internal/domain/efficiency"
	"github.com/xptrack-lab/backend/internal/domain/gains"
	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/internal/model"
	"github.com/xptrack-lab/backend/internal/repository"
	"github.com/xptrack-lab/backend/pkg/enum"
	"github.com/xptrack-lab/backend/pkg/errorx"
	"github.com/xptrack-lab/backend/pkg/xcontext"

	"gorm.io/gorm"
)

type StatisticDomain interface {
	GetDelta(ctx context.Context, req *model.GetDeltaRequest) (*model.GetDeltaResponse, error)
	GetRecords(ctx context.Context, req *model.GetRecordsRequest) (*model.GetRecordsResponse, error)
	GetEfficiency(ctx context.Context, req *model.GetEfficiencyRequest) (*model.GetEfficiencyResponse, error)
}

type statisticDomain struct {
	playerRepo           repository.PlayerRepository
	recordRepo           repository.RecordRepository
	snapshotRepo         repository.SnapshotRepository
	gainsCalculator      *gains.Calculator
	efficiencyCalculator *efficiency.Calculator
}

func NewStatisticDomain(
	playerRepo repository.PlayerRepository,
	recordRepo repository.RecordRepository,
	snapshotRepo repository.SnapshotRepository,
	gainsCalculator *gains.Calculator,
	efficiencyCalculator *efficiency.Calculator,
) StatisticDomain {
	return &statisticDomain{
		playerRepo:           playerRepo,
		recordRepo:           recordRepo,
		snapshotRepo:         snapshotRepo,
		gainsCalculator:      gainsCalculator,
		efficiencyCalculator: efficiencyCalculator,
	}
}

func (d *statisticDomain) GetDelta(
	ctx context.Context, req *model.GetDeltaRequest,
) (*model.GetDeltaResponse, error) {
	player, err := d.getPlayer(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	period, err := resolvePeriod(req.Period, req.StartDate, req.EndDate)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid period: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid period")
	}

	delta, err := d.gainsCalculator.ComputeOverPeriod(ctx, player.ID, period)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot compute delta of %s: %v", req.Username, err)
		return nil, errorx.Unknown
	}

	metricGains := make([]model.MetricGain, 0, len(delta.Gains))
	for _, gain := range delta.Gains {
		metricGains = append(metricGains, model.MetricGain{
			Metric:     string(gain.Metric),
			Gained:     gain.Gained,
			StartValue: gain.Start.Value,
			EndValue:   gain.End.Value,
			StartRank:  gain.Start.Rank,
			EndRank:    gain.End.Rank,
		})
	}

	return &model.GetDeltaResponse{
		Username: player.Username,
		StartsAt: delta.StartsAt,
		EndsAt:   delta.EndsAt,
		Gains:    metricGains,
	}, nil
}

func (d *statisticDomain) GetRecords(
	ctx context.Context, req *model.GetRecordsRequest,
) (*model.GetRecordsResponse, error) {
	player, err := d.getPlayer(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	filter := repository.GetListRecordFilter{PlayerID: player.ID}
	if req.Period != "" {
		period, err := enum.ToEnum[entity.PeriodName](req.Period)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid period %s", req.Period)
		}
		filter.Period = period
	}

	if req.Metric != "" {
		metric, err := enum.ToEnum[entity.Metric](req.Metric)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid metric %s", req.Metric)
		}
		filter.Metric = metric
	}

	records, err := d.recordRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get records of %s: %v", req.Username, err)
		return nil, errorx.Unknown
	}

	resp := &model.GetRecordsResponse{Records: make([]model.Record, 0, len(records))}
	for _, record := range records {
		value := float64(record.Value)
		if entity.IsVirtual(record.Metric) {
			value = efficiency.UnscaledHours(record.Value)
		}

		resp.Records = append(resp.Records, model.Record{
			Period:    string(record.Period),
			Metric:    string(record.Metric),
			Value:     value,
			UpdatedAt: record.UpdatedAt,
		})
	}

	return resp, nil
}

func (d *statisticDomain) GetEfficiency(
	ctx context.Context, req *model.GetEfficiencyRequest,
) (*model.GetEfficiencyResponse, error) {
	player, err := d.getPlayer(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	snapshot, err := d.snapshotRepo.GetLatest(ctx, player.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.GetEfficiencyResponse{Hours: map[string]float64{}}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get latest snapshot of %s: %v", req.Username, err)
		return nil, errorx.Unknown
	}

	hours := make(map[string]float64)
	for metric, h := range d.efficiencyCalculator.Hours(snapshot.Values) {
		hours[string(metric)] = h
	}

	return &model.GetEfficiencyResponse{
		Hours:    hours,
		TotalEHP: d.efficiencyCalculator.EHP(snapshot.Values),
		TotalEHB: d.efficiencyCalculator.EHB(snapshot.Values),
	}, nil
}

func (d *statisticDomain) getPlayer(ctx context.Context, username string) (*entity.Player, error) {
	player, err := d.playerRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.PlayerNotFound, "Player %s is not tracked", username)
		}

		xcontext.Logger(ctx).Errorf("Cannot get player %s: %v", username, err)
		return nil, errorx.Unknown
	}

	return player, nil
}

// resolvePeriod maps a request to a concrete window: a named period ending
// now, or a custom millisecond range when no name is given.
func resolvePeriod(name string, startMs, endMs int64) (entity.Period, error) {
	if name != "" {
		periodName, err := enum.ToEnum[entity.PeriodName](name)
		if err != nil {
			return entity.Period{}, err
		}

		return entity.NewNamedPeriod(periodName, time.Now())
	}

	return entity.NewCustomPeriod(time.UnixMilli(startMs), time.UnixMilli(endMs))
}
