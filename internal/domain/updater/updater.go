package updater

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/xptrack-lab/backend/internal/client"
	"github.com/xptrack-lab/backend/internal/domain/efficiency"
	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/internal/repository"
	"github.com/xptrack-lab/backend/pkg/errorx"
	"github.com/xptrack-lab/backend/pkg/idutil"
	"github.com/xptrack-lab/backend/pkg/pubsub"
	"github.com/xptrack-lab/backend/pkg/xcontext"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// PlayerUpdatedTopic carries PlayerUpdatedEvent messages keyed by player
// id, so downstream recomputation of one player stays serialized while
// independent players process in parallel.
const PlayerUpdatedTopic = "player_updated"

type PlayerUpdatedEvent struct {
	PlayerID   string `json:"player_id"`
	SnapshotID int64  `json:"snapshot_id"`

	// Attempt counts recompute deliveries of this event. The publisher
	// always sends zero; the subscriber republishes with an incremented
	// attempt when a recompute job fails.
	Attempt int `json:"attempt,omitempty"`
}

// Fetcher abstracts the rate-limited egress pool in front of the external
// source.
type Fetcher interface {
	Fetch(ctx context.Context, username string) (entity.MetricValues, error)
}

// Updater is the update pipeline: it accepts per-player update requests,
// fetches fresh data through a bounded egress pool, validates it, commits
// an immutable snapshot, and announces the commit for downstream
// recomputation. At most one update per player is ever in flight; a
// concurrent request for the same player is rejected, not queued.
type Updater struct {
	playerRepo   repository.PlayerRepository
	snapshotRepo repository.SnapshotRepository
	fetcher      Fetcher
	calculator   *efficiency.Calculator
	publisher    pubsub.Publisher

	inflight *xsync.MapOf[string, *updateRequest]
	queue    chan *updateRequest

	workers      int
	maxAttempts  int
	retryBackoff time.Duration
	maxBackoff   time.Duration

	// decreaseTolerance is the fraction of overall experience that may
	// disappear between snapshots before the player is flagged.
	decreaseTolerance float64
}

type Options struct {
	Workers           int
	QueueSize         int
	MaxAttempts       int
	RetryBackoff      time.Duration
	MaxBackoff        time.Duration
	DecreaseTolerance float64
}

func New(
	playerRepo repository.PlayerRepository,
	snapshotRepo repository.SnapshotRepository,
	fetcher Fetcher,
	calculator *efficiency.Calculator,
	publisher pubsub.Publisher,
	opts Options,
) *Updater {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}

	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}

	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = time.Second
	}

	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 30 * time.Second
	}

	return &Updater{
		playerRepo:        playerRepo,
		snapshotRepo:      snapshotRepo,
		fetcher:           fetcher,
		calculator:        calculator,
		publisher:         publisher,
		inflight:          xsync.NewMapOf[*updateRequest](),
		queue:             make(chan *updateRequest, opts.QueueSize),
		workers:           opts.Workers,
		maxAttempts:       opts.MaxAttempts,
		retryBackoff:      opts.RetryBackoff,
		maxBackoff:        opts.MaxBackoff,
		decreaseTolerance: opts.DecreaseTolerance,
	}
}

// Start launches the worker pool. Workers run until ctx is done; requests
// already being processed run to completion.
func (u *Updater) Start(ctx context.Context) {
	xcontext.Logger(ctx).Infof("Updater started with %d workers", u.workers)
	for i := 0; i < u.workers; i++ {
		go u.worker(ctx)
	}
}

// RequestUpdate enqueues an update of the given username, registering the
// player on first sight. It returns the request handle on acceptance. A
// duplicate of an in-flight update returns errorx.UpdateInProgress; the
// player's active update is unaffected.
func (u *Updater) RequestUpdate(ctx context.Context, username string) (*updateRequest, error) {
	player, err := u.playerRepo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get player %s: %v", username, err)
			return nil, errorx.Unknown
		}

		player = &entity.Player{
			Base:        entity.Base{ID: uuid.NewString()},
			Username:    username,
			DisplayName: username,
			Status:      entity.PlayerActive,
		}
		if err := u.playerRepo.Create(ctx, player); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot register player %s: %v", username, err)
			return nil, errorx.Unknown
		}
	}

	blocked := []entity.PlayerStatus{entity.PlayerBanned, entity.PlayerArchived}
	if slices.Contains(blocked, player.Status) {
		return nil, errorx.New(errorx.PlayerBlocked, "Player %s is %s", username, player.Status)
	}

	req := newUpdateRequest(player.ID, player.Username)
	if _, loaded := u.inflight.LoadOrStore(player.ID, req); loaded {
		return nil, errorx.New(errorx.UpdateInProgress, "An update of %s is already in progress", username)
	}

	select {
	case u.queue <- req:
		return req, nil
	default:
		u.inflight.Delete(player.ID)
		return nil, errorx.New(errorx.TooManyRequests, "Update queue is full")
	}
}

// Cancel aborts a queued update of the player. An update that already
// started fetching runs to completion.
func (u *Updater) Cancel(playerID string) bool {
	req, ok := u.inflight.Load(playerID)
	if !ok {
		return false
	}

	return req.Cancel()
}

// State reports the in-flight update state of a player, if any.
func (u *Updater) State(playerID string) (UpdateState, bool) {
	req, ok := u.inflight.Load(playerID)
	if !ok {
		return "", false
	}

	return req.State(), true
}

func (u *Updater) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-u.queue:
			u.process(ctx, req)
		}
	}
}

func (u *Updater) process(ctx context.Context, req *updateRequest) {
	defer u.inflight.Delete(req.playerID)
	defer close(req.done)

	if !req.begin() {
		return
	}

	values, ok := u.fetch(ctx, req)
	if !ok {
		return
	}

	req.setState(StateParsed)
	prev := u.previousSnapshot(ctx, req)
	u.validate(ctx, req, prev, values)

	if u.calculator != nil {
		u.embedEfficiency(values)
	}

	u.commit(ctx, req, prev, values)
}

func (u *Updater) previousSnapshot(ctx context.Context, req *updateRequest) *entity.Snapshot {
	prev, err := u.snapshotRepo.GetLatest(ctx, req.playerID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get previous snapshot of %s: %v", req.username, err)
		}

		return nil
	}

	return prev
}

// fetch drives the Fetching state with bounded exponential backoff.
// Transport and upstream errors retry; a confirmed missing player is
// terminal and excludes the player from automatic updates.
func (u *Updater) fetch(ctx context.Context, req *updateRequest) (entity.MetricValues, bool) {
	for {
		req.attempts++
		req.setState(StateFetching)

		values, err := u.fetcher.Fetch(ctx, req.username)
		if err == nil {
			return values, true
		}

		if errors.Is(err, client.ErrPlayerNotFound) {
			if err := u.playerRepo.UpdateStatus(ctx, req.playerID, entity.PlayerBanned); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot mark player %s banned: %v", req.username, err)
			}

			u.fail(ctx, req, "player not found on the hiscores")
			return nil, false
		}

		var transient *client.TransientError
		if errors.As(err, &transient) && req.attempts < u.maxAttempts {
			backoff := u.retryBackoff << (req.attempts - 1)
			if backoff > u.maxBackoff {
				backoff = u.maxBackoff
			}

			xcontext.Logger(ctx).Warnf(
				"Fetch of %s failed (attempt %d/%d), retrying in %s: %v",
				req.username, req.attempts, u.maxAttempts, backoff, err)

			select {
			case <-ctx.Done():
				u.fail(ctx, req, "updater is shutting down")
				return nil, false
			case <-time.After(backoff):
			}

			continue
		}

		u.fail(ctx, req, err.Error())
		return nil, false
	}
}

// validate compares the fetched values with the previous snapshot. A
// decrease beyond the configured tolerance flags the player for review but
// never rejects the data: the snapshot commits and downstream consumers
// handle the negative deltas.
func (u *Updater) validate(
	ctx context.Context, req *updateRequest, prev *entity.Snapshot, values entity.MetricValues,
) {
	if u.decreaseTolerance <= 0 || prev == nil {
		return
	}

	prevOverall := prev.Get(entity.MetricOverall)
	newOverall := values[entity.MetricOverall]
	if prevOverall.IsUnranked() || newOverall.IsUnranked() {
		return
	}

	allowed := int64(float64(prevOverall.Value) * (1 - u.decreaseTolerance))
	if newOverall.Value < allowed {
		xcontext.Logger(ctx).Warnf(
			"Player %s overall dropped from %d to %d, flagging",
			req.username, prevOverall.Value, newOverall.Value)

		if err := u.playerRepo.UpdateStatus(ctx, req.playerID, entity.PlayerFlagged); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot flag player %s: %v", req.username, err)
		}
	}
}

// embedEfficiency stores the derived EHP/EHB values into the snapshot so
// deltas and records cover virtual metrics like any other.
func (u *Updater) embedEfficiency(values entity.MetricValues) {
	values[entity.MetricEHP] = entity.MetricValue{
		Rank:  int(entity.UnrankedValue),
		Value: efficiency.ScaledHours(u.calculator.EHP(values)),
	}
	values[entity.MetricEHB] = entity.MetricValue{
		Rank:  int(entity.UnrankedValue),
		Value: efficiency.ScaledHours(u.calculator.EHB(values)),
	}
}

func (u *Updater) commit(
	ctx context.Context, req *updateRequest, prev *entity.Snapshot, values entity.MetricValues,
) {
	// The snapshot timestamp comes from its own snowflake id, so timestamp
	// order and id order can never disagree.
	id := idutil.NextID()
	now := idutil.TimeOfID(id)
	snapshot := &entity.Snapshot{
		ID:        id,
		PlayerID:  req.playerID,
		CreatedAt: now,
		Source:    entity.SnapshotSourceUpdate,
		Values:    values,
	}

	if err := u.snapshotRepo.Create(ctx, snapshot); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit snapshot of %s: %v", req.username, err)
		u.fail(ctx, req, "cannot persist snapshot")
		return
	}

	if err := u.playerRepo.SetLastUpdated(ctx, req.playerID, now); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot set last updated of %s: %v", req.username, err)
	}

	if prev == nil || values[entity.MetricOverall].Value > prev.Get(entity.MetricOverall).Value {
		if err := u.playerRepo.SetLastChanged(ctx, req.playerID, now); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot set last changed of %s: %v", req.username, err)
		}
	}

	req.setState(StateCommitted)

	// The snapshot is committed; a failing downstream job never rolls it
	// back and is retried independently by the subscriber.
	if u.publisher != nil {
		msg, err := json.Marshal(PlayerUpdatedEvent{
			PlayerID:   req.playerID,
			SnapshotID: snapshot.ID,
		})
		if err == nil {
			err = u.publisher.Publish(ctx, PlayerUpdatedTopic, &pubsub.Pack{
				Key: []byte(req.playerID),
				Msg: msg,
			})
		}

		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot publish update of %s: %v", req.username, err)
		}
	}
}

func (u *Updater) fail(ctx context.Context, req *updateRequest, reason string) {
	req.failReason = reason
	req.setState(StateFailed)
	xcontext.Logger(ctx).Infof("Update of %s failed: %s", req.username, reason)
}
