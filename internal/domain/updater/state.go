package updater

import (
	"sync/atomic"
	"time"

	"github.com/xptrack-lab/backend/pkg/enum"
)

// UpdateState is the lifecycle of one update request.
type UpdateState string

var (
	StateQueued    = enum.New(UpdateState("queued"), "queued")
	StateCancelled = enum.New(UpdateState("cancelled"), "cancelled")
	StateFetching  = enum.New(UpdateState("fetching"), "fetching")
	StateParsed    = enum.New(UpdateState("parsed"), "parsed")
	StateCommitted = enum.New(UpdateState("committed"), "committed")
	StateFailed    = enum.New(UpdateState("failed"), "failed")
)

// updateRequest carries one player's update through the pipeline. The
// bounded attempt counter lives here as state instead of call-stack depth.
type updateRequest struct {
	playerID string
	username string

	state    atomic.Value // UpdateState
	attempts int

	enqueuedAt time.Time
	done       chan struct{}

	// failReason is set before done closes when state is StateFailed.
	failReason string
}

func newUpdateRequest(playerID, username string) *updateRequest {
	req := &updateRequest{
		playerID:   playerID,
		username:   username,
		enqueuedAt: time.Now(),
		done:       make(chan struct{}),
	}
	req.state.Store(StateQueued)
	return req
}

func (r *updateRequest) State() UpdateState {
	return r.state.Load().(UpdateState)
}

func (r *updateRequest) setState(state UpdateState) {
	r.state.Store(state)
}

// begin claims the request for processing. It fails when the request was
// cancelled while queued.
func (r *updateRequest) begin() bool {
	return r.state.CompareAndSwap(StateQueued, StateFetching)
}

// Cancel aborts the request if it has not started fetching. The swap races
// against begin on the same state word, so exactly one of them wins: a
// request reported cancelled can never also run, and a request that began
// fetching runs to completion.
func (r *updateRequest) Cancel() bool {
	return r.state.CompareAndSwap(StateQueued, StateCancelled)
}

// Done closes once the request reaches Committed or Failed, or is
// cancelled while still queued.
func (r *updateRequest) Done() <-chan struct{} {
	return r.done
}
