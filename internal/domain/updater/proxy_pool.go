package updater

import (
	"context"
	"sync/atomic"

	"github.com/xptrack-lab/backend/config"
	"github.com/xptrack-lab/backend/internal/client"
	"github.com/xptrack-lab/backend/internal/entity"

	"golang.org/x/time/rate"
)

type egressIdentity struct {
	caller  client.HiscoresCaller
	limiter *rate.Limiter
}

// proxyPool funnels outbound fetches through a bounded set of egress
// identities. Identities rotate round-robin and each one enforces a
// minimum spacing between its requests, independent of how many workers
// are fetching.
type proxyPool struct {
	identities []egressIdentity
	next       uint64
}

// NewProxyPool builds the egress pool from configuration.
func NewProxyPool(cfg config.HiscoresConfigs) (Fetcher, error) {
	return newProxyPool(cfg)
}

func newProxyPool(cfg config.HiscoresConfigs) (*proxyPool, error) {
	addrs := cfg.Proxies
	if len(addrs) == 0 {
		// No proxies configured: a single direct identity still bounds
		// request spacing.
		addrs = []string{""}
	}

	pool := &proxyPool{}
	for _, addr := range addrs {
		caller, err := client.NewHiscoresCaller(cfg, addr)
		if err != nil {
			return nil, err
		}

		limit := rate.Inf
		if cfg.MinRequestSpacing > 0 {
			limit = rate.Every(cfg.MinRequestSpacing)
		}

		pool.identities = append(pool.identities, egressIdentity{
			caller:  caller,
			limiter: rate.NewLimiter(limit, 1),
		})
	}

	return pool, nil
}

// newCallerPool is a proxyPool over pre-built callers, used by tests.
func newCallerPool(spacing rate.Limit, callers ...client.HiscoresCaller) *proxyPool {
	pool := &proxyPool{}
	for _, caller := range callers {
		pool.identities = append(pool.identities, egressIdentity{
			caller:  caller,
			limiter: rate.NewLimiter(spacing, 1),
		})
	}

	return pool
}

// Fetch rotates to the next identity, waits out its spacing, and performs
// the request.
func (p *proxyPool) Fetch(ctx context.Context, username string) (entity.MetricValues, error) {
	index := (atomic.AddUint64(&p.next, 1) - 1) % uint64(len(p.identities))
	identity := p.identities[index]

	if err := identity.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return identity.caller.Fetch(ctx, username)
}

// Size is the number of egress identities, which bounds effective fetch
// concurrency.
func (p *proxyPool) Size() int {
	return len(p.identities)
}
