package service

import (
	"net/http"
	"sync"
	"sync/atomic"

	"edgeproxy/domain"
)

// roundRobinBalancer implements interfaces.LoadBalancer. It holds one
// monotonically-incremented counter per cluster, created lazily on first
// selection and mutated only by atomic.Int64.Add — the only mutable shared
// state in the core. Its lifetime is the lifetime of the balancer instance
// (process-wide).
type roundRobinBalancer struct {
	counters sync.Map // domain.ClusterID -> *atomic.Int64
}

// NewRoundRobinBalancer creates an empty balancer; counters are created on
// first Pick for a given cluster.
func NewRoundRobinBalancer() *roundRobinBalancer {
	return &roundRobinBalancer{}
}

// Pick atomically increments cluster's counter, takes it modulo the number
// of destinations (N is read once, at selection time, so a config change
// between selections changes N for the next call only), and rewraps a
// negative result into [0, N) to tolerate signed-counter wraparound.
// request is unused today; the parameter exists so a future strategy can
// inspect it without an interface change.
func (b *roundRobinBalancer) Pick(cluster domain.Cluster, _ *http.Request) (domain.Destination, error) {
	n := len(cluster.Destinations)
	if n == 0 {
		return domain.Destination{}, ErrEmptyCluster
	}

	counterAny, _ := b.counters.LoadOrStore(cluster.ID, new(atomic.Int64))
	counter := counterAny.(*atomic.Int64)

	next := counter.Add(1) - 1
	idx := next % int64(n)
	if idx < 0 {
		idx += int64(n)
	}
	return cluster.Destinations[idx], nil
}
