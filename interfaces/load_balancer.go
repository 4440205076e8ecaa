package interfaces

import (
	"net/http"

	"edgeproxy/domain"
)

// LoadBalancer picks one Destination from a Cluster per call. The sole
// provided strategy is round-robin (service.roundRobinBalancer); the
// request parameter exists to accommodate future strategies (e.g.
// sticky-by-header) without changing this interface.
//
//go:generate moq -stub -out mock/load_balancer.go -pkg mock . LoadBalancer
type LoadBalancer interface {
	// Pick returns the next Destination for cluster. Returns
	// service.ErrEmptyCluster when cluster has zero Destinations; the
	// dispatcher maps that to a 502 rather than letting it reach the
	// forwarder.
	Pick(cluster domain.Cluster, r *http.Request) (domain.Destination, error)
}
