package service

import "errors"

// ErrNoRouteMatch is returned by Dispatcher when no route prefix matches the
// inbound path. Maps to 404.
var ErrNoRouteMatch = errors.New("no matching route")

// ErrClusterUnavailable is returned by Dispatcher when a route's cluster
// identifier does not resolve in the active ProxyConfig. Maps to 502.
var ErrClusterUnavailable = errors.New("cluster unavailable")

// ErrEmptyCluster is returned by the load balancer when the resolved
// cluster has zero destinations. Dispatcher maps it to the same 502 as
// ErrClusterUnavailable.
var ErrEmptyCluster = errors.New("cluster has no destinations")

// routingErrorResponse maps the dispatcher-level sentinel errors above to
// a wire-level status code and textual body, table-driven via errors.Is.
func routingErrorResponse(err error) (status int, body string) {
	switch {
	case errors.Is(err, ErrNoRouteMatch):
		return 404, "No matching route"
	case errors.Is(err, ErrClusterUnavailable), errors.Is(err, ErrEmptyCluster):
		return 502, "Cluster unavailable"
	default:
		return 502, "Bad Gateway"
	}
}
