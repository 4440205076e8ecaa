package domain

// ClusterID identifies a Cluster; comparisons against a ProxyConfig's
// cluster map are case-insensitive (see ProxyConfig.Cluster).
type ClusterID string

// Cluster is a named, ordered group of equivalent Destinations. Order is
// significant: it defines the rotation order the round-robin balancer walks.
// Immutable after construction.
//
// A Cluster with zero Destinations is constructible — the load balancer
// rejects it with service.ErrEmptyCluster and service.Dispatcher surfaces
// that as a 502 at request time, before the forwarder is reached, instead of
// the proxy refusing to start, so that a cluster whose destinations are
// removed by an external process does not take the whole proxy down.
type Cluster struct {
	ID           ClusterID
	Destinations []Destination
}
