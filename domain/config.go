package domain

import "strings"

// ProxyConfig is the immutable, shared configuration snapshot: an ordered
// list of Routes and a case-insensitive mapping from cluster identifier to
// Cluster. All request handlers read the same snapshot; none mutate it.
type ProxyConfig struct {
	Routes   []Route
	clusters map[string]Cluster
}

// NewProxyConfig validates and builds a ProxyConfig from an ordered route
// list and a cluster list. Invariants enforced here:
//   - every Route's Cluster resolves in clusters (case-insensitive);
//   - no two Clusters share an identifier (case-insensitive).
//
// A Cluster with zero Destinations is accepted — see Cluster's doc comment —
// so this never rejects an externally-assembled config purely for being
// momentarily short a destination.
func NewProxyConfig(routes []Route, clusters []Cluster) (ProxyConfig, error) {
	byID := make(map[string]Cluster, len(clusters))
	for _, c := range clusters {
		key := strings.ToLower(string(c.ID))
		if key == "" {
			return ProxyConfig{}, &RouteConfigError{Index: -1, Reason: "cluster identifier must be non-empty"}
		}
		if _, dup := byID[key]; dup {
			return ProxyConfig{}, &RouteConfigError{Index: -1, Reason: "duplicate cluster identifier " + string(c.ID)}
		}
		byID[key] = c
	}
	for i, r := range routes {
		if err := validateRoute(i, r); err != nil {
			return ProxyConfig{}, err
		}
		if _, ok := byID[strings.ToLower(string(r.Cluster))]; !ok {
			return ProxyConfig{}, &RouteConfigError{Index: i, Reason: "references unknown cluster " + string(r.Cluster)}
		}
	}
	return ProxyConfig{Routes: routes, clusters: byID}, nil
}

// Cluster looks up a Cluster by identifier, case-insensitively.
func (c ProxyConfig) Cluster(id ClusterID) (Cluster, bool) {
	cl, ok := c.clusters[strings.ToLower(string(id))]
	return cl, ok
}
