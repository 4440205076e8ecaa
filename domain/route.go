package domain

import (
	"strconv"
	"strings"
)

// RouteKind distinguishes an ordinary HTTP/1.1-or-HTTP/2 route from a
// gRPC-over-HTTP/2 route; the forwarder uses it to pick the outbound HTTP
// version policy.
type RouteKind string

const (
	RouteHTTP RouteKind = "http"
	RouteGRPC RouteKind = "grpc"
)

// Route maps a path prefix to a Cluster. Prefix is normalized to start with
// "/" and, for prefixes longer than one character, to not end with "/" (so
// "/api/" becomes "/api" and segment matching is unambiguous). Order within
// ProxyConfig.Routes is significant: the matcher uses first-match.
type Route struct {
	Prefix      string
	Cluster     ClusterID
	Kind        RouteKind
	StripPrefix bool
}

// NormalizePrefix trims the one-character-or-longer trailing slash and
// guarantees a leading slash.
func NormalizePrefix(prefix string) string {
	p := strings.TrimSpace(prefix)
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}

// NewRoute builds a Route with a normalized prefix.
func NewRoute(prefix string, cluster ClusterID, kind RouteKind, stripPrefix bool) Route {
	return Route{
		Prefix:      NormalizePrefix(prefix),
		Cluster:     cluster,
		Kind:        kind,
		StripPrefix: stripPrefix,
	}
}

// RouteMatchResult is the outcome of a successful Route match: the winning
// Route, the remainder of the path strictly after the prefix (normalized to
// "/" when empty), and the downstream path the forwarder appends to the
// destination's base URL — either Remainder (when Route.StripPrefix) or the
// original full path.
type RouteMatchResult struct {
	Route          Route
	Remainder      string
	DownstreamPath string
}

// RouteConfigError is returned when a Route fails validation. Index is the
// 0-based position in ProxyConfig.Routes, or -1 when the error is not
// attributable to a specific route.
type RouteConfigError struct {
	Index  int
	Reason string
}

func (e *RouteConfigError) Error() string {
	return "route[" + strconv.Itoa(e.Index) + "]: " + e.Reason
}

// validateRoute checks the invariants NewRoute alone cannot enforce: a
// non-empty prefix and a non-empty cluster reference. Kind defaults are the
// caller's responsibility (service.routeMatcher treats "" as RouteHTTP).
func validateRoute(index int, r Route) error {
	if r.Prefix == "" {
		return &RouteConfigError{Index: index, Reason: "prefix must be non-empty"}
	}
	if r.Prefix[0] != '/' {
		return &RouteConfigError{Index: index, Reason: "prefix must start with /"}
	}
	if len(r.Prefix) > 1 && strings.HasSuffix(r.Prefix, "/") {
		return &RouteConfigError{Index: index, Reason: "prefix longer than one character must not end with /"}
	}
	if r.Cluster == "" {
		return &RouteConfigError{Index: index, Reason: "cluster must be non-empty"}
	}
	switch r.Kind {
	case "", RouteHTTP, RouteGRPC:
	default:
		return &RouteConfigError{Index: index, Reason: "kind must be http|grpc"}
	}
	return nil
}
