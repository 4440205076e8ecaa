package service

import (
	"strings"

	"edgeproxy/domain"
	"edgeproxy/helpers"
)

// routeMatcher implements interfaces.RouteMatcher with a linear scan over a
// small ordered route list rather than a routing tree, keeping first-match
// semantics obvious: routes are tried in configuration order, never sorted
// by prefix length.
type routeMatcher struct {
	routes  []domain.Route
	grpcIdx int // index into routes of the single gRPC route, or -1
}

// NewRouteMatcher copies routes (iteration order is preserved verbatim) and
// locates the gRPC route used by MatchGRPCFallback.
func NewRouteMatcher(routes []domain.Route) *routeMatcher {
	cp := make([]domain.Route, len(routes))
	copy(cp, routes)

	grpcIdx := -1
	for i, r := range cp {
		if r.Kind == domain.RouteGRPC {
			grpcIdx = i
			break
		}
	}

	return &routeMatcher{
		routes:  helpers.NilPanic(cp, "service.route_matcher.go: routes is required"),
		grpcIdx: grpcIdx,
	}
}

// Match returns the first route whose prefix segment-matches path: path
// equals the prefix exactly, or path begins with prefix + "/".
// Comparison is case-insensitive. The remainder is the portion of path
// strictly after the prefix, normalized to "/" when empty; the downstream
// path is the remainder when the route strips its prefix, otherwise the
// original full path.
func (m *routeMatcher) Match(path string) (domain.RouteMatchResult, bool) {
	for _, route := range m.routes {
		if !segmentMatch(path, route.Prefix) {
			continue
		}
		return buildMatch(route, path), true
	}
	return domain.RouteMatchResult{}, false
}

// MatchGRPCFallback returns a synthetic match against the single configured
// gRPC route, treating path verbatim as the downstream path. Returns false
// when no gRPC route is configured.
func (m *routeMatcher) MatchGRPCFallback(path string) (domain.RouteMatchResult, bool) {
	if m.grpcIdx < 0 {
		return domain.RouteMatchResult{}, false
	}
	route := m.routes[m.grpcIdx]
	remainder := path
	if remainder == "" {
		remainder = "/"
	}
	return domain.RouteMatchResult{
		Route:          route,
		Remainder:      remainder,
		DownstreamPath: path,
	}, true
}

// segmentMatch reports whether path is exactly prefix, or prefix followed by
// "/", comparing case-insensitively so that a prefix of "/api" never
// matches a path of "/apix".
func segmentMatch(path, prefix string) bool {
	if len(path) < len(prefix) {
		return false
	}
	if !strings.EqualFold(path[:len(prefix)], prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || rest[0] == '/'
}

// buildMatch computes RouteMatchResult.Remainder and .DownstreamPath for a
// winning route against path.
func buildMatch(route domain.Route, path string) domain.RouteMatchResult {
	remainder := path[len(route.Prefix):]
	if remainder == "" {
		remainder = "/"
	}

	downstream := path
	if route.StripPrefix {
		downstream = remainder
	}

	return domain.RouteMatchResult{
		Route:          route,
		Remainder:      remainder,
		DownstreamPath: downstream,
	}
}
