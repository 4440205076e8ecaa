package interfaces

import "edgeproxy/domain"

// RouteMatcher resolves an inbound request path to a routing decision.
// Implemented by service.routeMatcher. Called from service.Dispatcher before
// resolving a cluster and balancing.
//
//go:generate moq -stub -out mock/route_matcher.go -pkg mock . RouteMatcher
type RouteMatcher interface {
	// Match returns the first Route whose prefix segment-matches path, or
	// (RouteMatchResult{}, false) when nothing matches. Never panics; an
	// unmatched path is an expected outcome, not an error.
	Match(path string) (domain.RouteMatchResult, bool)

	// MatchGRPCFallback returns a synthetic match against the configured
	// gRPC route (if any), treating path as the downstream path verbatim.
	// Used by Dispatcher's gRPC prefix fallback for HTTP/2 gRPC requests
	// whose path does not match the gRPC route's prefix.
	MatchGRPCFallback(path string) (domain.RouteMatchResult, bool)
}
