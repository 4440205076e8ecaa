package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgeproxy/domain"
)

func builtinRoutes() []domain.Route {
	return []domain.Route{
		domain.NewRoute("/api/", "api", domain.RouteHTTP, false),
		domain.NewRoute("/grpc/", "grpc", domain.RouteGRPC, true),
	}
}

func TestRouteMatcher_Match(t *testing.T) {
	t.Run("exact_prefix_matches", func(t *testing.T) {
		m := NewRouteMatcher(builtinRoutes())
		match, ok := m.Match("/api")
		require.True(t, ok)
		assert.Equal(t, domain.ClusterID("api"), match.Route.Cluster)
		assert.Equal(t, "/", match.Remainder)
		assert.Equal(t, "/api", match.DownstreamPath)
	})

	t.Run("segment_boundary_is_enforced", func(t *testing.T) {
		m := NewRouteMatcher(builtinRoutes())
		_, ok := m.Match("/apixyz")
		assert.False(t, ok)
	})

	t.Run("case_insensitive", func(t *testing.T) {
		m := NewRouteMatcher(builtinRoutes())
		_, ok := m.Match("/API/widgets")
		assert.True(t, ok)
	})

	t.Run("strip_prefix_rewrites_downstream_path", func(t *testing.T) {
		m := NewRouteMatcher(builtinRoutes())
		match, ok := m.Match("/grpc/pkg.Service/Method")
		require.True(t, ok)
		assert.Equal(t, "/pkg.Service/Method", match.DownstreamPath)
	})

	t.Run("no_strip_keeps_full_path", func(t *testing.T) {
		m := NewRouteMatcher(builtinRoutes())
		match, ok := m.Match("/api/widgets/1")
		require.True(t, ok)
		assert.Equal(t, "/api/widgets/1", match.DownstreamPath)
	})

	t.Run("first_match_wins_over_longer_prefix", func(t *testing.T) {
		routes := []domain.Route{
			domain.NewRoute("/a", "short", domain.RouteHTTP, false),
			domain.NewRoute("/a/b", "long", domain.RouteHTTP, false),
		}
		m := NewRouteMatcher(routes)
		match, ok := m.Match("/a/b/c")
		require.True(t, ok)
		assert.Equal(t, domain.ClusterID("short"), match.Route.Cluster, "configuration order decides, not longest prefix")
	})

	t.Run("unmatched_path_returns_false", func(t *testing.T) {
		m := NewRouteMatcher(builtinRoutes())
		_, ok := m.Match("/nowhere")
		assert.False(t, ok)
	})
}

func TestRouteMatcher_MatchGRPCFallback(t *testing.T) {
	t.Run("falls_back_to_configured_grpc_route", func(t *testing.T) {
		m := NewRouteMatcher(builtinRoutes())
		match, ok := m.MatchGRPCFallback("/pkg.Service/Method")
		require.True(t, ok)
		assert.Equal(t, domain.ClusterID("grpc"), match.Route.Cluster)
		assert.Equal(t, "/pkg.Service/Method", match.DownstreamPath)
	})

	t.Run("no_grpc_route_configured_returns_false", func(t *testing.T) {
		m := NewRouteMatcher([]domain.Route{
			domain.NewRoute("/api/", "api", domain.RouteHTTP, false),
		})
		_, ok := m.MatchGRPCFallback("/pkg.Service/Method")
		assert.False(t, ok)
	})
}
