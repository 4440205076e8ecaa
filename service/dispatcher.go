package service

import (
	"net/http"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"edgeproxy/domain"
	"edgeproxy/helpers"
	"edgeproxy/interfaces"
)

// Dispatcher is the single entry point every inbound request passes
// through: health checks, route matching (with the gRPC prefix fallback),
// cluster resolution, balancing and forwarding, in that order. It is the
// only http.Handler the listener registers.
type Dispatcher struct {
	config    interfaces.ConfigProvider
	matcher   interfaces.RouteMatcher
	balancer  interfaces.LoadBalancer
	forwarder interfaces.Forwarder
	logger    log.Logger
}

// NewDispatcher wires the four collaborators behind the dispatch algorithm.
func NewDispatcher(config interfaces.ConfigProvider, matcher interfaces.RouteMatcher, balancer interfaces.LoadBalancer, forwarder interfaces.Forwarder, logger log.Logger) *Dispatcher {
	return &Dispatcher{
		config:    helpers.NilPanic(config, "service.dispatcher.go: config is required"),
		matcher:   helpers.NilPanic(matcher, "service.dispatcher.go: matcher is required"),
		balancer:  helpers.NilPanic(balancer, "service.dispatcher.go: balancer is required"),
		forwarder: helpers.NilPanic(forwarder, "service.dispatcher.go: forwarder is required"),
		logger:    helpers.NilPanic(logger, "service.dispatcher.go: logger is required"),
	}
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if serveHealth(w, req) {
		return
	}

	cfg := d.config.Current()

	match, ok := d.matcher.Match(req.URL.Path)
	if isUnprefixedGRPC(req) && (!ok || match.Route.Kind != domain.RouteGRPC) {
		if fallback, found := d.matcher.MatchGRPCFallback(req.URL.Path); found {
			match, ok = fallback, true
		}
	}
	if !ok {
		d.writeRoutingError(w, req, ErrNoRouteMatch)
		return
	}

	cluster, ok := cfg.Cluster(match.Route.Cluster)
	if !ok {
		d.writeRoutingError(w, req, ErrClusterUnavailable)
		return
	}

	destination, err := d.balancer.Pick(cluster, req)
	if err != nil {
		d.writeRoutingError(w, req, err)
		return
	}

	d.forwarder.Forward(w, req, match, destination)
}

// isUnprefixedGRPC reports whether req looks like a gRPC call: HTTP/2
// framing and a "application/grpc" (or "application/grpc+...") content
// type. ServeHTTP applies the fallback to such a request when its path did
// not match the gRPC route by prefix.
func isUnprefixedGRPC(req *http.Request) bool {
	if req.ProtoMajor != 2 {
		return false
	}
	return strings.HasPrefix(req.Header.Get("Content-Type"), "application/grpc")
}

// serveHealth answers the two local health endpoints directly, without
// consulting routing, clusters or the forwarder. Returns true when it
// handled the request.
func serveHealth(w http.ResponseWriter, req *http.Request) bool {
	var body string
	switch req.URL.Path {
	case "/health/live":
		body = `{"status":"live"}`
	case "/health/ready":
		body = `{"status":"ready"}`
	default:
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
	return true
}

// writeRoutingError maps a dispatch-level sentinel to a wire status/body
// and logs the miss at warn level.
func (d *Dispatcher) writeRoutingError(w http.ResponseWriter, req *http.Request, err error) {
	status, body := routingErrorResponse(err)
	level.Warn(d.logger).Log("msg", "request not forwarded", "path", req.URL.Path, "status", status, "err", err)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
