package interfaces

import (
	"net/http"

	"edgeproxy/domain"
)

// Forwarder executes the outbound HTTP exchange on behalf of an inbound
// request and streams the response back. Implemented by
// service.requestForwarder. Called from service.Dispatcher once a Route,
// Cluster and Destination have all been resolved.
//
//go:generate moq -stub -out mock/forwarder.go -pkg mock . Forwarder
type Forwarder interface {
	// Forward streams req to destination per match's downstream path and
	// relays the response (status, headers, body, trailers) onto w. Never
	// returns an error the caller needs to act on: transport and
	// cancellation failures are handled internally (a 502 is written, or
	// the response is silently aborted).
	Forward(w http.ResponseWriter, req *http.Request, match domain.RouteMatchResult, destination domain.Destination)
}
