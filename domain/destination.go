package domain

import "net/url"

// Destination is one concrete backend within a Cluster: a unique identifier
// and the base URL the forwarder combines with a downstream path to build
// the upstream request URL. Immutable after construction; its lifetime is
// the lifetime of the ProxyConfig snapshot that holds it.
type Destination struct {
	ID      string
	BaseURL *url.URL
}

// NewDestination parses rawBaseURL and returns a Destination. The identifier
// need only be unique within its Cluster; callers that do not care about a
// stable identifier may pass the raw URL itself.
//
// Returns an error if rawBaseURL does not parse as an absolute URL (scheme
// and host both required) so that configuration errors surface at startup
// rather than at first request.
func NewDestination(id, rawBaseURL string) (Destination, error) {
	u, err := url.Parse(rawBaseURL)
	if err != nil {
		return Destination{}, err
	}
	if u.Scheme == "" || u.Host == "" {
		return Destination{}, &InvalidDestinationError{RawURL: rawBaseURL, Reason: "must be an absolute URL with scheme and host"}
	}
	return Destination{ID: id, BaseURL: u}, nil
}

// InvalidDestinationError is returned by NewDestination when rawBaseURL does
// not describe an absolute, usable base URL.
type InvalidDestinationError struct {
	RawURL string
	Reason string
}

func (e *InvalidDestinationError) Error() string {
	return "invalid destination " + e.RawURL + ": " + e.Reason
}
