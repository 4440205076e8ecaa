package service

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"

	"golang.org/x/net/http2"
)

// forcedHTTP2Key marks a request context so upstreamTransport routes it
// through the HTTP/2-only round tripper instead of the negotiate-and-allow-
// downgrade one.
type forcedHTTP2Key struct{}

func withForceHTTP2(ctx context.Context) context.Context {
	return context.WithValue(ctx, forcedHTTP2Key{}, true)
}

func isForcedHTTP2(ctx context.Context) bool {
	v, _ := ctx.Value(forcedHTTP2Key{}).(bool)
	return v
}

// maxHTTP1Key marks a request context so upstreamTransport caps the
// outbound version at HTTP/1.1, never letting ALPN negotiate HTTP/2 on its
// own initiative.
type maxHTTP1Key struct{}

func withMaxHTTP1(ctx context.Context) context.Context {
	return context.WithValue(ctx, maxHTTP1Key{}, true)
}

func isMaxHTTP1(ctx context.Context) bool {
	v, _ := ctx.Value(maxHTTP1Key{}).(bool)
	return v
}

// upstreamTransport is the one shared, pooled http.RoundTripper: a single
// instance serves both HTTP and gRPC routes by switching, per request,
// between:
//
//   - negotiated: a plain *http.Transport. Over TLS it negotiates HTTP/2 via
//     ALPN and falls back to HTTP/1.1 automatically — "this version or
//     lower" when the inbound request already arrived as HTTP/2.
//   - capped: a plain *http.Transport with ALPN's HTTP/2 upgrade path
//     disabled (TLSNextProto set to an empty, non-nil map), used when the
//     inbound request arrived as HTTP/1.1 — "this version or lower" must
//     not silently become an upgrade just because the destination happens
//     to speak HTTP/2.
//   - forcedH2C / forcedH2TLS: *http2.Transport instances with no HTTP/1.1
//     fallback — "exactly this version or higher" — used for gRPC routes,
//     which must always ride HTTP/2 framing. forcedH2C additionally speaks
//     h2c prior-knowledge for plaintext destinations (AllowHTTP plus a
//     DialTLSContext override that skips the TLS handshake); forcedH2TLS
//     is the unmodified http2.Transport for gRPC destinations that do
//     terminate TLS.
//
// No automatic redirects, cookie jar or response decompression live here —
// those are either absent (no jar, no redirect policy: both require an
// *http.Client, constructed by NewUpstreamClient with CheckRedirect returning
// http.ErrUseLastResponse and no Jar) or explicitly disabled
// (DisableCompression) so the client sees exactly what the backend sent.
type upstreamTransport struct {
	negotiated  *http.Transport
	capped      *http.Transport
	forcedH2C   *http2.Transport
	forcedH2TLS *http2.Transport
}

func newUpstreamTransport() *upstreamTransport {
	return &upstreamTransport{
		negotiated: &http.Transport{
			DisableCompression: true,
		},
		capped: &http.Transport{
			DisableCompression: true,
			// A non-nil, empty map disables http.Transport's built-in
			// "h2" ALPN upgrade entirely, unlike a nil map which lets
			// net/http install its default upgrader.
			TLSNextProto: map[string]func(authority string, c *tls.Conn) http.RoundTripper{},
		},
		forcedH2C: &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
			DisableCompression: true,
		},
		forcedH2TLS: &http2.Transport{
			DisableCompression: true,
		},
	}
}

func (t *upstreamTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	switch {
	case isForcedHTTP2(req.Context()):
		if req.URL.Scheme == "https" {
			return t.forcedH2TLS.RoundTrip(req)
		}
		return t.forcedH2C.RoundTrip(req)
	case isMaxHTTP1(req.Context()):
		return t.capped.RoundTrip(req)
	default:
		return t.negotiated.RoundTrip(req)
	}
}

// NewUpstreamClient builds the shared *http.Client used for every outbound
// call: version policy is capped per request by the forwarder (forced
// HTTP/2 for gRPC routes, HTTP/1.1-or-negotiated-HTTP/2 for HTTP routes
// depending on how the request arrived), no automatic redirects, no cookie
// jar, an effectively infinite per-request timeout (this is a streaming
// proxy; cancellation is driven entirely by the inbound request's context,
// not a client-side deadline).
func NewUpstreamClient() *http.Client {
	return &http.Client{
		Transport: newUpstreamTransport(),
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Timeout: 0,
	}
}
