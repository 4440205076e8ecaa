package helpers

import "net/http"

// hopByHop is the exact, case-insensitive set of headers that must never be
// forwarded across a proxy hop. Keys are stored in net/http's canonical
// form so lookups against an http.Header need no extra normalization.
var hopByHop = map[string]struct{}{
	"Connection":          {},
	"Proxy-Connection":    {},
	"Keep-Alive":          {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Trailer":             {},
	"Host":                {},
}

// IsHopByHop reports whether canonicalKey (as produced by http.CanonicalHeaderKey)
// names a hop-by-hop header that must be stripped in both directions.
func IsHopByHop(canonicalKey string) bool {
	_, ok := hopByHop[canonicalKey]
	return ok
}

// CopyHeaders appends every header in src to dst except the hop-by-hop set,
// preserving every value of a multi-valued header. Used both for the
// outbound request (client → backend) and the inbound response
// (backend → client).
func CopyHeaders(dst, src http.Header) {
	for key, values := range src {
		if IsHopByHop(http.CanonicalHeaderKey(key)) {
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}

// CopyTrailers declares every trailer in src on dst via the
// http.TrailerPrefix mechanism, except the hop-by-hop set. A real HTTP/2
// (or gRPC) trailer is never known before the response body reaches EOF —
// the stream's trailing HEADERS frame parses after *http.Transport has
// already returned the Response with headers read — so a plain key set
// after WriteHeader would be silently dropped by the underlying
// http.Server/http2.Server. Header().Set(TrailerPrefix+key, ...) is the
// one mechanism both accept for declaring a trailer whose name is not
// known until after the handler has already written its response header.
// Trailers must still be copied strictly after the response body has been
// fully written; callers are responsible for that sequencing.
func CopyTrailers(dst, src http.Header) {
	for key, values := range src {
		canonical := http.CanonicalHeaderKey(key)
		if IsHopByHop(canonical) {
			continue
		}
		for _, v := range values {
			dst.Add(http.TrailerPrefix+canonical, v)
		}
	}
}
