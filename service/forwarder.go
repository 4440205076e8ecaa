package service

import (
	"io"
	"net/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"edgeproxy/domain"
	"edgeproxy/helpers"
)

// requestForwarder implements interfaces.Forwarder over a shared
// *http.Client: forward the request, relay the response, propagate
// trailers after the body, and survive backend failure without
// panicking.
type requestForwarder struct {
	client *http.Client
	logger log.Logger
}

// NewRequestForwarder wires the shared upstream client and a logger.
func NewRequestForwarder(client *http.Client, logger log.Logger) *requestForwarder {
	return &requestForwarder{
		client: helpers.NilPanic(client, "service.forwarder.go: client is required"),
		logger: helpers.NilPanic(logger, "service.forwarder.go: logger is required"),
	}
}

// Forward implements interfaces.Forwarder.
func (f *requestForwarder) Forward(w http.ResponseWriter, req *http.Request, match domain.RouteMatchResult, destination domain.Destination) {
	target := helpers.BuildTargetURL(destination.BaseURL, match.DownstreamPath, req.URL.RawQuery)

	ctx := req.Context()
	switch {
	case match.Route.Kind == domain.RouteGRPC:
		ctx = withForceHTTP2(ctx)
	case req.ProtoMajor < 2:
		// The request arrived as HTTP/1.1: the outbound hop must not
		// silently upgrade to HTTP/2 just because the destination
		// happens to support ALPN — "this version or lower" caps at
		// the inbound version, never above it.
		ctx = withMaxHTTP1(ctx)
	}

	outReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), req.Body)
	if err != nil {
		f.writeBadGateway(w, "build outbound request", err)
		return
	}

	outReq.Host = destination.BaseURL.Host
	helpers.CopyHeaders(outReq.Header, req.Header)

	if hasRequestBody(req) {
		outReq.ContentLength = req.ContentLength
		outReq.GetBody = req.GetBody
	} else {
		outReq.Body = nil
		outReq.ContentLength = 0
	}

	resp, err := f.client.Do(outReq)
	if err != nil {
		if ctx.Err() != nil {
			level.Debug(f.logger).Log("msg", "request canceled before response", "path", req.URL.Path)
			return
		}
		f.writeBadGateway(w, "dial destination", err)
		return
	}
	defer resp.Body.Close()

	helpers.CopyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)

	if _, copyErr := io.Copy(w, resp.Body); copyErr != nil {
		level.Error(f.logger).Log("msg", "streaming response body aborted", "path", req.URL.Path, "err", copyErr)
		// Headers are already on the wire: abort the response so the
		// client sees a truncated body rather than a clean end.
		panic(http.ErrAbortHandler)
	}

	helpers.CopyTrailers(w.Header(), resp.Trailer)
}

// hasRequestBody decides whether the inbound request carries a body worth
// attaching to the outbound one: a known positive Content-Length, chunked
// Transfer-Encoding, or a body-bearing method even when length is unknown
// ahead of time.
func hasRequestBody(req *http.Request) bool {
	if req.Body == nil || req.Body == http.NoBody {
		return false
	}
	if req.ContentLength > 0 {
		return true
	}
	if len(req.TransferEncoding) > 0 {
		return true
	}
	switch req.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}

// writeBadGateway handles the pre-response failure branch: the backend
// never produced a response, so it is safe to write a synthetic 502 onto w.
func (f *requestForwarder) writeBadGateway(w http.ResponseWriter, stage string, err error) {
	level.Error(f.logger).Log("msg", "forwarding failed", "stage", stage, "err", err)
	w.WriteHeader(http.StatusBadGateway)
	_, _ = w.Write([]byte("Bad Gateway"))
}
