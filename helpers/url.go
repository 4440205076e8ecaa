package helpers

import (
	"net/url"
	"strings"
)

// BuildTargetURL combines a destination's base URL with a downstream path
// and the inbound query string. base is never mutated; a new *url.URL is
// returned.
//
// Path combination: the base path is treated as ending in "/" (a trailing
// slash is added if missing), any leading "/" on downstreamPath is
// stripped, and the two are concatenated — so a base of "http://h/v1" and a
// downstreamPath of "/items" yields "http://h/v1/items", never
// "http://h/v1//items".
//
// Query combination: when the base URL already carries a query string, the
// inbound query is appended after "&"; otherwise the inbound query is used
// as-is. Either side may be empty.
func BuildTargetURL(base *url.URL, downstreamPath, inboundRawQuery string) *url.URL {
	target := *base

	basePath := target.Path
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	target.Path = basePath + strings.TrimPrefix(downstreamPath, "/")
	target.RawPath = ""

	switch {
	case target.RawQuery != "" && inboundRawQuery != "":
		target.RawQuery = target.RawQuery + "&" + inboundRawQuery
	case inboundRawQuery != "":
		target.RawQuery = inboundRawQuery
	}

	return &target
}
