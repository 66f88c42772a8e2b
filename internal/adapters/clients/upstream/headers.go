package upstream

import (
	"net/http"
	"net/textproto"
	"strings"
)

// hopByHopHeaders are meaningful only for a single transport-level
// connection (RFC 9110 section 7.6.1) and must not be forwarded.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// copyEndToEnd copies src into dst, skipping hop-by-hop headers, headers
// named in src's Connection header, and Host and Content-Length, which the
// transport sets itself.
func copyEndToEnd(dst, src http.Header) {
	skip := make(map[string]bool, len(hopByHopHeaders)+2)
	for _, h := range hopByHopHeaders {
		skip[h] = true
	}
	skip["Host"] = true
	skip["Content-Length"] = true
	for _, v := range src.Values("Connection") {
		for name := range strings.SplitSeq(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				skip[textproto.CanonicalMIMEHeaderKey(name)] = true
			}
		}
	}

	for k, vs := range src {
		if skip[textproto.CanonicalMIMEHeaderKey(k)] {
			continue
		}
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
