package domain

import (
	"net/http"
	"strings"
)

// forwardableMethods lists the HTTP methods the gateway relays upstream.
var forwardableMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// ProxyRequest is an inbound request rewritten for the upstream. Path is
// relative to the upstream base URL.
type ProxyRequest struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// ProxyResponse is the upstream's answer, relayed to the caller unchanged
// apart from hop-by-hop headers.
type ProxyResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Validate checks that the request can be forwarded.
func (r *ProxyRequest) Validate() error {
	fields := make(map[string]string)

	if !forwardableMethods[r.Method] {
		fields["method"] = "unsupported method " + r.Method
	}
	if msg := checkPath(r.Path); msg != "" {
		fields["path"] = msg
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidatePath checks a single upstream path.
func ValidatePath(path string) error {
	if msg := checkPath(path); msg != "" {
		return &ValidationError{Fields: map[string]string{"path": msg}}
	}
	return nil
}

func checkPath(path string) string {
	switch {
	case path == "":
		return "is required"
	case !strings.HasPrefix(path, "/"):
		return "must start with /"
	case strings.HasPrefix(path, "//"):
		return "must not start with //"
	}
	for seg := range strings.SplitSeq(path, "/") {
		if seg == "." || seg == ".." {
			return "must not contain dot segments"
		}
	}
	return ""
}
