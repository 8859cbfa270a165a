// Package types holds the small value types shared by the clients and the
// error taxonomy.
package types

import (
	"net/http"
	"net/url"
)

// Response is the raw result of a request: status, headers and the unparsed body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Text returns the body as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// IsSuccess reports whether the status is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// ReadsParams reports whether params for the given verb travel in the query string.
// GET and HEAD carry them in the URL; every other verb sends a form body.
func ReadsParams(verb string) bool {
	switch verb {
	case http.MethodGet, http.MethodHead:
		return true
	default:
		return false
	}
}

// MergeParams returns a new set of params holding base overlaid by fixed.
// Keys present in fixed replace those in base.
func MergeParams(base, fixed url.Values) url.Values {
	merged := make(url.Values, len(base)+len(fixed))
	for k, v := range base {
		merged[k] = append([]string(nil), v...)
	}
	for k, v := range fixed {
		merged[k] = append([]string(nil), v...)
	}
	return merged
}
