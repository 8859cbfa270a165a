package internal

import (
	"net/http"

	"golang.org/x/oauth2"
)

// Layer wraps a RoundTripper with one concern (auth, headers, metrics).
type Layer func(next http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// NewHTTPClient returns a copy of base whose transport is wrapped by layers,
// first layer innermost. A nil base yields a client with its own clone of
// http.DefaultTransport, so connections are not shared with other clients.
func NewHTTPClient(base *http.Client, layers ...Layer) *http.Client {
	var hc http.Client
	if base != nil {
		hc = *base
	}

	rt := hc.Transport
	if rt == nil {
		if dt, ok := http.DefaultTransport.(*http.Transport); ok {
			rt = dt.Clone()
		} else {
			rt = http.DefaultTransport
		}
	}

	layered := Instrument(rt)
	for _, layer := range layers {
		layered = layer(layered)
	}
	hc.Transport = &layeredTransport{RoundTripper: layered, base: rt}
	return &hc
}

// layeredTransport sends through the layers but closes idle connections on the
// base transport, which the layers do not forward.
type layeredTransport struct {
	http.RoundTripper
	base http.RoundTripper
}

// CloseIdleConnections implements the interface http.Client.CloseIdleConnections looks for.
func (t *layeredTransport) CloseIdleConnections() {
	if c, ok := t.base.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}

// withHeaders clones the request and lets set edit the clone's headers.
// RoundTrippers must not modify the request they are given.
func withHeaders(next http.RoundTripper, set func(r *http.Request)) http.RoundTripper {
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		clone := req.Clone(req.Context())
		set(clone)
		return next.RoundTrip(clone)
	})
}

// UserAgent sets the User-Agent header on every request.
func UserAgent(ua string) Layer {
	return func(next http.RoundTripper) http.RoundTripper {
		return withHeaders(next, func(r *http.Request) {
			r.Header.Set("User-Agent", ua)
		})
	}
}

// BasicAuth sets HTTP Basic credentials on every request.
func BasicAuth(username, password string) Layer {
	return func(next http.RoundTripper) http.RoundTripper {
		return withHeaders(next, func(r *http.Request) {
			r.SetBasicAuth(username, password)
		})
	}
}

// Bearer sets "Authorization: Bearer <token>" on every request.
func Bearer(token *oauth2.Token) Layer {
	src := oauth2.StaticTokenSource(token)
	return func(next http.RoundTripper) http.RoundTripper {
		return &oauth2.Transport{Source: src, Base: next}
	}
}
