package redd

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrs "github.com/jamesprial/go-redd/pkg/errors"
	"github.com/jamesprial/go-redd/pkg/model"
	"github.com/jamesprial/go-redd/pkg/options"
	"github.com/jamesprial/go-redd/test_helpers"
)

func newTestClient(t *testing.T, endpoint string, opts ...ClientOption) *Client {
	t.Helper()
	cfg, err := options.NewClient(map[string]any{
		"user_agent": "redd-test/1.0",
		"endpoint":   endpoint,
	})
	require.NoError(t, err)

	c, err := NewClient(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNewClient_Errors(t *testing.T) {
	noEndpoint, err := options.NewClient(nil)
	require.NoError(t, err)

	tests := []struct {
		name  string
		cfg   options.Config
		field string
	}{
		{name: "nil options", cfg: nil, field: "options"},
		{name: "missing endpoint", cfg: noEndpoint, field: "endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			var cfgErr *pkgerrs.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestNewClient_EndpointGainsTrailingSlash(t *testing.T) {
	c := newTestClient(t, "https://example.com/api")
	assert.Equal(t, "https://example.com/api/", c.Endpoint())
	assert.Equal(t, "redd-test/1.0", c.UserAgent())
}

func TestClient_Request(t *testing.T) {
	server := test_helpers.NewMockServer()
	defer server.Close()
	server.SetJSON("/things", `{"ok":true}`)

	c := newTestClient(t, server.URL())
	ctx := context.Background()

	tests := []struct {
		name      string
		verb      string
		params    url.Values
		wantQuery url.Values
		wantForm  url.Values
	}{
		{
			name:      "get sends query",
			verb:      http.MethodGet,
			params:    url.Values{"limit": {"5"}},
			wantQuery: url.Values{"limit": {"5"}},
			wantForm:  url.Values{},
		},
		{
			name:      "post sends form",
			verb:      http.MethodPost,
			params:    url.Values{"text": {"hello world"}},
			wantQuery: url.Values{},
			wantForm:  url.Values{"text": {"hello world"}},
		},
		{
			name:      "lowercase verb",
			verb:      "delete",
			params:    url.Values{"id": {"t3_x"}},
			wantQuery: url.Values{},
			wantForm:  url.Values{"id": {"t3_x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := c.Request(ctx, tt.verb, "things", tt.params)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, `{"ok":true}`, resp.Text())

			entry, err := server.GetLastRequest("/things")
			require.NoError(t, err)
			assert.Equal(t, strings.ToUpper(tt.verb), entry.Method)
			assert.Equal(t, tt.wantQuery, entry.Query)
			assert.Equal(t, tt.wantForm, entry.Form)
			assert.Equal(t, "redd-test/1.0", entry.Headers.Get("User-Agent"))
		})
	}
}

func TestClient_RequestReturnsNon2xx(t *testing.T) {
	server := test_helpers.NewMockServer()
	defer server.Close()

	c := newTestClient(t, server.URL())
	resp, err := c.Request(context.Background(), http.MethodGet, "missing", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClient_RequestTransportFailure(t *testing.T) {
	server := test_helpers.NewMockServer()
	endpoint := server.URL()
	server.Close()

	c := newTestClient(t, endpoint)
	_, err := c.Request(context.Background(), http.MethodGet, "anything", nil)

	var reqErr *pkgerrs.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.MethodGet, reqErr.Operation)
}

func TestClient_RequestCancelledContext(t *testing.T) {
	server := test_helpers.NewMockServer()
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(t, server.URL())
	_, err := c.Request(ctx, http.MethodGet, "anything", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_RequestDeadline(t *testing.T) {
	server := test_helpers.NewMockServer()
	defer server.Close()
	server.SetJSON("/slow", `{}`)
	server.SetDelay(2 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := newTestClient(t, server.URL())
	start := time.Now()
	_, err := c.Request(ctx, http.MethodGet, "slow", nil)

	var reqErr *pkgerrs.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_RequestCancelledInFlight(t *testing.T) {
	server := test_helpers.NewMockServer()
	defer server.Close()
	server.SetJSON("/slow", `{}`)
	server.SetDelay(5 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newTestClient(t, server.URL())
	errc := make(chan error, 1)
	go func() {
		_, err := c.Request(ctx, http.MethodGet, "slow", nil)
		errc <- err
	}()

	require.NoError(t, server.WaitForRequests(1, 2*time.Second))
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("request did not return after cancel")
	}
}

func TestClient_RequestStaysOnEndpoint(t *testing.T) {
	server := test_helpers.NewMockServer()
	defer server.Close()
	foreign := test_helpers.NewMockServer()
	defer foreign.Close()
	foreign.SetJSON("/steal", `{}`)

	c := newTestClient(t, server.URL())
	ctx := context.Background()

	for _, path := range []string{foreign.URL() + "/steal", "//" + strings.TrimPrefix(foreign.URL(), "http://") + "/steal"} {
		_, err := c.Request(ctx, http.MethodGet, path, nil)
		var reqErr *pkgerrs.RequestError
		require.ErrorAs(t, err, &reqErr, path)
		assert.Contains(t, reqErr.Error(), "outside the endpoint")
	}
	require.NoError(t, foreign.AssertRequestCount("/steal", 0))

	server.SetJSON("/api/ok", `{}`)
	_, err := c.Request(ctx, http.MethodGet, server.URL()+"/api/ok", nil)
	require.NoError(t, err, "absolute URL on the endpoint host is allowed")
}

func TestClient_JSON(t *testing.T) {
	server := test_helpers.NewMockServer()
	defer server.Close()
	server.SetJSON("/ok", `{"name":"value","count":3}`)
	server.SetJSON("/broken", `<html>nope</html>`)
	server.SetJSON("/empty", ``)
	server.SetResponse("/down", &test_helpers.MockResponse{Status: http.StatusServiceUnavailable, Body: `{}`})
	server.SetResponse("/gone", &test_helpers.MockResponse{Status: http.StatusNotFound, Body: `{}`})

	c := newTestClient(t, server.URL())
	ctx := context.Background()

	t.Run("decodes body", func(t *testing.T) {
		v, err := c.JSON(ctx, http.MethodGet, "ok", nil)
		require.NoError(t, err)
		name, ok := v.Get("name")
		require.True(t, ok)
		assert.Equal(t, "value", name.String())
	})

	t.Run("undecodable body", func(t *testing.T) {
		_, err := c.JSON(ctx, http.MethodGet, "broken", nil)

		var jsonErr *pkgerrs.JSONError
		require.ErrorAs(t, err, &jsonErr)
		assert.Equal(t, "<html>nope</html>", jsonErr.Body())
		assert.NotNil(t, jsonErr.Cause)

		var respErr *pkgerrs.ResponseError
		require.ErrorAs(t, err, &respErr)
		assert.Equal(t, http.StatusOK, respErr.StatusCode())
	})

	t.Run("empty body", func(t *testing.T) {
		_, err := c.JSON(ctx, http.MethodGet, "empty", nil)

		var jsonErr *pkgerrs.JSONError
		require.ErrorAs(t, err, &jsonErr)
		assert.ErrorIs(t, err, model.ErrEmptyDocument)
		assert.NotContains(t, err.Error(), "\x00")
	})

	tests := []struct {
		path      string
		status    int
		retryable bool
	}{
		{path: "down", status: http.StatusServiceUnavailable, retryable: true},
		{path: "gone", status: http.StatusNotFound, retryable: false},
	}
	for _, tt := range tests {
		t.Run("status "+tt.path, func(t *testing.T) {
			_, err := c.JSON(ctx, http.MethodGet, tt.path, nil)

			var respErr *pkgerrs.ResponseError
			require.ErrorAs(t, err, &respErr)
			assert.Equal(t, tt.status, respErr.StatusCode())
			assert.Equal(t, tt.retryable, respErr.Retryable())

			var jsonErr *pkgerrs.JSONError
			assert.False(t, errors.As(err, &jsonErr))
		})
	}
}

func TestClient_Model(t *testing.T) {
	server := test_helpers.NewMockServer()
	defer server.Close()
	server.SetJSON("/user", `{"name":"someone"}`)
	server.SetJSON("/list", `[1,2,3]`)

	c := newTestClient(t, server.URL())
	ctx := context.Background()

	t.Run("builds registered type", func(t *testing.T) {
		obj, err := c.Model(ctx, "user", http.MethodGet, "user", nil)
		require.NoError(t, err)
		user, ok := obj.(*model.User)
		require.True(t, ok)
		assert.Equal(t, "someone", user.String())
		assert.Same(t, c, user.Client())
	})

	t.Run("unknown type sends nothing", func(t *testing.T) {
		server.ClearLog()
		_, err := c.Model(ctx, "subreddit", http.MethodGet, "user", nil)
		assert.ErrorIs(t, err, model.ErrUnknownType)
		assert.Empty(t, server.GetRequestLog())
	})

	t.Run("non-object body", func(t *testing.T) {
		_, err := c.Model(ctx, "model", http.MethodGet, "list", nil)
		var respErr *pkgerrs.ResponseError
		require.ErrorAs(t, err, &respErr)
		assert.Equal(t, "[1,2,3]", respErr.Response.Text())
	})

	t.Run("typed helper", func(t *testing.T) {
		user, err := buildModel[*model.User](ctx, c, "user", http.MethodGet, "user", nil)
		require.NoError(t, err)
		assert.Equal(t, "someone", user.Name())

		_, err = buildModel[*model.Access](ctx, c, "user", http.MethodGet, "user", nil)
		assert.Error(t, err)
	})
}

func TestClient_ReusesConnection(t *testing.T) {
	server := test_helpers.NewMockServer()
	defer server.Close()
	server.SetJSON("/ok", `{}`)

	c := newTestClient(t, server.URL())
	assert.False(t, c.conn.IsInitialized())

	_, err := c.Request(context.Background(), http.MethodGet, "ok", nil)
	require.NoError(t, err)
	first := c.conn.Client()

	_, err = c.Request(context.Background(), http.MethodGet, "ok", nil)
	require.NoError(t, err)
	assert.Same(t, first, c.conn.Client())
}

func TestClient_WithHTTPClient(t *testing.T) {
	server := test_helpers.NewMockServer()
	defer server.Close()
	server.SetJSON("/ok", `{}`)

	var seen bool
	base := &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			seen = true
			return http.DefaultTransport.RoundTrip(r)
		}),
	}

	c := newTestClient(t, server.URL(), WithHTTPClient(base))
	_, err := c.Request(context.Background(), http.MethodGet, "ok", nil)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestClient_WithLogger(t *testing.T) {
	server := test_helpers.NewMockServer()
	defer server.Close()
	server.SetJSON("/broken", `not json`)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := newTestClient(t, server.URL(), WithLogger(logger))
	_, err := c.JSON(context.Background(), http.MethodGet, "broken", nil)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "sending request")
	assert.Contains(t, out, "received response")
	assert.Contains(t, out, "invalid JSON response")
	assert.Contains(t, out, "not json")
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
