package redd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jamesprial/go-redd/internal"
	pkgerrs "github.com/jamesprial/go-redd/pkg/errors"
	"github.com/jamesprial/go-redd/pkg/model"
	"github.com/jamesprial/go-redd/pkg/options"
	"github.com/jamesprial/go-redd/pkg/types"
)

const (
	// MaxResponseSize caps how much of a response body is read into memory.
	MaxResponseSize = 10 << 20
	// logPreviewSize caps the body excerpt attached to decode failure logs.
	logPreviewSize = 500
)

// Client performs requests against a single endpoint. It is the base of every
// other client in the package: authorization strategies, API clients and
// namespaces all embed one.
//
// Each Client owns one *http.Client, built on the first request and reused for
// the lifetime of the Client.
type Client struct {
	config   options.Config
	endpoint *url.URL
	fixed    url.Values
	build    func() *http.Client
	conn     *internal.Connection
	logger   *slog.Logger

	// owner is handed to the models this client builds. Embedding types set it
	// to themselves so a model points back at the most specific client.
	owner model.Client
}

// ClientOption customizes how a client talks to the network.
type ClientOption func(*clientSettings)

type clientSettings struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// WithHTTPClient sets the *http.Client whose settings (timeout, transport,
// redirect policy) the client's connection starts from. The given client is
// copied, never modified.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(s *clientSettings) { s.httpClient = hc }
}

// WithLogger sets the logger for request and response debug records.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(s *clientSettings) { s.logger = logger }
}

// NewClient returns a base client for the endpoint in config.
// The endpoint must be set; options.Client has no default for it.
func NewClient(config options.Config, opts ...ClientOption) (*Client, error) {
	return newClient(config, nil, nil, opts)
}

// newClient builds a client whose connection carries the User-Agent header plus
// the given layers, and whose requests always carry the fixed params.
func newClient(config options.Config, layers []internal.Layer, fixed url.Values, opts []ClientOption) (*Client, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Field: "options", Message: "options must be provided"}
	}
	if config.Endpoint() == "" {
		return nil, &pkgerrs.ConfigError{Field: options.KeyEndpoint, Message: "endpoint must be provided"}
	}

	endpoint, err := internal.NewValidator().ValidateEndpoint(config.Endpoint())
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(endpoint.Path, "/") {
		endpoint.Path += "/"
	}

	var settings clientSettings
	for _, opt := range opts {
		opt(&settings)
	}
	logger := settings.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	layers = append([]internal.Layer{internal.UserAgent(config.UserAgent())}, layers...)
	base := settings.httpClient

	c := &Client{
		config:   config,
		endpoint: endpoint,
		fixed:    fixed,
		logger:   logger,
		build: func() *http.Client {
			return internal.NewHTTPClient(base, layers...)
		},
	}
	c.conn = internal.NewConnection(c.build)
	c.owner = c
	return c, nil
}

// derive returns a client with the same configuration and headers but its own
// connection.
func (c *Client) derive() *Client {
	d := *c
	d.conn = internal.NewConnection(c.build)
	d.owner = &d
	return &d
}

// Options returns the configuration the client was built with.
func (c *Client) Options() options.Config { return c.config }

// Endpoint returns the absolute URL every request path is resolved against.
func (c *Client) Endpoint() string { return c.endpoint.String() }

// UserAgent returns the User-Agent header sent with every request.
func (c *Client) UserAgent() string { return c.config.UserAgent() }

// Close releases idle connections held by the client. The client remains usable.
// API.Close also closes the namespaces it has loaded.
func (c *Client) Close() {
	c.conn.CloseIdle()
}

// Request sends one request and returns the raw response whatever its status.
// The path is resolved relative to the endpoint. Params travel in the query
// string for GET and HEAD and as a form body for every other verb.
func (c *Client) Request(ctx context.Context, verb, path string, params url.Values) (*types.Response, error) {
	verb = strings.ToUpper(verb)

	u, err := c.endpoint.Parse(path)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: verb, URL: path, Message: "invalid request path", Err: err}
	}
	// Credentials travel with every request, so an absolute path must not leave the endpoint.
	if u.Scheme != c.endpoint.Scheme || u.Host != c.endpoint.Host {
		return nil, &pkgerrs.RequestError{Operation: verb, URL: u.Redacted(), Message: "path resolves outside the endpoint " + c.endpoint.Host}
	}

	if len(c.fixed) > 0 {
		params = types.MergeParams(params, c.fixed)
	}

	var body io.Reader
	if types.ReadsParams(verb) {
		if len(params) > 0 {
			query := u.Query()
			for key, values := range params {
				for _, v := range values {
					query.Add(key, v)
				}
			}
			u.RawQuery = query.Encode()
		}
	} else {
		body = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, verb, u.String(), body)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: verb, URL: u.String(), Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	c.logger.DebugContext(ctx, "sending request", "method", verb, "url", u.Redacted())
	start := time.Now()

	resp, err := c.conn.Client().Do(req)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: verb, URL: u.Redacted(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: verb, URL: u.Redacted(), Message: "failed to read response body", Err: err}
	}

	c.logger.DebugContext(ctx, "received response",
		"method", verb,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start),
	)

	return &types.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// JSON sends a request and decodes the response body. A non-2xx status yields
// a *errors.ResponseError and an undecodable body a *errors.JSONError.
func (c *Client) JSON(ctx context.Context, verb, path string, params url.Values) (model.Value, error) {
	v, _, err := c.json(ctx, verb, path, params)
	return v, err
}

func (c *Client) json(ctx context.Context, verb, path string, params url.Values) (model.Value, *types.Response, error) {
	resp, err := c.Request(ctx, verb, path, params)
	if err != nil {
		return model.Value{}, nil, err
	}

	if !resp.IsSuccess() {
		return model.Value{}, resp, &pkgerrs.ResponseError{Response: resp, Message: "request failed"}
	}

	v, err := model.Decode(resp.Body)
	if err != nil {
		c.logger.DebugContext(ctx, "invalid JSON response",
			"status", resp.StatusCode,
			"body_preview", bodyPreview(resp.Body),
		)
		return model.Value{}, resp, pkgerrs.NewJSONError(resp, err)
	}
	return v, resp, nil
}

// Model sends a request and wraps the decoded JSON object in the model type
// registered under typeName. The model's client is the most specific client
// that issued the request.
func (c *Client) Model(ctx context.Context, typeName, verb, path string, params url.Values) (model.Object, error) {
	if _, ok := model.Lookup(typeName); !ok {
		return nil, fmt.Errorf("%w %q", model.ErrUnknownType, typeName)
	}

	v, resp, err := c.json(ctx, verb, path, params)
	if err != nil {
		return nil, err
	}

	obj, err := model.Build(typeName, c.owner, v)
	if err != nil {
		return nil, &pkgerrs.ResponseError{Response: resp, Message: err.Error()}
	}
	return obj, nil
}

// buildModel is Model narrowed to the concrete model type T.
func buildModel[T model.Object](ctx context.Context, c *Client, typeName, verb, path string, params url.Values) (T, error) {
	var zero T
	obj, err := c.Model(ctx, typeName, verb, path, params)
	if err != nil {
		return zero, err
	}
	typed, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("model %q built %T, want %T", typeName, obj, zero)
	}
	return typed, nil
}

func bodyPreview(body []byte) string {
	if len(body) <= logPreviewSize {
		return string(body)
	}
	return string(body[:logPreviewSize]) + "..."
}
