// Package options holds the immutable configuration values used to build clients.
//
// Each variant is built from a map of option name to value and/or callbacks that
// edit the variant's Fields struct. After the callbacks run, defaults are filled
// in (base defaults first, then the variant's), the result is validated, and the
// value becomes read-only: only getters are exposed. Unknown option names are
// rejected with a *errors.ConfigError.
package options

import (
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/jamesprial/go-redd/internal"
	pkgerrs "github.com/jamesprial/go-redd/pkg/errors"
)

const (
	// DefaultUserAgent identifies this library when no user agent is configured.
	DefaultUserAgent = "Go:Redd (Default):v" + internal.Version
	// DefaultAuthEndpoint is where access tokens are requested.
	DefaultAuthEndpoint = "https://www.reddit.com"
	// DefaultAPIEndpoint is where authenticated API requests are sent.
	DefaultAPIEndpoint = "https://oauth.reddit.com"
)

// Option names shared by every variant.
const (
	KeyUserAgent = "user_agent"
	KeyEndpoint  = "endpoint"
)

var clientKeys = []string{KeyUserAgent, KeyEndpoint}

var validator = internal.NewValidator()

// Config is what a client needs from any option variant.
type Config interface {
	UserAgent() string
	Endpoint() string
	ToMap() map[string]any
}

// ClientFields are the editable options shared by every variant.
type ClientFields struct {
	UserAgent string `mapstructure:"user_agent"`
	Endpoint  string `mapstructure:"endpoint"`
}

// Client is the frozen base configuration.
type Client struct {
	fields ClientFields
}

var _ Config = (*Client)(nil)

// NewClient builds a base configuration. The endpoint has no default at this
// level and may be left empty.
func NewClient(attrs map[string]any, configure ...func(*ClientFields)) (*Client, error) {
	var f ClientFields
	if err := decode(attrs, clientKeys, &f); err != nil {
		return nil, err
	}
	for _, fn := range configure {
		fn(&f)
	}

	applyClientDefaults(&f, "")
	if err := validateClient(f); err != nil {
		return nil, err
	}
	return &Client{fields: f}, nil
}

// UserAgent returns the User-Agent header value.
func (o *Client) UserAgent() string { return o.fields.UserAgent }

// Endpoint returns the base URL requests are resolved against.
func (o *Client) Endpoint() string { return o.fields.Endpoint }

// Fields returns a copy of the resolved options.
func (o *Client) Fields() ClientFields { return o.fields }

// ToMap returns the resolved options by name, omitting unset ones.
func (o *Client) ToMap() map[string]any {
	m := map[string]any{}
	putString(m, KeyUserAgent, o.fields.UserAgent)
	putString(m, KeyEndpoint, o.fields.Endpoint)
	return m
}

// Equal reports whether other is a *Client with the same resolved options.
func (o *Client) Equal(other any) bool {
	c, ok := other.(*Client)
	if !ok || o == nil || c == nil {
		return false
	}
	return maps.Equal(o.ToMap(), c.ToMap())
}

func (o Client) String() string { return render("options.Client", o.ToMap(), nil) }

// applyClientDefaults fills the base defaults, then the variant's endpoint.
func applyClientDefaults(f *ClientFields, endpoint string) {
	if f.UserAgent == "" {
		f.UserAgent = DefaultUserAgent
	}
	if f.Endpoint == "" {
		f.Endpoint = endpoint
	}
}

func validateClient(f ClientFields) error {
	if err := validator.ValidateUserAgent(f.UserAgent); err != nil {
		return err
	}
	if f.Endpoint == "" {
		return nil
	}
	if _, err := validator.ValidateEndpoint(f.Endpoint); err != nil {
		return err
	}
	return nil
}

// decode copies attrs into out, rejecting unknown names and mistyped values.
// Unknown names are caught by ValidateKeys rather than mapstructure's
// ErrorUnused so the returned ConfigError names the offending option.
func decode(attrs map[string]any, allowed []string, out any) error {
	if len(attrs) == 0 {
		return nil
	}
	if err := validator.ValidateKeys(attrs, allowed); err != nil {
		return err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "mapstructure",
		Result:  out,
	})
	if err != nil {
		return &pkgerrs.ConfigError{Message: "failed to build option decoder", Err: err}
	}
	if err := dec.Decode(attrs); err != nil {
		return &pkgerrs.ConfigError{Message: "invalid option value", Err: err}
	}
	return nil
}

func putString(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

// render prints options in a stable key order, skipping hidden keys.
func render(typeName string, m map[string]any, hidden []string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(typeName)
	sb.WriteString("{")
	first := true
	for _, k := range keys {
		if contains(hidden, k) {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%s=%q", k, fmt.Sprint(m[k]))
	}
	sb.WriteString("}")
	return sb.String()
}

func logValue(m map[string]any, hidden []string) slog.Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		if contains(hidden, k) {
			continue
		}
		attrs = append(attrs, slog.Any(k, m[k]))
	}
	return slog.GroupValue(attrs...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
