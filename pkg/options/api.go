package options

import (
	"fmt"
	"log/slog"
	"maps"

	pkgerrs "github.com/jamesprial/go-redd/pkg/errors"
	"github.com/jamesprial/go-redd/pkg/model"
)

// KeyAccess names the token option of the API variant.
const KeyAccess = "access"

var apiKeys = append(append([]string(nil), clientKeys...), KeyAccess)

// APIFields are the editable options of an API client.
type APIFields struct {
	ClientFields
	Access *model.Access
}

// API configures an authenticated API client.
type API struct {
	Client
	access *model.Access
}

var _ Config = (*API)(nil)

// NewAPI builds an API configuration. The endpoint defaults to
// DefaultAPIEndpoint. It fails when no access is supplied.
func NewAPI(attrs map[string]any, configure ...func(*APIFields)) (*API, error) {
	var f APIFields

	if err := validator.ValidateKeys(attrs, apiKeys); err != nil {
		return nil, err
	}
	rest := maps.Clone(attrs)
	if raw, ok := rest[KeyAccess]; ok {
		delete(rest, KeyAccess)
		if raw != nil {
			access, ok := raw.(*model.Access)
			if !ok {
				return nil, &pkgerrs.ConfigError{Field: KeyAccess, Message: fmt.Sprintf("expected *model.Access, got %T", raw)}
			}
			f.Access = access
		}
	}
	if err := decode(rest, clientKeys, &f.ClientFields); err != nil {
		return nil, err
	}
	for _, fn := range configure {
		fn(&f)
	}

	applyClientDefaults(&f.ClientFields, DefaultAPIEndpoint)
	if f.Access == nil {
		return nil, &pkgerrs.ConfigError{Field: KeyAccess, Message: "access must be provided"}
	}
	if err := validateClient(f.ClientFields); err != nil {
		return nil, err
	}

	return &API{Client: Client{fields: f.ClientFields}, access: f.Access}, nil
}

// Access returns the token requests are authenticated with.
func (o *API) Access() *model.Access { return o.access }

// ToMap returns the resolved options by name, omitting unset ones.
func (o *API) ToMap() map[string]any {
	m := o.Client.ToMap()
	if o.access != nil {
		m[KeyAccess] = o.access
	}
	return m
}

// Equal reports whether other is an *API with the same resolved options.
// Access values compare by identity.
func (o *API) Equal(other any) bool {
	a, ok := other.(*API)
	if !ok || o == nil || a == nil {
		return false
	}
	return maps.Equal(o.ToMap(), a.ToMap())
}

func (o API) String() string {
	m := o.Client.ToMap()
	if o.access != nil {
		m[KeyAccess] = fmt.Sprintf("access(scope=%s, expires_at=%s)", o.access.Scope(), o.access.ExpiresAt().Format("2006-01-02T15:04:05Z07:00"))
	}
	return render("options.API", m, nil)
}

// GoString keeps %#v from printing the token.
func (o API) GoString() string { return o.String() }

// LogValue implements slog.LogValuer; the access is rendered by its own LogValue.
func (o API) LogValue() slog.Value {
	return logValue(o.ToMap(), nil)
}
