package options

import (
	"log/slog"
	"maps"
)

// Option names of the authorization variant.
const (
	KeyClientID = "client_id"
	KeySecret   = "secret"
	KeyUsername = "username"
	KeyPassword = "password"
)

var (
	authorizationKeys = append(append([]string(nil), clientKeys...), KeyClientID, KeySecret, KeyUsername, KeyPassword)
	// redactedKeys never appear in string or log output.
	redactedKeys = []string{KeySecret, KeyPassword}
)

// AuthorizationFields are the editable options of an authorization client.
type AuthorizationFields struct {
	ClientFields `mapstructure:",squash"`
	ClientID     string `mapstructure:"client_id"`
	Secret       string `mapstructure:"secret"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
}

// Authorization configures the token endpoint client. Its string and log
// representations never include the secret or the password.
type Authorization struct {
	Client
	fields AuthorizationFields
}

var _ Config = (*Authorization)(nil)

// NewAuthorization builds an authorization configuration. The endpoint
// defaults to DefaultAuthEndpoint.
func NewAuthorization(attrs map[string]any, configure ...func(*AuthorizationFields)) (*Authorization, error) {
	var f AuthorizationFields
	if err := decode(attrs, authorizationKeys, &f); err != nil {
		return nil, err
	}
	for _, fn := range configure {
		fn(&f)
	}

	applyClientDefaults(&f.ClientFields, DefaultAuthEndpoint)
	if err := validateClient(f.ClientFields); err != nil {
		return nil, err
	}
	if err := validator.ValidateUsername(f.Username); err != nil {
		return nil, err
	}

	return &Authorization{Client: Client{fields: f.ClientFields}, fields: f}, nil
}

// ClientID returns the OAuth2 application id.
func (o *Authorization) ClientID() string { return o.fields.ClientID }

// Secret returns the OAuth2 application secret.
func (o *Authorization) Secret() string { return o.fields.Secret }

// Username returns the account name used by the password grant.
func (o *Authorization) Username() string { return o.fields.Username }

// Password returns the account password used by the password grant.
func (o *Authorization) Password() string { return o.fields.Password }

// Fields returns a copy of the resolved options.
func (o *Authorization) Fields() AuthorizationFields { return o.fields }

// ToMap returns the resolved options by name, omitting unset ones. The map
// includes the secret and password; it is not meant for display.
func (o *Authorization) ToMap() map[string]any {
	m := o.Client.ToMap()
	putString(m, KeyClientID, o.fields.ClientID)
	putString(m, KeySecret, o.fields.Secret)
	putString(m, KeyUsername, o.fields.Username)
	putString(m, KeyPassword, o.fields.Password)
	return m
}

// Equal reports whether other is an *Authorization with the same resolved options.
func (o *Authorization) Equal(other any) bool {
	a, ok := other.(*Authorization)
	if !ok || o == nil || a == nil {
		return false
	}
	return maps.Equal(o.ToMap(), a.ToMap())
}

func (o Authorization) String() string {
	return render("options.Authorization", o.ToMap(), redactedKeys)
}

// GoString keeps %#v from printing the secret and password.
func (o Authorization) GoString() string { return o.String() }

// LogValue implements slog.LogValuer without the secret and password.
func (o Authorization) LogValue() slog.Value {
	return logValue(o.ToMap(), redactedKeys)
}
