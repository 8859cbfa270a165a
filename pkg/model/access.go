package model

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ExpiryGracePeriod is how long before the hard expiry an Access is already
// reported as expired by IsExpired(true).
const ExpiryGracePeriod = 300 * time.Second

// wildcardScope grants every scope.
const wildcardScope = "*"

// now is the clock used for Access creation and expiry checks.
var now = time.Now

// Access is an OAuth2 bearer token bundle returned by the token endpoint.
//
// Expiry is measured from CreatedAt, the local time the Access was built,
// not from the server's issuance time. The latency between the server issuing
// the token and this process wrapping it is not accounted for.
type Access struct {
	Model
	createdAt time.Time
}

// NewAccess wraps the attributes of a token response, stamping the current time.
func NewAccess(client Client, attrs map[string]Value) *Access {
	return NewAccessAt(client, attrs, now())
}

// NewAccessAt is like NewAccess with an explicit creation time, for restoring
// a token that was created earlier.
func NewAccessAt(client Client, attrs map[string]Value, createdAt time.Time) *Access {
	return &Access{
		Model:     newModel("access", client, attrs),
		createdAt: createdAt,
	}
}

// CreatedAt returns the local time the Access was constructed.
func (a *Access) CreatedAt() time.Time { return a.createdAt }

// AccessToken returns the bearer token.
func (a *Access) AccessToken() string { return a.stringAttr("access_token") }

// TokenType returns the token_type attribute, "bearer" when absent.
func (a *Access) TokenType() string {
	if t := a.stringAttr("token_type"); t != "" {
		return t
	}
	return "bearer"
}

// RefreshToken returns the refresh token and whether one was issued.
func (a *Access) RefreshToken() (string, bool) {
	if !a.AttributeExists("refresh_token") {
		return "", false
	}
	return a.stringAttr("refresh_token"), true
}

// IsRefreshable reports whether a refresh_token attribute is present.
func (a *Access) IsRefreshable() bool {
	return a.AttributeExists("refresh_token")
}

// ExpiresIn returns the token lifetime; zero when expires_in is absent.
func (a *Access) ExpiresIn() time.Duration {
	v, ok := a.Get("expires_in")
	if !ok {
		return 0
	}
	secs, ok := v.Float()
	if !ok {
		return 0
	}
	nanos := secs * float64(time.Second)
	switch {
	case nanos >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case nanos <= math.MinInt64:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(nanos)
}

// ExpiresAt returns CreatedAt plus ExpiresIn.
func (a *Access) ExpiresAt() time.Time {
	return a.createdAt.Add(a.ExpiresIn())
}

// IsExpired reports whether the token has expired. With gracePeriod set the
// token counts as expired ExpiryGracePeriod before its hard expiry.
func (a *Access) IsExpired(gracePeriod bool) bool {
	check := now()
	if gracePeriod {
		check = check.Add(ExpiryGracePeriod)
	}
	return !check.Before(a.ExpiresAt())
}

// Expired is IsExpired with the grace period applied.
func (a *Access) Expired() bool { return a.IsExpired(true) }

// Scope returns the raw scope attribute.
func (a *Access) Scope() string { return a.stringAttr("scope") }

// Scopes returns the comma-separated scope attribute as a list.
func (a *Access) Scopes() []string {
	scope := a.Scope()
	if scope == "" {
		return nil
	}
	return strings.Split(scope, ",")
}

// HasScope reports whether the token grants name. The wildcard scope "*"
// grants everything. Scope names are not validated.
func (a *Access) HasScope(name string) bool {
	scope := a.Scope()
	if scope == wildcardScope {
		return true
	}
	for _, s := range a.Scopes() {
		if s == name {
			return true
		}
	}
	return false
}

// Token converts the Access into an oauth2.Token.
func (a *Access) Token() *oauth2.Token {
	refresh, _ := a.RefreshToken()
	tok := &oauth2.Token{
		AccessToken:  a.AccessToken(),
		TokenType:    a.TokenType(),
		RefreshToken: refresh,
	}
	if a.ExpiresIn() > 0 {
		tok.Expiry = a.ExpiresAt()
	}
	return tok
}

// LogValue renders the token metadata without the token strings.
func (a *Access) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("scope", a.Scope()),
		slog.Bool("refreshable", a.IsRefreshable()),
		slog.Time("created_at", a.createdAt),
		slog.Time("expires_at", a.ExpiresAt()),
	)
}
