package redd

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jamesprial/go-redd/internal"
	pkgerrs "github.com/jamesprial/go-redd/pkg/errors"
	"github.com/jamesprial/go-redd/pkg/model"
	"github.com/jamesprial/go-redd/pkg/options"
)

// accessTokenPath is where every grant exchanges client credentials for an access token.
const accessTokenPath = "api/v1/access_token"

// Strategy obtains an access token. Script and Userless implement it.
type Strategy interface {
	Authorize(ctx context.Context) (*model.Access, error)
}

var (
	_ Strategy = (*Script)(nil)
	_ Strategy = (*Userless)(nil)
)

// Authorization is the base of the authorization strategies. Every request it
// sends carries HTTP Basic credentials built from the client ID and secret.
//
// Authorization itself does not implement a grant; use Script or Userless.
type Authorization struct {
	*Client
	options *options.Authorization
}

// NewAuthorization returns the base authorization client for opts.
func NewAuthorization(opts *options.Authorization, clientOpts ...ClientOption) (*Authorization, error) {
	if opts == nil {
		return nil, &pkgerrs.ConfigError{Field: "options", Message: "authorization options must be provided"}
	}

	layers := []internal.Layer{internal.BasicAuth(opts.ClientID(), opts.Secret())}
	c, err := newClient(opts, layers, nil, clientOpts)
	if err != nil {
		return nil, err
	}

	a := &Authorization{Client: c, options: opts}
	c.owner = a
	return a, nil
}

// Options returns the authorization options the client was built with.
func (a *Authorization) Options() *options.Authorization { return a.options }

// Authorize panics: the base type has no grant. It exists so that calling it
// through a bare Authorization fails loudly instead of sending a request.
func (a *Authorization) Authorize(ctx context.Context) (*model.Access, error) {
	panic(&pkgerrs.StateError{
		Operation: "authorize",
		Message:   "Authorize is not defined for the base Authorization type; use Script or Userless",
	})
}

// requestAccess posts a grant to the token endpoint and wraps the answer as an Access.
// The endpoint reports rejected credentials with a 200 and an "error" member,
// so a body without an access token is a failure whatever its status.
func (a *Authorization) requestAccess(ctx context.Context, grant url.Values) (*model.Access, error) {
	a.logger.DebugContext(ctx, "requesting access token",
		"grant_type", grant.Get("grant_type"),
		"options", a.options,
	)

	v, resp, err := a.json(ctx, http.MethodPost, accessTokenPath, grant)
	if err != nil {
		return nil, err
	}

	if token, ok := v.Get("access_token"); !ok || token.String() == "" {
		msg := "access token missing from response"
		if reason, ok := v.Get("error"); ok {
			msg = "authorization rejected: " + reason.String()
		}
		return nil, &pkgerrs.ResponseError{Response: resp, Message: msg}
	}

	obj, err := model.Build("access", a.owner, v)
	if err != nil {
		return nil, &pkgerrs.ResponseError{Response: resp, Message: err.Error()}
	}
	access := obj.(*model.Access)

	a.logger.DebugContext(ctx, "access token granted", "access", access)
	return access, nil
}

// Script authorizes as the owner of a "script" app using the password grant.
type Script struct {
	*Authorization
}

// NewScript returns a password-grant strategy. opts must carry a username and password.
func NewScript(opts *options.Authorization, clientOpts ...ClientOption) (*Script, error) {
	a, err := NewAuthorization(opts, clientOpts...)
	if err != nil {
		return nil, err
	}
	if opts.Username() == "" {
		return nil, &pkgerrs.ConfigError{Field: options.KeyUsername, Message: "username is required for script authorization"}
	}
	if opts.Password() == "" {
		return nil, &pkgerrs.ConfigError{Field: options.KeyPassword, Message: "password is required for script authorization"}
	}

	s := &Script{Authorization: a}
	a.owner = s
	return s, nil
}

// Authorize sends grant_type=password with the configured username and password.
func (s *Script) Authorize(ctx context.Context) (*model.Access, error) {
	return s.requestAccess(ctx, url.Values{
		"grant_type": {"password"},
		"username":   {s.options.Username()},
		"password":   {s.options.Password()},
	})
}

// Userless authorizes the app itself using the client credentials grant.
// The resulting token acts on behalf of no user.
type Userless struct {
	*Authorization
}

// NewUserless returns a client-credentials strategy.
func NewUserless(opts *options.Authorization, clientOpts ...ClientOption) (*Userless, error) {
	a, err := NewAuthorization(opts, clientOpts...)
	if err != nil {
		return nil, err
	}

	u := &Userless{Authorization: a}
	a.owner = u
	return u, nil
}

// Authorize sends grant_type=client_credentials.
func (u *Userless) Authorize(ctx context.Context) (*model.Access, error) {
	return u.requestAccess(ctx, url.Values{"grant_type": {"client_credentials"}})
}
