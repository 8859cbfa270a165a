package redd

import (
	"net/url"
	"sort"
	"sync"

	"github.com/jamesprial/go-redd/internal"
	pkgerrs "github.com/jamesprial/go-redd/pkg/errors"
	"github.com/jamesprial/go-redd/pkg/model"
	"github.com/jamesprial/go-redd/pkg/options"
)

// apiParams are added to every authenticated request and win over caller values.
var apiParams = url.Values{
	"api_type": {"json"},
	"raw_json": {"1"},
}

// Authenticated is a client for the OAuth API host. Every request carries the
// access token as a bearer token plus api_type=json and raw_json=1.
//
// API and every namespace embed Authenticated; it declares no namespaces itself.
type Authenticated struct {
	*Client
	options *options.API
}

func newAuthenticated(opts *options.API, clientOpts []ClientOption) (*Authenticated, error) {
	if opts == nil {
		return nil, &pkgerrs.ConfigError{Field: "options", Message: "API options must be provided"}
	}
	if opts.Access() == nil {
		return nil, &pkgerrs.ConfigError{Field: options.KeyAccess, Message: "access must be provided"}
	}

	layers := []internal.Layer{internal.Bearer(opts.Access().Token())}
	c, err := newClient(opts, layers, apiParams, clientOpts)
	if err != nil {
		return nil, err
	}

	a := &Authenticated{Client: c, options: opts}
	c.owner = a
	return a, nil
}

// Options returns the API options the client was built with.
func (a *Authenticated) Options() *options.API { return a.options }

// Access returns the access token the client authenticates with.
func (a *Authenticated) Access() *model.Access { return a.options.Access() }

// derive returns a sibling client sharing a's options with its own connection.
func (a *Authenticated) derive() *Authenticated {
	d := &Authenticated{Client: a.Client.derive(), options: a.options}
	d.owner = d
	return d
}

// namespaceSet maps namespace names to constructors. Each API client type
// declares its own set; sets are never shared between types.
type namespaceSet map[string]func(parent *Authenticated) any

func (s namespaceSet) names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// namespaceCache holds the namespaces one client has built, at most one per name.
type namespaceCache struct {
	mu       sync.Mutex
	declared namespaceSet
	loaded   map[string]any
}

func newNamespaceCache(declared namespaceSet) *namespaceCache {
	return &namespaceCache{
		declared: declared,
		loaded:   make(map[string]any, len(declared)),
	}
}

// load returns the cached namespace for name, building it from parent on first use.
func (c *namespaceCache) load(name string, parent *Authenticated) any {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ns, ok := c.loaded[name]; ok {
		return ns
	}

	ctor, ok := c.declared[name]
	if !ok {
		panic(&pkgerrs.StateError{Operation: "namespace", Message: "undeclared namespace " + name})
	}

	ns := ctor(parent.derive())
	c.loaded[name] = ns
	parent.logger.Debug("namespace loaded", "namespace", name)
	return ns
}

// close releases the idle connections of every namespace built so far.
func (c *namespaceCache) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ns := range c.loaded {
		if closer, ok := ns.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}

// loadNamespace returns the namespace name of api as its concrete type.
func loadNamespace[T any](api *API, name string) T {
	return api.namespaces.load(name, api.Authenticated).(T)
}

// apiNamespaces are the namespaces reachable from API.
var apiNamespaces = namespaceSet{
	"account": func(parent *Authenticated) any { return newAccount(parent) },
}

// API is the entry point for authenticated calls. Endpoint groups are exposed
// as namespaces (see Account), built on first access and cached for the
// lifetime of the API.
type API struct {
	*Authenticated
	namespaces *namespaceCache
}

// NewAPI returns an API client for opts, which must carry an access token.
func NewAPI(opts *options.API, clientOpts ...ClientOption) (*API, error) {
	a, err := newAuthenticated(opts, clientOpts)
	if err != nil {
		return nil, err
	}

	api := &API{
		Authenticated: a,
		namespaces:    newNamespaceCache(apiNamespaces),
	}
	a.owner = api
	return api, nil
}

// Namespaces returns the names of the namespaces API declares, sorted.
func (api *API) Namespaces() []string { return api.namespaces.declared.names() }

// Close releases idle connections of the API and of every loaded namespace.
func (api *API) Close() {
	api.Authenticated.Close()
	api.namespaces.close()
}

// Account returns the account namespace.
func (api *API) Account() *Account { return loadNamespace[*Account](api, "account") }
