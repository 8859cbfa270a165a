package internal

import (
	"net/http"
	"sync"
)

// Connection lazily builds the *http.Client one API client uses for its whole
// lifetime. Building happens exactly once, even when Client is called
// concurrently from multiple goroutines.
type Connection struct {
	once   sync.Once
	build  func() *http.Client
	client *http.Client
	ready  chan struct{}
}

// NewConnection returns a Connection that calls build on first use.
func NewConnection(build func() *http.Client) *Connection {
	return &Connection{
		build: build,
		ready: make(chan struct{}),
	}
}

// Client returns the connection's *http.Client, building it on the first call.
func (c *Connection) Client() *http.Client {
	c.once.Do(func() {
		c.client = c.build()
		close(c.ready)
	})

	// Wait for initialization to complete if called concurrently
	<-c.ready
	return c.client
}

// IsInitialized returns true once the *http.Client has been built.
func (c *Connection) IsInitialized() bool {
	select {
	case <-c.ready:
		return true
	default:
		return false
	}
}

// CloseIdle releases idle keep-alive connections if the client was built.
func (c *Connection) CloseIdle() {
	if !c.IsInitialized() {
		return
	}
	c.client.CloseIdleConnections()
}
