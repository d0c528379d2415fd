package gotrue

import (
	"sync"
	"sync/atomic"
)

var (
	defaultMu     sync.Mutex
	defaultClient atomic.Pointer[Client]
)

// Default returns a process-wide Client built from properties and the
// environment. A failed build is not remembered, so a later call can succeed
// once the configuration is fixed. After the first success the same Client
// is returned forever.
func Default() (*Client, error) {
	if c := defaultClient.Load(); c != nil {
		return c, nil
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if c := defaultClient.Load(); c != nil {
		return c, nil
	}
	c, err := New()
	if err != nil {
		return nil, err
	}
	defaultClient.Store(c)
	return c, nil
}
