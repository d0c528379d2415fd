package gotruefake

import (
	"errors"
	"sync"

	"github.com/adeilh/gotrue-go/httpx"
)

var (
	once     sync.Once
	shared   *Service
	server   *httpx.TestServer
	setupErr error
)

// Setup starts the shared fake service once per test binary and returns it
// together with its base URL.
func Setup() (*Service, string, error) {
	once.Do(func() {
		shared = New(Options{})
		server = httpx.NewTestServer(shared.Handler())
		if server.BaseURL() == "" {
			setupErr = errors.New("gotruefake: test server did not start")
		}
	})
	if setupErr != nil {
		return nil, "", setupErr
	}
	return shared, server.BaseURL(), nil
}

// Teardown stops the shared service if it is running.
func Teardown() error {
	if setupErr != nil {
		return setupErr
	}
	if server != nil {
		server.Close()
	}
	return nil
}
