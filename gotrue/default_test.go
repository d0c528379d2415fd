package gotrue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adeilh/gotrue-go/config"
)

func TestDefault(t *testing.T) {
	t.Setenv(config.EnvURL, "")
	t.Setenv(config.EnvHeaders, "")
	config.ClearProperty(config.PropertyURL)
	resetDefault()
	t.Cleanup(func() {
		config.ClearProperty(config.PropertyURL)
		resetDefault()
	})

	_, err := Default()
	require.ErrorIs(t, err, config.ErrMissingURL)

	// A failure is not remembered.
	config.SetProperty(config.PropertyURL, "http://localhost:9999")
	first, err := Default()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9999", first.Config().BaseURL.String())

	// Nor does later configuration replace the instance.
	config.SetProperty(config.PropertyURL, "http://other:9999")
	second, err := Default()
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestDefaultConcurrentInit(t *testing.T) {
	t.Setenv(config.EnvURL, "http://localhost:9999")
	t.Setenv(config.EnvHeaders, "")
	config.ClearProperty(config.PropertyURL)
	resetDefault()
	t.Cleanup(resetDefault)

	const n = 16
	clients := make([]*Client, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := Default()
			if err == nil {
				clients[i] = c
			}
		}(i)
	}
	wg.Wait()

	require.NotNil(t, clients[0])
	for _, c := range clients {
		require.Same(t, clients[0], c)
	}
}
