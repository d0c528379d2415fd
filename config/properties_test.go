package config

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPropertiesSetLookupClear(t *testing.T) {
	p := NewProperties()

	_, ok := p.Lookup("k")
	require.False(t, ok)

	p.Set("k", "v")
	require.Equal(t, "v", p.Get("k"))

	p.Clear("k")
	_, ok = p.Lookup("k")
	require.False(t, ok)

	p.Set("a", "1")
	p.Reset()
	require.Empty(t, p.Get("a"))
}

func TestPropertiesConcurrentAccess(t *testing.T) {
	p := NewProperties()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%4)
			p.Set(key, "v")
			_ = p.Get(key)
			if i%3 == 0 {
				p.Clear(key)
			}
		}(i)
	}
	wg.Wait()
}
