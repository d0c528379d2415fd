package config

import "sync"

// Properties is a process-local registry of string settings that embedding
// code can change at runtime. It is safe for concurrent use.
type Properties struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewProperties() *Properties {
	return &Properties{values: make(map[string]string)}
}

var defaultProperties = NewProperties()

// DefaultProperties returns the process-wide registry consulted by Resolve.
func DefaultProperties() *Properties { return defaultProperties }

func (p *Properties) Set(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
}

func (p *Properties) Lookup(key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

func (p *Properties) Get(key string) string {
	v, _ := p.Lookup(key)
	return v
}

func (p *Properties) Clear(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.values, key)
}

// Reset drops every property.
func (p *Properties) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = make(map[string]string)
}

// SetProperty sets a property on the process-wide registry.
func SetProperty(key, value string) { defaultProperties.Set(key, value) }

// ClearProperty removes a property from the process-wide registry.
func ClearProperty(key string) { defaultProperties.Clear(key) }

// Property reads a property from the process-wide registry.
func Property(key string) string { return defaultProperties.Get(key) }
