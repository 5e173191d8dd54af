package cache

import (
	"context"
	"encoding/json"
	"sync"
)

// Local is an in-process projection cache without expiry. It pairs with the memory store driver,
// whose data does not outlive the process either.
type Local struct {
	mu      sync.Mutex
	entries map[string][]byte
	version int64
}

// NewLocal returns an empty Local cache.
func NewLocal() *Local {
	return &Local{entries: make(map[string][]byte)}
}

func (c *Local) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	data, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dst)
}

func (c *Local) SetJSON(_ context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = data
	c.mu.Unlock()
	return nil
}

func (c *Local) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.mu.Unlock()
	return nil
}

func (c *Local) CatalogVersion(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version, nil
}

func (c *Local) BumpCatalogVersion(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	return c.version, nil
}

// Len reports the number of live entries.
func (c *Local) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
