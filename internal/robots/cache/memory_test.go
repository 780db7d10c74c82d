package cache_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/rohmanhakim/a11y-crawler/internal/robots/cache"
	"github.com/stretchr/testify/assert"
)

func TestMemoryCache_GetPut(t *testing.T) {
	c := cache.NewMemoryCache[string]()

	_, found := c.Get("https://example.test")
	assert.False(t, found)

	c.Put("https://example.test", "rules")
	value, found := c.Get("https://example.test")
	assert.True(t, found)
	assert.Equal(t, "rules", value)

	c.Put("https://example.test", "newer rules")
	value, _ = c.Get("https://example.test")
	assert.Equal(t, "newer rules", value)
	assert.Equal(t, 1, c.Size())
}

func TestMemoryCache_StoresNilPointers(t *testing.T) {
	c := cache.NewMemoryCache[*int]()
	c.Put("allow-all", nil)

	value, found := c.Get("allow-all")
	assert.True(t, found)
	assert.Nil(t, value)
}

func TestMemoryCache_Clear(t *testing.T) {
	c := cache.NewMemoryCache[int]()
	c.Put("a", 1)
	c.Put("b", 2)
	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := cache.NewMemoryCache[int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			c.Put(key, i)
			c.Get(key)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, c.Size())
}
