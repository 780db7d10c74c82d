package cache

// Cache is the port for robots.txt rule caching.
// Entries live only for the duration of a crawl; there is no persistence.
type Cache[V any] interface {
	// Get returns the cached value and true if found.
	Get(key string) (V, bool)

	// Put stores value under key, overwriting any previous value.
	Put(key string, value V)
}
