// Package cache provides a small generic LRU cache.
//
// The renderer keeps the noise images of recently used viewport sizes in a
// Cache, so resizing back and forth does not rerun the noise stage.
//
//	c := cache.New[string, int](4)
//	c.Set("key", 42)
//	value, ok := c.Get("key")
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
