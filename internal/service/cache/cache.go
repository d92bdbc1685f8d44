package cache

import "time"

// BytesCache is a minimal cache API storing raw bytes with TTL. The API
// handlers use it to cache marshaled analysis responses for their short
// freshness window.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
