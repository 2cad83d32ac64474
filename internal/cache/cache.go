// Package cache stores decoded source tables so reruns over unchanged files
// skip decoding.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ContentKey generates a cache key from file content
func ContentKey(content []byte) string {
	hash := sha256.Sum256(content)
	return "incidentmerge:v1:" + hex.EncodeToString(hash[:])
}

// NopCache never stores anything; used when caching is disabled
type NopCache struct{}

func (NopCache) Get(key string) ([]byte, bool)                         { return nil, false }
func (NopCache) Set(key string, value []byte, ttl time.Duration) error { return nil }
func (NopCache) Delete(key string) error                               { return nil }
func (NopCache) Clear() error                                          { return nil }
