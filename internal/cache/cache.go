// Package cache keeps finished reports so that repeating a claim against the
// same evidence corpus skips retrieval and analysis.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/tagline/internal/model"
)

const keyPrefix = "tagline:v1:"

// Cache defines the byte-level store behind the report cache
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives the cache key for a claim analyzed against a corpus.
// Any change to the corpus fingerprint or to one of the three input
// fields yields a different key.
func Key(corpusFingerprint string, in model.ClaimInput) string {
	h := sha256.New()
	for _, part := range []string{corpusFingerprint, in.BrandName, in.Tagline, in.Claim} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// New builds the store described by cfg: nil when disabled, memory only
// without a directory, memory in front of disk otherwise
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	memory := NewMemoryCache(cfg.TTL, 10*time.Minute)
	if cfg.Dir == "" {
		return memory
	}
	return NewLayeredCache(memory, NewDiskCache(cfg.Dir, cfg.TTL))
}
