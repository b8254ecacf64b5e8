// Package cache provides TTL-based response caching keyed by call
// signature. EDGAR data changes on filing cadence, not request cadence, so
// generous TTLs cut most of the outbound traffic.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Region names. Each region carries its own TTL: filings move faster than
// firm identity, press moves faster than both.
const (
	RegionFirms   = "firms"
	RegionFilings = "filings"
	RegionADV     = "adv"
	RegionRSS     = "rss"
	RegionS1      = "s1"
)

// Store is a set of named TTL cache regions.
type Store struct {
	regions map[string]*ttlcache.Cache[string, any]
}

// TTLs maps region name to entry lifetime.
type TTLs map[string]time.Duration

// DefaultTTLs mirror the source-freshness tiers: firm identity daily,
// filings every few hours, press every half hour.
func DefaultTTLs() TTLs {
	return TTLs{
		RegionFirms:   24 * time.Hour,
		RegionFilings: 6 * time.Hour,
		RegionADV:     24 * time.Hour,
		RegionRSS:     30 * time.Minute,
		RegionS1:      24 * time.Hour,
	}
}

// New builds a Store with one region per TTL entry and starts the expiry
// loops.
func New(ttls TTLs) *Store {
	if ttls == nil {
		ttls = DefaultTTLs()
	}
	s := &Store{regions: make(map[string]*ttlcache.Cache[string, any], len(ttls))}
	for name, ttl := range ttls {
		region := ttlcache.New[string, any](
			ttlcache.WithTTL[string, any](ttl),
			ttlcache.WithDisableTouchOnHit[string, any](),
		)
		go region.Start()
		s.regions[name] = region
	}
	return s
}

// Key derives a stable cache key from a function name and its arguments.
// Arguments are JSON-encoded so any comparable call signature works.
func Key(fn string, args ...any) string {
	encoded, err := json.Marshal(args)
	if err != nil {
		encoded = []byte(fmt.Sprint(args...))
	}
	sum := md5.Sum(encoded)
	return fn + ":" + hex.EncodeToString(sum[:])
}

// Get returns the cached value for key in region, if present and fresh.
func (s *Store) Get(region, key string) (any, bool) {
	r, ok := s.regions[region]
	if !ok {
		return nil, false
	}
	item := r.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Set stores a value under key in region at the region's TTL. Unknown
// regions are a no-op so a misconfigured caller degrades to uncached.
func (s *Store) Set(region, key string, value any) {
	if r, ok := s.regions[region]; ok {
		r.Set(key, value, ttlcache.DefaultTTL)
	}
}

// Do returns the cached value for key, or computes, stores, and returns
// it. Errors are never cached.
func Do[T any](s *Store, region, key string, fetch func() (T, error)) (T, error) {
	if cached, ok := s.Get(region, key); ok {
		if v, ok := cached.(T); ok {
			return v, nil
		}
	}
	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}
	s.Set(region, key, v)
	return v, nil
}

// RegionStats is a point-in-time snapshot of one region.
type RegionStats struct {
	Entries    int    `json:"entries"`
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
	Insertions uint64 `json:"insertions"`
	Evictions  uint64 `json:"evictions"`
}

// Stats reports per-region hit/miss counters.
func (s *Store) Stats() map[string]RegionStats {
	out := make(map[string]RegionStats, len(s.regions))
	for name, r := range s.regions {
		m := r.Metrics()
		out[name] = RegionStats{
			Entries:    r.Len(),
			Hits:       m.Hits,
			Misses:     m.Misses,
			Insertions: m.Insertions,
			Evictions:  m.Evictions,
		}
	}
	return out
}

// Stop halts every region's expiry loop.
func (s *Store) Stop() {
	for _, r := range s.regions {
		r.Stop()
	}
}
