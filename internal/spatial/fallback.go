package spatial

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SiperumID/Siperum-Backend/internal/metrics"
	"github.com/SiperumID/Siperum-Backend/internal/region"
)

// FallbackNames carries the named jurisdiction of a record that has no
// coordinates. Any subset of the fields may be present.
type FallbackNames struct {
	Village  string `json:"village"`
	District string `json:"district"`
	Regency  string `json:"regency"`
	Province string `json:"province"`
}

// CentroidSource provides the precomputed name->centroid rows; production
// passes *region.Store.
type CentroidSource interface {
	Centroids(ctx context.Context) ([]region.Centroid, error)
}

// CentroidCache is the read-through cache over the name->centroid index. The
// in-process index is rebuilt lazily from the region store after Invalidate;
// resolved coordinates are additionally cached in Redis so restarts stay warm.
// It replaces the module-level singleton the web tier used to keep.
type CentroidCache struct {
	regions CentroidSource
	rdb     *redis.Client // optional
	ttl     time.Duration

	mu        sync.RWMutex
	qualified map[string]region.Centroid   // level|name|parentLabel
	byName    map[string][]region.Centroid // level|name
	loaded    bool
}

func NewCentroidCache(regions CentroidSource, rdb *redis.Client) *CentroidCache {
	return &CentroidCache{regions: regions, rdb: rdb, ttl: 6 * time.Hour}
}

// Invalidate drops the index; the next lookup rebuilds it. Call after a
// region-data refresh.
func (c *CentroidCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.loaded = false
	c.qualified = nil
	c.byName = nil
	c.mu.Unlock()
	if c.rdb != nil {
		// Best effort; stale redis entries expire on their own TTL anyway.
		iter := c.rdb.Scan(ctx, 0, "centroid:*", 0).Iterator()
		for iter.Next(ctx) {
			c.rdb.Del(ctx, iter.Val())
		}
	}
}

func (c *CentroidCache) ensureLoaded(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}

	rows, err := c.regions.Centroids(ctx)
	if err != nil {
		return err
	}
	qualified := make(map[string]region.Centroid, len(rows))
	byName := make(map[string][]region.Centroid)
	for _, row := range rows {
		qk := string(row.Level) + "|" + row.Name + "|" + row.ParentLabel
		if _, dup := qualified[qk]; !dup {
			qualified[qk] = row
		}
		nk := string(row.Level) + "|" + row.Name
		byName[nk] = append(byName[nk], row)
	}

	c.mu.Lock()
	c.qualified = qualified
	c.byName = byName
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// lookup tries the qualified key first, then falls back to a name-only match.
func (c *CentroidCache) lookup(level region.Level, name, parentLabel string) (region.Centroid, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if hit, ok := c.qualified[string(level)+"|"+name+"|"+parentLabel]; ok {
		return hit, true
	}
	if hits := c.byName[string(level)+"|"+name]; len(hits) > 0 {
		return hits[0], true
	}
	return region.Centroid{}, false
}

// ResolveFallbackCoordinates approximates a record's coordinates from its
// named jurisdiction: village centroid if resolvable, else district, else
// regency, else province. A miss returns (nil, nil); it is not an error for a
// record to name a jurisdiction the index does not know.
func (r *Resolver) ResolveFallbackCoordinates(ctx context.Context, names FallbackNames) (*LatLng, error) {
	cacheKey := "centroid:" + region.NormalizeName(
		names.Village+"|"+names.District+"|"+names.Regency+"|"+names.Province)
	if r.centroids.rdb != nil {
		if raw, err := r.centroids.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var ll LatLng
			if json.Unmarshal(raw, &ll) == nil {
				metrics.CentroidCacheHitsTotal.Inc()
				return &ll, nil
			}
		}
	}
	metrics.CentroidCacheMissesTotal.Inc()

	if err := r.centroids.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	attempts := []struct {
		level       region.Level
		name        string
		parentLabel string
	}{
		{region.LevelVillage, names.Village, names.District + " " + names.Regency},
		{region.LevelDistrict, names.District, names.Regency},
		{region.LevelRegency, names.Regency, names.Province},
		{region.LevelProvince, names.Province, ""},
	}
	for _, a := range attempts {
		if a.name == "" {
			continue
		}
		hit, ok := r.centroids.lookup(a.level, region.NormalizeName(a.name), region.NormalizeName(a.parentLabel))
		if !ok {
			continue
		}
		ll := &LatLng{Lat: hit.Lat, Lng: hit.Lng}
		if r.centroids.rdb != nil {
			if raw, err := json.Marshal(ll); err == nil {
				r.centroids.rdb.Set(ctx, cacheKey, raw, r.centroids.ttl)
			}
		}
		return ll, nil
	}
	return nil, nil
}
