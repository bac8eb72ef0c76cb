package geometry

import (
	"context"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/matzehuels/b4wexport/pkg/cache"
	"github.com/matzehuels/b4wexport/pkg/observability"
)

const keyType = "submesh"

// encMode uses Core Deterministic Encoding so equal geometry always hashes
// to the same cache key.
var encMode cbor.EncMode

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("geometry: CBOR encoder initialization failed: " + err.Error())
	}
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("geometry: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("geometry: zstd decoder initialization failed: " + err.Error())
	}
}

// CachedCooker memoizes another cooker in a byte cache. Cached values are
// CBOR-encoded submeshes compressed with zstd.
//
// Cache failures never fail a cook: a broken read is a miss and a broken
// write is dropped.
type CachedCooker struct {
	Inner Cooker
	Cache cache.Cache
	Keyer cache.Keyer
	TTL   time.Duration

	hits, misses int
}

// NewCachedCooker wraps inner. A nil keyer uses the default keyer.
func NewCachedCooker(inner Cooker, c cache.Cache, keyer cache.Keyer, ttl time.Duration) *CachedCooker {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CachedCooker{Inner: inner, Cache: c, Keyer: keyer, TTL: ttl}
}

// Cook implements [Cooker].
func (c *CachedCooker) Cook(ctx context.Context, req Request) (*Submesh, error) {
	key, err := c.Key(req)
	if err != nil {
		return nil, err
	}

	if data, ok, err := c.Cache.Get(ctx, key); err == nil && ok {
		if sm, err := decodeSubmesh(data); err == nil {
			c.hits++
			observability.Cache().OnCacheAccess(ctx, observability.CacheEvent{Op: observability.CacheHit, KeyType: keyType})
			return sm, nil
		}
	}
	c.misses++
	observability.Cache().OnCacheAccess(ctx, observability.CacheEvent{Op: observability.CacheMiss, KeyType: keyType})

	sm, err := c.Inner.Cook(ctx, req)
	if err != nil {
		return nil, err
	}
	if data, err := encodeSubmesh(sm); err == nil {
		if c.Cache.Set(ctx, key, data, c.TTL) == nil {
			observability.Cache().OnCacheAccess(ctx, observability.CacheEvent{Op: observability.CacheSet, KeyType: keyType, Size: len(data)})
		}
	}
	return sm, nil
}

// Key returns the cache key of a request.
func (c *CachedCooker) Key(req Request) (string, error) {
	raw, err := encMode.Marshal(req.Geometry)
	if err != nil {
		return "", fmt.Errorf("encode geometry of %q: %w", req.Mesh, err)
	}
	return c.Keyer.SubmeshKey(cache.Hash(raw), cache.SubmeshKeyOpts{
		CookerVersion: Version,
		MatIndex:      req.MatIndex,
		Flags:         uint32(req.Flags),
	}), nil
}

// Stats returns the number of cache hits and misses so far.
func (c *CachedCooker) Stats() (hits, misses int) { return c.hits, c.misses }

func encodeSubmesh(sm *Submesh) ([]byte, error) {
	raw, err := encMode.Marshal(sm)
	if err != nil {
		return nil, err
	}
	return zstdEncoder.EncodeAll(raw, nil), nil
}

func decodeSubmesh(data []byte) (*Submesh, error) {
	raw, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	var sm Submesh
	if err := cbor.Unmarshal(raw, &sm); err != nil {
		return nil, err
	}
	return &sm, nil
}
