package embed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ppiankov/politikcred/internal/cache"
	log "github.com/sirupsen/logrus"
)

// CachedProvider serves repeated texts from a cache. Vote descriptions are
// compared against every pending promise of an official, so most lookups hit.
type CachedProvider struct {
	next      Provider
	cache     cache.Cache
	namespace string
	ttl       time.Duration
}

// NewCachedProvider wraps next with c. model separates cache entries of
// different embedding models from the same provider.
func NewCachedProvider(next Provider, c cache.Cache, model string, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next:      next,
		cache:     c,
		namespace: next.Name() + "/" + model,
		ttl:       ttl,
	}
}

// Name returns the wrapped provider name
func (p *CachedProvider) Name() string {
	return p.next.Name()
}

// Embed returns a cached vector or asks the wrapped provider
func (p *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.Key(p.namespace, text)

	if data, ok := p.cache.Get(key); ok {
		var vec []float32
		if err := json.Unmarshal(data, &vec); err == nil && len(vec) > 0 {
			return vec, nil
		}
		_ = p.cache.Delete(key)
	}

	vec, err := p.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vec); err == nil {
		if err := p.cache.Set(key, data, p.ttl); err != nil {
			log.WithError(err).WithField("provider", p.Name()).Debug("Embedding cache write failed")
		}
	}
	return vec, nil
}
