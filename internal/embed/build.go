package embed

import (
	"time"

	"github.com/ppiankov/politikcred/internal/cache"
	"github.com/ppiankov/politikcred/internal/model"
	"github.com/ppiankov/politikcred/internal/worker"
)

// Build assembles the configured provider: throttled, then cached, so cache
// hits never wait on the limiter. It returns nil when embeddings are disabled.
func Build(cfg *model.Config) (Provider, error) {
	base, err := NewProvider(ConfigFromModel(cfg.Embedding, cfg.HTTP))
	if err != nil || base == nil {
		return nil, err
	}

	ec := cfg.Embedding
	limiter := worker.NewLimiter(ec.RequestsPerSecond, 1)
	throttled := NewThrottledProvider(base, limiter, ec.Delay, ec.Timeout)

	c := cache.NewLayeredCache(time.Hour, ec.CacheDir, ec.CacheTTL)
	return NewCachedProvider(throttled, c, ec.Model, ec.CacheTTL), nil
}
