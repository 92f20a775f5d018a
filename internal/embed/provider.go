// Package embed wraps external sentence-embedding services. Every failure is
// reported as ErrUnavailable so callers can fall back to keyword scoring.
package embed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrUnavailable marks a provider failure that callers should recover from
var ErrUnavailable = errors.New("embedding provider unavailable")

// Provider defines the interface for embedding providers
type Provider interface {
	// Name returns the provider name, used as cache namespace and limiter key
	Name() string

	// Embed returns the embedding vector for text
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config holds embedding provider configuration
type Config struct {
	// Provider name: "openai", "ollama", "" (disabled)
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama or an OpenAI-compatible gateway)
	BaseURL string

	// Timeout bounds each upstream call
	Timeout time.Duration

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// unavailable wraps err so errors.Is(err, ErrUnavailable) holds
func unavailable(provider string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, provider, err)
}

// Cosine returns the cosine similarity of a and b clamped to [0,1]. Vectors of
// different length or zero norm score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(sim) || sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
