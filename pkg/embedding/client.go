package embedding

import (
	"context"
	"time"

	"ai-parenting-be/internal/pkg/logger"
)

// Client wraps a provider with the engine-wide embedding policy: a fixed
// dimension, a per-call timeout, and graceful degradation. When the provider
// fails or times out, Embed returns the all-zero vector of dimension D so that
// downstream ranking degrades to "everything equally distant" instead of
// failing the turn.
type Client struct {
	provider  EmbeddingProvider
	dimension int
	timeout   time.Duration
	log       logger.ILogger
}

func NewClient(provider EmbeddingProvider, dimension int, timeout time.Duration, log logger.ILogger) *Client {
	return &Client{
		provider:  provider,
		dimension: dimension,
		timeout:   timeout,
		log:       log,
	}
}

// Dimension returns the fixed vector dimension D.
func (c *Client) Dimension() int {
	return c.dimension
}

// ZeroVector returns the deterministic neutral vector of dimension D.
func (c *Client) ZeroVector() []float32 {
	return make([]float32, c.dimension)
}

type embedResult struct {
	res *EmbeddingResponse
	err error
}

// Embed encodes text, never returning an error: failures and timeouts degrade
// to the zero vector. The second return value reports whether the vector came
// from the provider.
func (c *Client) Embed(ctx context.Context, text string, taskType string) ([]float32, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// The provider interface is synchronous; bound it with the context here.
	ch := make(chan embedResult, 1)
	go func() {
		res, err := c.provider.Generate(text, taskType)
		ch <- embedResult{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		c.log.Warn("embedding", "embedding call timed out, using zero vector", map[string]interface{}{
			"error": ctx.Err().Error(),
		})
		return c.ZeroVector(), false
	case out := <-ch:
		if out.err != nil {
			c.log.Warn("embedding", "embedding call failed, using zero vector", map[string]interface{}{
				"error": out.err.Error(),
			})
			return c.ZeroVector(), false
		}
		values := out.res.Embedding.Values
		if len(values) != c.dimension {
			values = c.fitDimension(values)
		}
		return values, true
	}
}

// fitDimension pads or truncates a provider vector to dimension D. Providers
// with a different native dimension (e.g. 768 vs 1536) stay usable because
// comparisons only ever happen between vectors from the same provider.
func (c *Client) fitDimension(values []float32) []float32 {
	fitted := make([]float32, c.dimension)
	copy(fitted, values)
	return fitted
}
