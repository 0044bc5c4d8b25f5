package textlayout

import "sync"

// FontMetrics measures text for one loaded (font, size) pair.
type FontMetrics interface {
	TextWidth(text string) float64
}

// FontLoader loads metrics for a font file at a size.
type FontLoader func(fontRef string, size int) (FontMetrics, error)

type fontKey struct {
	ref  string
	size int
}

// CachingMeasurer memoizes loaded font metrics keyed by (fontRef, size).
// Load failures are cached too, so a missing font file is probed once; those
// entries fall back to the estimate. The cache is bounded; when full, an
// arbitrary entry is evicted. Safe for concurrent use.
type CachingMeasurer struct {
	load     FontLoader
	fallback Measurer
	max      int

	mu    sync.Mutex
	cache map[fontKey]FontMetrics
}

// NewCachingMeasurer builds a measurer over loader holding at most maxEntries
// loaded fonts. maxEntries <= 0 selects a default of 32.
func NewCachingMeasurer(loader FontLoader, maxEntries int) *CachingMeasurer {
	if maxEntries <= 0 {
		maxEntries = 32
	}
	return &CachingMeasurer{
		load:     loader,
		fallback: EstimateMeasurer{},
		max:      maxEntries,
		cache:    make(map[fontKey]FontMetrics),
	}
}

func (c *CachingMeasurer) LineWidth(text, fontRef string, size int) float64 {
	metrics := c.metricsFor(fontRef, size)
	if metrics == nil {
		return c.fallback.LineWidth(text, fontRef, size)
	}
	return metrics.TextWidth(text)
}

func (c *CachingMeasurer) metricsFor(fontRef string, size int) FontMetrics {
	key := fontKey{ref: fontRef, size: size}

	c.mu.Lock()
	defer c.mu.Unlock()

	if metrics, ok := c.cache[key]; ok {
		return metrics
	}

	var metrics FontMetrics
	if c.load != nil {
		loaded, err := c.load(fontRef, size)
		if err == nil {
			metrics = loaded
		}
	}

	if len(c.cache) >= c.max {
		for k := range c.cache {
			delete(c.cache, k)
			break
		}
	}
	c.cache[key] = metrics
	return metrics
}
