package main

import "sync"

// FormatCache memoizes a Formatter so re-rendering the card list on every
// keystroke does not re-run the Markdown renderer.
type FormatCache struct {
	mu        sync.RWMutex
	formatter Formatter
	rendered  map[string]string
}

// NewFormatCache wraps f with an empty cache
func NewFormatCache(f Formatter) *FormatCache {
	return &FormatCache{formatter: f, rendered: make(map[string]string)}
}

// Name returns the wrapped formatter's name
func (c *FormatCache) Name() string {
	return c.formatter.Name()
}

// Plain passes through uncached
func (c *FormatCache) Plain(text string) string {
	return c.formatter.Plain(text)
}

// Format returns the cached rendering of text, rendering it on a miss
func (c *FormatCache) Format(text string) string {
	if text == "" {
		return ""
	}

	if out, ok := c.get(text); ok {
		return out
	}

	out := c.formatter.Format(text)
	c.set(text, out)
	return out
}

func (c *FormatCache) get(text string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out, ok := c.rendered[text]
	return out, ok
}

func (c *FormatCache) set(text, out string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rendered[text] = out
}

// Len returns the number of cached renderings
func (c *FormatCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rendered)
}
