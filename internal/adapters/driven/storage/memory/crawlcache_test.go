package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

func TestCrawlCache_PutAndGet(t *testing.T) {
	cache := NewCrawlCache()

	cache.Put(&domain.CrawledDocument{URL: "https://example.com/a", Title: "A"})

	doc, ok := cache.Get("https://example.com/a")
	require.True(t, ok)
	assert.Equal(t, "A", doc.Title)
	assert.Equal(t, 1, cache.Len())

	_, ok = cache.Get("https://example.com/b")
	assert.False(t, ok)
}

func TestCrawlCache_Put_IgnoresEmpty(t *testing.T) {
	cache := NewCrawlCache()
	cache.Put(nil)
	cache.Put(&domain.CrawledDocument{})
	assert.Equal(t, 0, cache.Len())
}

func TestCrawlCache_Get_ReturnsCopy(t *testing.T) {
	cache := NewCrawlCache()
	cache.Put(&domain.CrawledDocument{URL: "u", Title: "original"})

	doc, _ := cache.Get("u")
	doc.Title = "changed"

	again, _ := cache.Get("u")
	assert.Equal(t, "original", again.Title)
}
