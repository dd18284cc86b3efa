package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGetExpire(t *testing.T) {
	c, err := NewCache(10, 20*time.Millisecond)
	require.NoError(t, err)

	c.Set("announcement:1", "cached")
	assert.Equal(t, "cached", c.Get("announcement:1"))

	time.Sleep(30 * time.Millisecond)
	assert.Nil(t, c.Get("announcement:1"))
}

func TestCache_DeletePrefix(t *testing.T) {
	c, err := NewCache(10, time.Minute)
	require.NoError(t, err)

	c.Set("announcement:1:a", 1)
	c.Set("announcement:1:b", 2)
	c.Set("announcement:2:a", 3)

	c.DeletePrefix("announcement:1:")

	assert.Nil(t, c.Get("announcement:1:a"))
	assert.Nil(t, c.Get("announcement:1:b"))
	assert.Equal(t, 3, c.Get("announcement:2:a"))
}

func TestRenderMarkdown_Sanitizes(t *testing.T) {
	out := RenderMarkdown("**Yard sale** <script>alert(1)</script>\n\n![map](https://example.com/map.png)")

	assert.Contains(t, out, "<strong>Yard sale</strong>")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `loading="lazy"`)
}

func TestPlainExcerpt(t *testing.T) {
	assert.Equal(t, "Lost cat near", PlainExcerpt("<p>Lost cat near</p>", 20))
	assert.Equal(t, "Lost...", PlainExcerpt("<p>Lost cat near</p>", 4))
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	for _, in := range []string{"", "0", "-3", "abc"} {
		_, ok := ParseID(in)
		assert.False(t, ok, in)
	}
}
