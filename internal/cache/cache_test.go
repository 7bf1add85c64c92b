package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheGetSet(t *testing.T) {
	c := New()

	_, ok := c.Get("/profile")
	assert.False(t, ok)

	c.Set("/profile", []byte("body"))

	data, ok := c.Get("/profile")
	assert.True(t, ok)
	assert.Equal(t, []byte("body"), data)
}

func TestCacheRevalidateDropsPrefix(t *testing.T) {
	c := New()
	c.Set("/cover", []byte("list"))
	c.Set("/cover/abc", []byte("detail"))
	c.Set("/profile", []byte("profile"))

	c.Revalidate("/cover")

	_, ok := c.Get("/cover")
	assert.False(t, ok)
	_, ok = c.Get("/cover/abc")
	assert.False(t, ok)
	_, ok = c.Get("/profile")
	assert.True(t, ok)
}

func TestCacheRevalidateDoesNotMatchSiblings(t *testing.T) {
	c := New()
	c.Set("/cover", []byte("list"))
	c.Set("/coverage", []byte("other"))

	c.Revalidate("/cover")

	_, ok := c.Get("/coverage")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}
