package cache

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("table", "data/raw/a.csv")

	assert.True(t, strings.HasPrefix(a, "fiforecast:v1:table:"))
	assert.Equal(t, a, CacheKey("table", "data/raw/a.csv"))
	assert.NotEqual(t, a, CacheKey("table", "data/raw/b.csv"))
	assert.NotEqual(t, a, CacheKey("views", "data/raw/a.csv"))
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()

	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Set("k", 42)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	c.Delete("k")
	_, ok = c.Get("k")
	assert.False(t, ok)

	c.Set("a", 1)
	c.Set("b", 2)
	assert.Equal(t, 2, c.Len())
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestLoad_FillsOnce(t *testing.T) {
	c := NewMemoryCache()
	calls := 0
	fill := func() (string, error) {
		calls++
		return "parsed", nil
	}

	for i := 0; i < 3; i++ {
		v, err := Load(c, "k", fill)
		require.NoError(t, err)
		assert.Equal(t, "parsed", v)
	}
	assert.Equal(t, 1, calls)
}

func TestLoad_ErrorsNotCached(t *testing.T) {
	c := NewMemoryCache()
	boom := errors.New("boom")

	_, err := Load(c, "k", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := Load(c, "k", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
