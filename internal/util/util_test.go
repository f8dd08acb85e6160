package util

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeBaseHref(t *testing.T) {
	require.Equal(t, "", ComputeBaseHref("index.html"))
	require.Equal(t, "../", ComputeBaseHref(filepath.Join("projects", "a.html")))
	require.Equal(t, "../../", ComputeBaseHref(filepath.Join("projects", "x", "a.html")))
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"My First Post!":    "my-first-post",
		"  spaced   out  ":  "spaced-out",
		"Already-a-slug":    "already-a-slug",
		"Ünïcode & symbols": "ncode-symbols",
		"snake_case kept":   "snake_case-kept",
	}
	for in, want := range tests {
		require.Equal(t, want, Slugify(in), in)
	}
}

func TestIsWithin(t *testing.T) {
	dir, err := filepath.Abs("out")
	require.NoError(t, err)

	require.True(t, IsWithin("out", dir))
	require.True(t, IsWithin(filepath.Join("out", "a", "b.html"), dir))
	require.True(t, IsWithin(filepath.Join("site", "src"), "site"))
	require.True(t, IsWithin("site", "."))
	require.False(t, IsWithin("outside", dir))
	require.False(t, IsWithin(filepath.Join("..", "out"), dir))
	require.False(t, IsWithin(".", "site"))
}
