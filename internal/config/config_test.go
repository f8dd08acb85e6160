package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSiteYAML(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.yaml"), []byte(content), 0o644))
}

func TestLoadSiteConfig_MissingFile_UsesDefaults(t *testing.T) {
	cfg, err := LoadSiteConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, NewDefaultConfig(), cfg)
}

func TestLoadSiteConfig_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	writeSiteYAML(t, dir, "title: Portfolio\nauthor: Art\nbaseurl: /\nbuild:\n  unsafe: true\nserve:\n  port: 8080\n")

	cfg, err := LoadSiteConfig(dir)
	require.NoError(t, err)
	require.Equal(t, "Portfolio", cfg.Site.Title)
	require.Equal(t, "Art", cfg.Site.Author)
	require.Equal(t, "/", cfg.Site.BaseURL)
	require.True(t, cfg.Build.Unsafe)
	require.False(t, cfg.Build.Clean)
	require.Equal(t, 8080, cfg.Serve.Port)
}

func TestLoadSiteConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeSiteYAML(t, dir, "title: From File\n")
	t.Setenv("ROUGH_TITLE", "From Env")
	t.Setenv("ROUGH_BUILD_DRAFTS", "true")

	cfg, err := LoadSiteConfig(dir)
	require.NoError(t, err)
	require.Equal(t, "From Env", cfg.Site.Title)
	require.True(t, cfg.Build.Drafts)
}

func TestLoadSiteConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeSiteYAML(t, dir, "title: [unclosed\n")

	_, err := LoadSiteConfig(dir)
	require.Error(t, err)
}
