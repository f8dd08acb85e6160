// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// SiteConfig holds the site-wide values from site.yaml. Templates see it as
// `.Site`.
type SiteConfig struct {
	Title       string `mapstructure:"title"`
	Author      string `mapstructure:"author"`
	BaseURL     string `mapstructure:"baseurl"`
	Description string `mapstructure:"description"`
}

// BuildConfig controls a single build.
type BuildConfig struct {
	// Clean empties the output directory before writing.
	Clean bool `mapstructure:"clean"`
	// Unsafe disables HTML sanitizing of rendered Markdown.
	Unsafe bool `mapstructure:"unsafe"`
	// Drafts includes documents whose front matter sets `draft: true`.
	Drafts bool `mapstructure:"drafts"`
}

type ServeConfig struct {
	Port int `mapstructure:"port"`
}

type Config struct {
	Site  SiteConfig  `mapstructure:",squash"`
	Build BuildConfig `mapstructure:"build"`
	Serve ServeConfig `mapstructure:"serve"`
}

const (
	FileName  = "site"
	EnvPrefix = "ROUGH"
)

// NewDefaultConfig returns the values used when nothing overrides them.
func NewDefaultConfig() Config {
	return Config{
		Serve: ServeConfig{Port: 1313},
	}
}

// InitViper returns a viper instance layered as, highest first: flags bound
// later by the caller, ROUGH_* environment variables, <srcDir>/site.yaml,
// defaults. A missing site.yaml is fine; an unreadable or malformed one is not.
func InitViper(srcDir string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(srcDir)
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("could not read config in %s: %w", srcDir, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

func setDefaults(v *viper.Viper) {
	d := NewDefaultConfig()
	v.SetDefault("title", d.Site.Title)
	v.SetDefault("author", d.Site.Author)
	v.SetDefault("baseurl", d.Site.BaseURL)
	v.SetDefault("description", d.Site.Description)
	v.SetDefault("build.clean", d.Build.Clean)
	v.SetDefault("build.unsafe", d.Build.Unsafe)
	v.SetDefault("build.drafts", d.Build.Drafts)
	v.SetDefault("serve.port", d.Serve.Port)
}

// Load unmarshals the merged settings of v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse config: %w", err)
	}
	return cfg, nil
}

// LoadSiteConfig reads the configuration of the site rooted at srcDir
// without any flag overrides.
func LoadSiteConfig(srcDir string) (Config, error) {
	v, err := InitViper(srcDir)
	if err != nil {
		return Config{}, err
	}
	return Load(v)
}
