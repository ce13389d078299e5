package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything a run needs. File paths other than SiteDir are relative to SiteDir.
type Config struct {
	SiteDir      string           `mapstructure:"site_dir"`
	PromptFile   string           `mapstructure:"prompt_file"`
	TemplateFile string           `mapstructure:"template_file"`
	BlogDir      string           `mapstructure:"blog_dir"`
	CatalogFile  string           `mapstructure:"catalog_file"`
	SitemapFile  string           `mapstructure:"sitemap_file"`
	TitleSuffix  string           `mapstructure:"title_suffix"`
	Generation   GenerationConfig `mapstructure:"generation"`
	Sitemap      SitemapPolicy    `mapstructure:"sitemap"`
	Markers      TemplateMarkers  `mapstructure:"markers"`
}

// credentialEnv maps a provider to the variable holding its API key
var credentialEnv = map[string]string{
	ProviderGemini: "GEMINI_API_KEY",
	ProviderOpenAI: "OPENAI_API_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site_dir", ".")
	v.SetDefault("prompt_file", "prompt.txt")
	v.SetDefault("template_file", "blog/affordable-loyalty-software-for-small-business-boost-customer-retention.html")
	v.SetDefault("blog_dir", "blog")
	v.SetDefault("catalog_file", "blogs.json")
	v.SetDefault("sitemap_file", "sitemap.xml")
	v.SetDefault("title_suffix", " | StampCircle")

	v.SetDefault("generation.provider", ProviderGemini)
	v.SetDefault("generation.model", "")
	v.SetDefault("generation.api_key", "")
	v.SetDefault("generation.base_url", "")
	v.SetDefault("generation.temperature", 0)
	v.SetDefault("generation.timeout", 2*time.Minute)

	v.SetDefault("sitemap.base_url", "https://stampcircle.com")
	v.SetDefault("sitemap.changefreq", "")
	v.SetDefault("sitemap.priority", "0.80")

	v.SetDefault("markers.container", defaultMarkers.Container)
	v.SetDefault("markers.container_selector", defaultMarkers.ContainerSelector)
	v.SetDefault("markers.related", defaultMarkers.Related)
	v.SetDefault("markers.related_selector", defaultMarkers.RelatedSelector)
}

// LoadConfig reads .env, an optional blogbot.yaml (or cfgFile) and BLOGBOT_* variables.
// The model credential comes from GEMINI_API_KEY or OPENAI_API_KEY unless set explicitly.
func LoadConfig(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("blogbot")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("BLOGBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("no config file found, using defaults and environment")
	} else {
		slog.Debug("using config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Generation.Provider = strings.ToLower(strings.TrimSpace(cfg.Generation.Provider))
	if cfg.Generation.APIKey == "" {
		if name, ok := credentialEnv[cfg.Generation.Provider]; ok {
			cfg.Generation.APIKey = os.Getenv(name)
		}
	}
	return &cfg, nil
}

// SitePath resolves a configured path against SiteDir
func (c *Config) SitePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.SiteDir, p)
}

// Validate requires blog_dir to be a path inside SiteDir; it becomes the href prefix
// of every published article.
func (c *Config) Validate() error {
	blog := filepath.Clean(c.BlogDir)
	if filepath.IsAbs(blog) || blog == ".." || strings.HasPrefix(blog, ".."+string(filepath.Separator)) {
		return fmt.Errorf("blog_dir %q must be relative and inside site_dir", c.BlogDir)
	}
	return nil
}
