package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingConfig is returned by Load when the config file does not exist.
var ErrMissingConfig = errors.New("config file not found")

const (
	HostGitHub = "github"
	HostGitLab = "gitlab"

	ViewsSQLite = "sqlite"
	ViewsHTTP   = "http"
)

// Environment variables consulted for secrets the YAML file leaves empty.
const (
	EnvGitHubToken = "DEVFOLIO_GITHUB_TOKEN"
	EnvGitLabToken = "DEVFOLIO_GITLAB_TOKEN"
	EnvWakaTimeKey = "DEVFOLIO_WAKATIME_KEY"
)

type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Providers ProvidersConfig `yaml:"providers"`
	Server    ServerConfig    `yaml:"server"`
	Content   ContentConfig   `yaml:"content"`
}

type SiteConfig struct {
	Title       string      `yaml:"title"`
	BaseURL     string      `yaml:"base_url,omitempty"`
	SocialLinks SocialLinks `yaml:"social_links"`
}

type SocialLinks struct {
	GitHub Link `yaml:"github"`
}

type Link struct {
	URL string `yaml:"url"`
}

type ProvidersConfig struct {
	// Host selects the source-hosting provider: "github" or "gitlab".
	Host     string         `yaml:"host"`
	GitHub   GitHubConfig   `yaml:"github"`
	GitLab   GitLabConfig   `yaml:"gitlab"`
	WakaTime WakaTimeConfig `yaml:"wakatime"`
	Views    ViewsConfig    `yaml:"views"`
	// Timeout bounds one snapshot. Zero means the request deadline only.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

type GitHubConfig struct {
	User    string `yaml:"user"`
	Token   string `yaml:"token,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

type GitLabConfig struct {
	User    string `yaml:"user"`
	Token   string `yaml:"token,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

type WakaTimeConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

type ViewsConfig struct {
	// Driver is "sqlite" (local counter) or "http" (remote total endpoint).
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn,omitempty"`
	URL    string `yaml:"url,omitempty"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"`
}

type ContentConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

// Load reads a YAML config file. A .env file in the working directory is
// loaded first so ${VAR} references in the YAML can resolve against it.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: %s: %w", path, ErrMissingConfig)
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes, expanding environment variables and
// applying defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.applyEnv()
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyEnv()
	cfg.ApplyDefaults()
	return &cfg
}

func (c *Config) applyEnv() {
	if c.Providers.GitHub.Token == "" {
		c.Providers.GitHub.Token = os.Getenv(EnvGitHubToken)
	}
	if c.Providers.GitLab.Token == "" {
		c.Providers.GitLab.Token = os.Getenv(EnvGitLabToken)
	}
	if c.Providers.WakaTime.APIKey == "" {
		c.Providers.WakaTime.APIKey = os.Getenv(EnvWakaTimeKey)
	}
}

func (c *Config) ApplyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "devfolio"
	}
	if c.Providers.Host == "" {
		c.Providers.Host = HostGitHub
	}
	c.Providers.Host = strings.ToLower(c.Providers.Host)
	if c.Providers.Views.Driver == "" {
		c.Providers.Views.Driver = ViewsSQLite
	}
	if c.Providers.Views.Driver == ViewsSQLite && c.Providers.Views.DSN == "" {
		c.Providers.Views.DSN = "file:devfolio.db"
	}
	if c.Providers.Timeout == 0 {
		c.Providers.Timeout = 8 * time.Second
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Content.Dir == "" {
		c.Content.Dir = "content/posts"
	}
	if c.Site.SocialLinks.GitHub.URL == "" && c.Providers.GitHub.User != "" {
		c.Site.SocialLinks.GitHub.URL = "https://github.com/" + c.Providers.GitHub.User
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Providers.Host {
	case HostGitHub:
		if c.Providers.GitHub.User == "" {
			errs = append(errs, errors.New("providers.github.user is required when host is github"))
		}
	case HostGitLab:
		if c.Providers.GitLab.User == "" {
			errs = append(errs, errors.New("providers.gitlab.user is required when host is gitlab"))
		}
	default:
		errs = append(errs, fmt.Errorf("providers.host: unknown host %q", c.Providers.Host))
	}

	switch c.Providers.Views.Driver {
	case ViewsSQLite:
		if c.Providers.Views.DSN == "" {
			errs = append(errs, errors.New("providers.views.dsn is required for the sqlite driver"))
		}
	case ViewsHTTP:
		if c.Providers.Views.URL == "" {
			errs = append(errs, errors.New("providers.views.url is required for the http driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("providers.views.driver: unknown driver %q", c.Providers.Views.Driver))
	}

	if c.Providers.Timeout < 0 {
		errs = append(errs, errors.New("providers.timeout must not be negative"))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must not be negative"))
	}

	return errors.Join(errs...)
}
