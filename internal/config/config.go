// Package config loads assistant configuration from a YAML file with
// environment variable overrides. The provider list is explicit: every
// provider the orchestrator may call is enumerated here in priority
// order, with its credentials, model, and endpoint.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level assistant configuration.
type Config struct {
	Providers    []ProviderConfig   `yaml:"providers"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Prober       ProberConfig       `yaml:"prober"`
	Cache        CacheConfig        `yaml:"cache"`
	Notify       NotifyConfig       `yaml:"notify"`
}

// ProviderConfig describes one upstream AI provider. APIKeyEnv names an
// environment variable holding the credential so keys stay out of the
// config file; APIKey takes precedence when set directly.
type ProviderConfig struct {
	Name      string        `yaml:"name"`
	Kind      string        `yaml:"kind"`
	APIKey    string        `yaml:"api_key"`
	APIKeyEnv string        `yaml:"api_key_env"`
	BaseURL   string        `yaml:"base_url"`
	Model     string        `yaml:"model"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Key resolves the provider credential.
func (p ProviderConfig) Key() string {
	if p.APIKey != "" {
		return p.APIKey
	}
	if p.APIKeyEnv != "" {
		return os.Getenv(p.APIKeyEnv)
	}
	return ""
}

// OrchestratorConfig tunes request routing.
type OrchestratorConfig struct {
	MaxRetries      int           `yaml:"max_retries"`
	SweepStaleAfter time.Duration `yaml:"sweep_stale_after"`
}

// ProberConfig tunes the background health prober.
type ProberConfig struct {
	Interval     time.Duration `yaml:"interval"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

// CacheConfig configures the Redis response cache.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// NotifyConfig configures state change notification channels. Empty
// values disable the corresponding channel.
type NotifyConfig struct {
	WebhookURL    string `yaml:"webhook_url"`
	PubSubProject string `yaml:"pubsub_project"`
	PubSubTopic   string `yaml:"pubsub_topic"`
}

// Load reads configuration from a YAML file, applies defaults and
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv builds a configuration without a file, enumerating the
// three stock providers from their conventional key variables. Providers
// whose key variable is unset are omitted.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}

	stock := []ProviderConfig{
		{Name: "openai", Kind: "primary", APIKeyEnv: "OPENAI_API_KEY"},
		{Name: "anthropic", Kind: "secondary", APIKeyEnv: "ANTHROPIC_API_KEY"},
		{Name: "gemini", Kind: "tertiary", APIKeyEnv: "GEMINI_API_KEY"},
	}
	for _, p := range stock {
		if p.Key() != "" {
			cfg.Providers = append(cfg.Providers, p)
		}
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Orchestrator.MaxRetries == 0 {
		cfg.Orchestrator.MaxRetries = 3
	}
	if cfg.Orchestrator.SweepStaleAfter == 0 {
		cfg.Orchestrator.SweepStaleAfter = 5 * time.Minute
	}
	if cfg.Prober.Interval == 0 {
		cfg.Prober.Interval = 60 * time.Second
	}
	if cfg.Prober.ProbeTimeout == 0 {
		cfg.Prober.ProbeTimeout = 5 * time.Second
	}
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = "localhost:6379"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = time.Hour
	}
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("CAREMATE_CACHE_ADDR"); val != "" {
		cfg.Cache.Addr = val
		cfg.Cache.Enabled = true
	}
	if val := os.Getenv("CAREMATE_CACHE_PASSWORD"); val != "" {
		cfg.Cache.Password = val
	}
	if val := os.Getenv("CAREMATE_NOTIFY_WEBHOOK_URL"); val != "" {
		cfg.Notify.WebhookURL = val
	}
	if val := os.Getenv("CAREMATE_PUBSUB_PROJECT"); val != "" {
		cfg.Notify.PubSubProject = val
	}
	if val := os.Getenv("CAREMATE_PUBSUB_TOPIC"); val != "" {
		cfg.Notify.PubSubTopic = val
	}
}

func validate(cfg *Config) error {
	if len(cfg.Providers) == 0 {
		return fmt.Errorf("no providers configured")
	}

	seen := make(map[string]bool, len(cfg.Providers))
	for i, p := range cfg.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider %d: name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("provider %q: duplicate name", p.Name)
		}
		seen[p.Name] = true

		switch p.Kind {
		case "primary", "secondary", "tertiary":
		default:
			return fmt.Errorf("provider %q: unknown kind %q", p.Name, p.Kind)
		}

		if p.Key() == "" {
			return fmt.Errorf("provider %q: no API key (set api_key or api_key_env)", p.Name)
		}
	}

	if cfg.Orchestrator.MaxRetries < 1 {
		return fmt.Errorf("orchestrator max_retries must be at least 1")
	}

	return nil
}
