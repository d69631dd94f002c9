package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultCORSOrigins are the console origins allowed when cors.allowed_origins is empty.
var DefaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// Config holds the curalink gateway configuration.
type Config struct {
	HTTP           HTTPConfig      `yaml:"http"`
	Identity       IdentityConfig  `yaml:"identity"`
	Archives       []ArchiveConfig `yaml:"archives"`
	DefaultArchive string          `yaml:"default_archive"`
	Query          QueryConfig     `yaml:"query"`
	Database       DatabaseConfig  `yaml:"database"`
	Cache          CacheConfig     `yaml:"cache"`
	Assistant      AssistantConfig `yaml:"assistant"`
	Auth           AuthConfig      `yaml:"auth"`
	CORS           CORSConfig      `yaml:"cors"`
	Logging        LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. Empty api_keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// CORSConfig holds the browser origin allow-list.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// IdentityConfig holds the Keycloak service account used for archive requests.
type IdentityConfig struct {
	URL        string `yaml:"url"`
	Realm      string `yaml:"realm"`
	ClientID   string `yaml:"client_id"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// ArchiveConfig describes one DICOM archive backend.
type ArchiveConfig struct {
	ID           string `yaml:"id"`
	Description  string `yaml:"description"`
	URL          string `yaml:"url"`         // scheme://host:port
	Path         string `yaml:"path"`        // QIDO-RS root
	ConfigPath   string `yaml:"config_path"` // configuration root, optional
	AuthRequired bool   `yaml:"auth_required"`
}

// QueryConfig holds archive request settings.
type QueryConfig struct {
	TimeoutSec         int  `yaml:"timeout_sec"`
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"` // self-signed archive certificates
}

// DatabaseConfig holds the optional cache store connection settings.
// An empty addrs list runs the gateway without a store.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a store is configured.
func (d DatabaseConfig) Enabled() bool { return len(d.Addrs) > 0 }

// CacheConfig holds cache settings.
type CacheConfig struct {
	TokenCache         bool `yaml:"token_cache"`
	InstitutionsTTLSec int  `yaml:"institutions_ttl_sec"`
	ConversationTTLSec int  `yaml:"conversation_ttl_sec"`
}

// BudgetConfig holds assistant token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// AssistantConfig holds the chat model settings.
type AssistantConfig struct {
	Provider    string       `yaml:"provider"` // ollama, gemini, openai
	APIKey      string       `yaml:"api_key"`
	BaseURL     string       `yaml:"base_url"`
	Model       string       `yaml:"model"`
	Temperature float32      `yaml:"temperature"`
	MaxTokens   int          `yaml:"max_tokens"`
	TimeoutSec  int          `yaml:"timeout_sec"`
	MaxHistory  int          `yaml:"max_history"`
	Budget      BudgetConfig `yaml:"budget"`
}

// Configured reports whether a chat model can be built.
// Ollama needs no API key.
func (a AssistantConfig) Configured() bool {
	if a.Model == "" {
		return false
	}
	return a.APIKey != "" || a.Provider == "ollama"
}

// Timeout returns the chat request timeout.
func (a AssistantConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, docker, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// smart search waits for the model
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Identity.TimeoutSec <= 0 {
		c.Identity.TimeoutSec = 10
	}
	if c.DefaultArchive == "" && len(c.Archives) > 0 {
		c.DefaultArchive = c.Archives[0].ID
	}
	if c.Query.TimeoutSec <= 0 {
		c.Query.TimeoutSec = 30
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Cache.InstitutionsTTLSec <= 0 {
		c.Cache.InstitutionsTTLSec = 300
	}
	if c.Cache.ConversationTTLSec <= 0 {
		c.Cache.ConversationTTLSec = 86400
	}
	if c.Assistant.Provider == "" {
		c.Assistant.Provider = "ollama"
	}
	if c.Assistant.TimeoutSec <= 0 {
		c.Assistant.TimeoutSec = 60
	}
	if c.Assistant.MaxTokens <= 0 {
		c.Assistant.MaxTokens = 1024
	}
	if c.Assistant.MaxHistory <= 0 {
		c.Assistant.MaxHistory = 20
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = append([]string(nil), DefaultCORSOrigins...)
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Archives) == 0 {
		return fmt.Errorf("at least one archive is required")
	}

	seen := make(map[string]struct{}, len(c.Archives))
	authRequired := false
	for i, a := range c.Archives {
		if a.ID == "" {
			return fmt.Errorf("archives[%d].id is required", i)
		}
		if a.URL == "" {
			return fmt.Errorf("archives.%s.url is required", a.ID)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("archive id %q is not unique", a.ID)
		}
		seen[a.ID] = struct{}{}
		authRequired = authRequired || a.AuthRequired
	}
	if _, ok := seen[c.DefaultArchive]; c.DefaultArchive != "" && !ok {
		return fmt.Errorf("default_archive %q is not configured", c.DefaultArchive)
	}
	if authRequired {
		if c.Identity.URL == "" || c.Identity.Realm == "" || c.Identity.ClientID == "" {
			return fmt.Errorf("identity.url, identity.realm and identity.client_id are required when an archive has auth_required")
		}
	}

	switch c.Database.Driver {
	case "", "redis", "valkey":
		// ok
	default:
		return fmt.Errorf("database.driver must be \"redis\" or \"valkey\", got %q", c.Database.Driver)
	}
	if c.Cache.TokenCache && !c.Database.Enabled() {
		return fmt.Errorf("cache.token_cache requires database.addrs")
	}

	switch c.Assistant.Provider {
	case "", "ollama", "gemini", "openai":
		// ok
	default:
		return fmt.Errorf("assistant.provider must be one of ollama, gemini, openai, got %q", c.Assistant.Provider)
	}
	switch c.Assistant.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf(
			"assistant.budget.action must be \"warn\" or \"reject\", got %q",
			c.Assistant.Budget.Action,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
