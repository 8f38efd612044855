// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	defaults := cfg.DefaultWeights()
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eshaffer321/costshare/internal/domain/allocator"
)

// Config represents the entire application configuration
type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	Server        ServerConfig        `yaml:"server"`
	Observability ObservabilityConfig `yaml:"observability"`
	Projects      []ProjectConfig     `yaml:"projects"`
	Services      []ServiceConfig     `yaml:"services"`

	// AllocationWeights maps service ID to project ID to weight.
	// Keys starting with "_" are comments and are ignored.
	AllocationWeights map[string]interface{} `yaml:"allocation_weights"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // maven (default), tint, json
}

// ProjectConfig describes a billing target
type ProjectConfig struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	TagLabel    string `yaml:"tag_label"`
	TagClass    string `yaml:"tag_class"`
	Description string `yaml:"description"`
	Client      string `yaml:"client"`
	Billable    bool   `yaml:"billable"`
}

// ServiceConfig describes a subscription as produced by the scanner
type ServiceConfig struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Category     string   `yaml:"category"`
	CostEstimate string   `yaml:"cost_estimate"` // free text, e.g. "$20/mo"
	Projects     []string `yaml:"projects"`
	AllProjects  bool     `yaml:"all_projects"`
	Notes        string   `yaml:"notes"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${COSTSHARE_DB_PATH})
	expanded := expandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// envRef matches ${NAME}. Bare $NAME is left alone so cost strings like
// "$120/mo" survive.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${NAME} references with the environment value.
// Unset variables expand to the empty string.
func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(envRef.FindStringSubmatch(ref)[1])
	})
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Storage: StorageConfig{
			DatabasePath: getEnv("COSTSHARE_DB_PATH", "costshare.db"),
		},
		Server: ServerConfig{
			Port: getEnvInt("COSTSHARE_PORT", 4200),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "maven"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func (c *Config) applyDefaults() {
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = getEnv("COSTSHARE_DB_PATH", "costshare.db")
	}
	if c.Server.Port == 0 {
		c.Server.Port = getEnvInt("COSTSHARE_PORT", 4200)
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:4200", "http://localhost:5173"}
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = getEnv("LOG_LEVEL", "info")
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = getEnv("LOG_FORMAT", "maven")
	}
}

// AllocatorProjects converts configured projects to allocation inputs.
// A project without a client is reported under "No client".
func (c *Config) AllocatorProjects() []allocator.Project {
	projects := make([]allocator.Project, 0, len(c.Projects))
	for _, p := range c.Projects {
		client := p.Client
		if client == "" {
			client = "No client"
		}
		projects = append(projects, allocator.Project{
			ID:       p.ID,
			Name:     p.Name,
			TagLabel: p.TagLabel,
			TagClass: p.TagClass,
			Client:   client,
			Billable: p.Billable,
		})
	}
	return projects
}

// ProjectIDs returns the IDs of every configured project in order.
func (c *Config) ProjectIDs() []string {
	ids := make([]string, 0, len(c.Projects))
	for _, p := range c.Projects {
		ids = append(ids, p.ID)
	}
	return ids
}

// DefaultWeights returns the configured allocation weights with comment keys
// removed. Values that are not whole numbers are skipped.
func (c *Config) DefaultWeights() map[string]allocator.Weights {
	out := make(map[string]allocator.Weights, len(c.AllocationWeights))
	for svcID, entry := range c.AllocationWeights {
		raw, ok := entry.(map[string]interface{})
		if strings.HasPrefix(svcID, "_") || !ok {
			continue
		}
		w := make(allocator.Weights, len(raw))
		for projectID, v := range raw {
			if strings.HasPrefix(projectID, "_") {
				continue
			}
			if n, ok := toInt(v); ok {
				w[projectID] = n
			}
		}
		out[svcID] = w
	}
	return out
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
