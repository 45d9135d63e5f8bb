package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/rental-projection/internal/config"
	"github.com/iwvelando/rental-projection/internal/projection"
	"github.com/iwvelando/rental-projection/pkg/constants"
	"gopkg.in/yaml.v3"
)

// DefaultCacheTTL is how long a computed projection stays cached.
const DefaultCacheTTL = 10 * time.Minute

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address         string               `yaml:"address"`
	MaxBodySize     string               `yaml:"maxBodySize"`
	DatabasePath    string               `yaml:"databasePath"`
	RedisAddress    string               `yaml:"redisAddress,omitempty"`
	CacheTTL        string               `yaml:"cacheTTL,omitempty"`
	RefreshSchedule string               `yaml:"refreshSchedule,omitempty"`
	RateLimit       RateLimitConfig      `yaml:"rateLimit"`
	Logging         config.LoggingConfig `yaml:"logging"`
	Policy          config.PolicyConfig  `yaml:"policy"`
	bodySizeBytes   int64
	cacheTTL        time.Duration
}

// RateLimitConfig bounds the request rate accepted by the API.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"perSecond"`
	Burst     int     `yaml:"burst"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Address:         constants.DefaultServerAddress,
		MaxBodySize:     fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes),
		DatabasePath:    constants.DefaultDatabasePath,
		CacheTTL:        DefaultCacheTTL.String(),
		RefreshSchedule: constants.DefaultRefreshSchedule,
		RateLimit: RateLimitConfig{
			PerSecond: constants.DefaultRateLimitPerSecond,
			Burst:     constants.DefaultRateLimitBurst,
		},
		bodySizeBytes: constants.DefaultMaxBodySizeBytes,
		cacheTTL:      DefaultCacheTTL,
	}
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BodySizeBytes returns the configured request body limit in bytes.
func (c *Config) BodySizeBytes() int64 {
	return c.bodySizeBytes
}

// SetBodySizeBytes overrides the configured request body limit.
func (c *Config) SetBodySizeBytes(size int64) {
	if size > 0 {
		c.bodySizeBytes = size
		c.MaxBodySize = fmt.Sprintf("%d", size)
	}
}

// CacheDuration returns the parsed cache TTL.
func (c *Config) CacheDuration() time.Duration {
	return c.cacheTTL
}

// EnginePolicy returns the engine policy named by the configuration.
func (c *Config) EnginePolicy() (projection.Policy, error) {
	return projection.ParsePolicy(c.Policy.InterestDeduction, c.Policy.TouristTax)
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if c.DatabasePath == "" {
		c.DatabasePath = constants.DefaultDatabasePath
	}
	if strings.TrimSpace(c.RefreshSchedule) == "" {
		c.RefreshSchedule = constants.DefaultRefreshSchedule
	}
	if c.RateLimit.PerSecond <= 0 {
		c.RateLimit.PerSecond = constants.DefaultRateLimitPerSecond
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = constants.DefaultRateLimitBurst
	}

	ttl := strings.TrimSpace(c.CacheTTL)
	if ttl == "" {
		c.cacheTTL = DefaultCacheTTL
		c.CacheTTL = DefaultCacheTTL.String()
	} else {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid cacheTTL %q: %w", c.CacheTTL, err)
		}
		if d <= 0 {
			d = DefaultCacheTTL
		}
		c.cacheTTL = d
	}

	if _, err := c.EnginePolicy(); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}

	sizeStr := strings.TrimSpace(c.MaxBodySize)
	if sizeStr == "" {
		c.bodySizeBytes = constants.DefaultMaxBodySizeBytes
		c.MaxBodySize = fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes)
		return nil
	}

	bytes, err := ParseSize(sizeStr)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxBodySizeBytes
	}
	c.bodySizeBytes = bytes
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	if numPart == "" {
		return 0, fmt.Errorf("invalid size: %s", value)
	}

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
