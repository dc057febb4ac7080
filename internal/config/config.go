package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/orgoj/anglerfish/internal/rotation"
	"github.com/orgoj/anglerfish/internal/validation"
)

// ErrUnsupportedFormat is returned for a config file with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported config file format")

// LogRotation defines parameters for size-based rotation of extra file destinations.
type LogRotation struct {
	MaxSize    string `yaml:"max_size,omitempty" toml:"max_size"`       // e.g., "100", "50MB"
	MaxAge     string `yaml:"max_age,omitempty" toml:"max_age"`         // e.g., "7d", "12h"
	MaxBackups int    `yaml:"max_backups,omitempty" toml:"max_backups"` // Still int
	Compress   bool   `yaml:"compress,omitempty" toml:"compress"`
}

// LoggerConfig configures the bootstrapped logger.
type LoggerConfig struct {
	Name        string `yaml:"name" toml:"name"`
	When        string `yaml:"when" toml:"when"`                                  // S, M, H, D, midnight, W0-W6
	Interval    int    `yaml:"interval" toml:"interval" validate:"gte=0"`         // multiplier of the rotation period
	SingleZip   bool   `yaml:"single_zip" toml:"single_zip"`                      // one combined archive instead of one per segment
	BackupCount int    `yaml:"backup_count" toml:"backup_count" validate:"gte=0"` // rotated segments kept before the oldest is dropped
	Dir         string `yaml:"dir" toml:"dir"`                                    // defaults to the OS temp dir
	UTC         bool   `yaml:"utc" toml:"utc"`                                    // rotate at UTC midnight
	Level       string `yaml:"level" toml:"level" validate:"omitempty,oneof=ALL TRACE DEBUG INFO WARN WARNING ERROR CRITICAL FATAL"`
	Color       string `yaml:"color" toml:"color" validate:"oneof=auto always never"`
	Syslog      bool   `yaml:"syslog" toml:"syslog"`
}

// Config represents the application configuration
type Config struct {
	Logger          LoggerConfig     `yaml:"logger" toml:"logger"`
	LogDestinations []LogDestination `yaml:"log_destinations" toml:"log_destinations" validate:"dive"`
}

// LogDestination represents an additional logging destination
type LogDestination struct {
	Name    string `yaml:"name" toml:"name" validate:"required"`                 // Mandatory, unique identifier
	Type    string `yaml:"type" toml:"type" validate:"required,oneof=file gelf"` // Mandatory: file, gelf
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Level   string `yaml:"level,omitempty" toml:"level"` // Optional minimum level for this destination

	// File specific
	Path     string      `yaml:"path,omitempty" toml:"path"`         // Mandatory for type: file
	Format   string      `yaml:"format,omitempty" toml:"format"`     // Mandatory for type: file (json or text)
	Rotation LogRotation `yaml:"rotation,omitempty" toml:"rotation"` // Use exported type

	// GELF specific
	Host            string `yaml:"host,omitempty" toml:"host"`                         // Mandatory for type: gelf
	Port            int    `yaml:"port,omitempty" toml:"port"`                         // Mandatory for type: gelf
	Protocol        string `yaml:"protocol,omitempty" toml:"protocol"`                 // Optional for type: gelf (udp or tcp, default udp)
	CompressionType string `yaml:"compression_type,omitempty" toml:"compression_type"` // Optional for type: gelf (gzip, zlib, none, default none)
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.Logger.When = "midnight"
	cfg.Logger.Interval = 1
	cfg.Logger.BackupCount = rotation.DefaultBackupCount
	cfg.Logger.Level = "ALL"
	cfg.Logger.Color = "auto"
	cfg.Logger.Syslog = true
	return cfg
}

// LoadConfig loads and validates the configuration from a YAML or TOML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file '%s': %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file '%s': %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, path)
	}

	normalize(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// normalize canonicalizes case and fills defaults the file may have cleared.
func normalize(cfg *Config) {
	cfg.Logger.Level = strings.ToUpper(strings.TrimSpace(cfg.Logger.Level))
	cfg.Logger.Color = strings.ToLower(strings.TrimSpace(cfg.Logger.Color))
	if cfg.Logger.When == "" {
		cfg.Logger.When = "midnight"
	}
	if cfg.Logger.Color == "" {
		cfg.Logger.Color = "auto"
	}
	for i := range cfg.LogDestinations {
		cfg.LogDestinations[i].Level = strings.ToUpper(strings.TrimSpace(cfg.LogDestinations[i].Level))
	}
}

// validateConfig performs semantic validation of the configuration
func validateConfig(cfg *Config) error {
	if err := validation.LoggerName(cfg.Logger.Name); err != nil {
		return fmt.Errorf("invalid logger.name: %w", err)
	}
	if _, err := rotation.ParseWhen(cfg.Logger.When, cfg.Logger.Interval); err != nil {
		return fmt.Errorf("invalid logger.when: %w", err)
	}
	if cfg.Logger.Interval < 0 {
		return fmt.Errorf("logger.interval cannot be negative: %d", cfg.Logger.Interval)
	}
	if cfg.Logger.BackupCount < 0 {
		return fmt.Errorf("logger.backup_count cannot be negative: %d", cfg.Logger.BackupCount)
	}
	if !validLevel(cfg.Logger.Level) {
		return fmt.Errorf("invalid logger.level: '%s'", cfg.Logger.Level)
	}
	switch cfg.Logger.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid logger.color: '%s', must be 'auto', 'always' or 'never'", cfg.Logger.Color)
	}

	// Log Destinations validation
	destinationNames := make(map[string]bool)
	for i, dest := range cfg.LogDestinations {
		if dest.Name == "" {
			return fmt.Errorf("log_destinations[%d]: name is required", i)
		}
		if destinationNames[dest.Name] {
			return fmt.Errorf("log_destinations: duplicate name '%s' found", dest.Name)
		}
		destinationNames[dest.Name] = true

		if !validLevel(dest.Level) {
			return fmt.Errorf("log_destinations[%s]: invalid level '%s'", dest.Name, dest.Level)
		}

		switch dest.Type {
		case "file":
			if dest.Path == "" {
				return fmt.Errorf("log_destinations[%s]: path is required for type 'file'", dest.Name)
			}
			if dest.Format != "json" && dest.Format != "text" {
				return fmt.Errorf("log_destinations[%s]: invalid format '%s', must be 'json' or 'text' for type 'file'", dest.Name, dest.Format)
			}
			// Validation for rotation params
			if dest.Rotation.MaxSize != "" { // Validate only if set
				_, err := ParseSize(dest.Rotation.MaxSize)
				if err != nil {
					return fmt.Errorf("log_destinations[%s]: invalid rotation.max_size: %w", dest.Name, err)
				}
			}
			if dest.Rotation.MaxAge != "" { // Validate only if set
				_, err := ParseDuration(dest.Rotation.MaxAge)
				if err != nil {
					return fmt.Errorf("log_destinations[%s]: invalid rotation.max_age: %w", dest.Name, err)
				}
			}
			if dest.Rotation.MaxBackups < 0 {
				return fmt.Errorf("log_destinations[%s]: rotation.max_backups cannot be negative", dest.Name)
			}
		case "gelf":
			if dest.Host == "" {
				return fmt.Errorf("log_destinations[%s]: host is required for type 'gelf'", dest.Name)
			}
			if dest.Port <= 0 || dest.Port > 65535 {
				return fmt.Errorf("log_destinations[%s]: invalid port %d for type 'gelf'", dest.Name, dest.Port)
			}
			if dest.Protocol != "" && dest.Protocol != "udp" && dest.Protocol != "tcp" {
				return fmt.Errorf("log_destinations[%s]: invalid protocol '%s', must be 'udp' or 'tcp' for type 'gelf'", dest.Name, dest.Protocol)
			}
			// Set default GELF protocol if empty
			if dest.Protocol == "" {
				cfg.LogDestinations[i].Protocol = "udp" // Assign back to the slice element
			}
			if dest.CompressionType != "" && dest.CompressionType != "gzip" && dest.CompressionType != "zlib" && dest.CompressionType != "none" {
				return fmt.Errorf("log_destinations[%s]: invalid compression_type '%s', must be 'gzip', 'zlib', or 'none' for type 'gelf'", dest.Name, dest.CompressionType)
			}
			// Set default GELF compression if empty
			if dest.CompressionType == "" {
				cfg.LogDestinations[i].CompressionType = "none" // Assign back to the slice element
			}
		default:
			return fmt.Errorf("log_destinations[%s]: unknown type '%s'", dest.Name, dest.Type)
		}
	}

	return nil
}

var validLevels = map[string]bool{
	"": true, "ALL": true, "TRACE": true, "DEBUG": true, "INFO": true,
	"WARN": true, "WARNING": true, "ERROR": true, "CRITICAL": true, "FATAL": true,
}

func validLevel(name string) bool {
	return validLevels[name]
}

// ValidateConfig uses go-playground/validator for struct-level validation.
// It complements the semantic validation in validateConfig.
func ValidateConfig(cfg *Config) error {
	validate := validator.New()

	err := validate.Struct(cfg)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		// Translate validation errors into a more readable format
		messages := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			messages = append(messages, fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", fe.Namespace(), fe.Tag()))
		}
		return errors.New(strings.Join(messages, "; "))
	}

	// Perform additional semantic validation (that validator can't easily handle)
	return validateConfig(cfg)
}

// ParseDuration parses a duration string (e.g., "10m", "1h30m", "7d").
// Supports standard time.ParseDuration units plus 'd' for days.
// Returns an error if the format is invalid or the duration is non-positive.
func ParseDuration(durationStr string) (time.Duration, error) {
	durationStr = strings.TrimSpace(durationStr)
	if durationStr == "" {
		return 0, errors.New("duration string cannot be empty")
	}

	// Handle 'd' suffix manually
	if strings.HasSuffix(strings.ToLower(durationStr), "d") {
		numStr := strings.TrimSuffix(strings.ToLower(durationStr), "d")
		days, err := strconv.ParseInt(numStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number format for days in '%s': %w", durationStr, err)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration (days) cannot be negative: %d", days)
		}
		d := time.Duration(days) * 24 * time.Hour
		if d <= 0 && days > 0 { // Handle potential overflow if days is huge, though unlikely
			return 0, fmt.Errorf("duration %dd results in overflow or zero duration", days)
		} else if d <= 0 && days == 0 { // Check for zero explicitly
			return 0, fmt.Errorf("duration must be positive: '%s'", durationStr)
		}
		return d, nil
	}

	// Use standard time.ParseDuration for other units
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format '%s': %w", durationStr, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: '%s'", durationStr)
	}
	return d, nil
}

// ParseSize parses a size string (e.g., "10MB", "5k", "1G") into bytes.
// Supports K, M, G suffixes (case-insensitive).
func ParseSize(sizeStr string) (int64, error) {
	sizeStr = strings.TrimSpace(strings.ToUpper(sizeStr))
	if sizeStr == "" {
		return 0, errors.New("size string cannot be empty")
	}

	var multiplier int64 = 1
	suffix := ""

	if strings.HasSuffix(sizeStr, "KB") {
		multiplier = 1024
		suffix = "KB"
	} else if strings.HasSuffix(sizeStr, "K") {
		multiplier = 1024
		suffix = "K"
	} else if strings.HasSuffix(sizeStr, "MB") {
		multiplier = 1024 * 1024
		suffix = "MB"
	} else if strings.HasSuffix(sizeStr, "M") {
		multiplier = 1024 * 1024
		suffix = "M"
	} else if strings.HasSuffix(sizeStr, "GB") {
		multiplier = 1024 * 1024 * 1024
		suffix = "GB"
	} else if strings.HasSuffix(sizeStr, "G") {
		multiplier = 1024 * 1024 * 1024
		suffix = "G"
	} // END OF SUPPORTED UNITS

	numStr := sizeStr
	if suffix != "" {
		numStr = strings.TrimSuffix(sizeStr, suffix)
	}
	numStr = strings.TrimSpace(numStr)

	// Use big.Int for invalid format detection and negative numbers
	numBig := new(big.Int)
	_, ok := numBig.SetString(numStr, 10)
	if !ok {
		return 0, fmt.Errorf("invalid number format in size string '%s'", sizeStr)
	}

	if numBig.Sign() < 0 {
		return 0, fmt.Errorf("size cannot be negative: %s", numBig.String())
	}
	if numBig.Sign() == 0 {
		return 0, nil // Zero is valid
	}

	// Multiply using big.Int
	multiplierBig := big.NewInt(multiplier)
	resultBig := new(big.Int).Mul(numBig, multiplierBig)

	// Check for int64 overflow
	maxInt64 := big.NewInt(1<<63 - 1)
	if resultBig.Cmp(maxInt64) > 0 {
		return 0, fmt.Errorf("size value %s%s results in overflow (exceeds max int64)", numBig.String(), suffix)
	}

	// Safely convert to int64
	// Check if the result can be represented as int64
	// (Cmp should cover this, but to be sure)
	if !resultBig.IsInt64() {
		return 0, fmt.Errorf("size value %s%s cannot be represented as int64", numBig.String(), suffix)
	}

	return resultBig.Int64(), nil
}
