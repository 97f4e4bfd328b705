package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the path to the canonical conversion defaults file.
const DefaultConfigPath = "config/splat.defaults.json"

// Built-in defaults used when a field is absent from the config file.
const (
	DefaultEncodeRatio     = 1.0
	DefaultDownsampleRatio = 0.25
	DefaultWorkers         = 1
	MaxWorkers             = 256
)

// LimitConfig holds the truncation settings for one tool. MaxPoints, when
// present, overrides Ratio.
type LimitConfig struct {
	Ratio     *float64 `json:"ratio,omitempty" yaml:"ratio,omitempty"`
	MaxPoints *int     `json:"max_points,omitempty" yaml:"max_points,omitempty"`
}

// ConversionConfig is the root configuration shared by the splat tools.
// Every field is optional; the Get* methods supply defaults.
type ConversionConfig struct {
	Encode     *LimitConfig `json:"encode,omitempty" yaml:"encode,omitempty"`
	Downsample *LimitConfig `json:"downsample,omitempty" yaml:"downsample,omitempty"`

	// Workers bounds how many files are processed concurrently.
	Workers *int `json:"workers,omitempty" yaml:"workers,omitempty"`

	// Optional outputs.
	CatalogPath     *string `json:"catalog_path,omitempty" yaml:"catalog_path,omitempty"`
	ReportDir       *string `json:"report_dir,omitempty" yaml:"report_dir,omitempty"`
	MetricsTextfile *string `json:"metrics_textfile,omitempty" yaml:"metrics_textfile,omitempty"`
}

// EmptyConversionConfig returns a config with every field unset.
func EmptyConversionConfig() *ConversionConfig {
	return &ConversionConfig{}
}

// LoadConversionConfig loads a config from a .json, .yaml or .yml file of
// at most 1MB and validates it. Omitted fields keep their defaults.
func LoadConversionConfig(path string) (*ConversionConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyConversionConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching upwards from the
// current directory. Panics if the file cannot be loaded; intended for tests.
func MustLoadDefaultConfig() *ConversionConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from cmd/tools/<tool>/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadConversionConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that every set value is usable.
func (c *ConversionConfig) Validate() error {
	if err := c.Encode.validate("encode"); err != nil {
		return err
	}
	if err := c.Downsample.validate("downsample"); err != nil {
		return err
	}
	if c.Workers != nil && (*c.Workers < 1 || *c.Workers > MaxWorkers) {
		return fmt.Errorf("workers must be between 1 and %d, got %d", MaxWorkers, *c.Workers)
	}
	return nil
}

func (l *LimitConfig) validate(section string) error {
	if l == nil {
		return nil
	}
	if l.Ratio != nil {
		r := *l.Ratio
		if math.IsNaN(r) || r <= 0 || r > 1 {
			return fmt.Errorf("%s.ratio must be in (0, 1], got %g", section, r)
		}
	}
	if l.MaxPoints != nil && *l.MaxPoints < 0 {
		return fmt.Errorf("%s.max_points must be non-negative, got %d", section, *l.MaxPoints)
	}
	return nil
}

// GetEncodeRatio returns encode.ratio or the default.
func (c *ConversionConfig) GetEncodeRatio() float64 {
	if c.Encode == nil || c.Encode.Ratio == nil {
		return DefaultEncodeRatio
	}
	return *c.Encode.Ratio
}

// GetEncodeMaxPoints returns encode.max_points, or nil when unset.
func (c *ConversionConfig) GetEncodeMaxPoints() *int {
	if c.Encode == nil {
		return nil
	}
	return c.Encode.MaxPoints
}

// GetDownsampleRatio returns downsample.ratio or the default.
func (c *ConversionConfig) GetDownsampleRatio() float64 {
	if c.Downsample == nil || c.Downsample.Ratio == nil {
		return DefaultDownsampleRatio
	}
	return *c.Downsample.Ratio
}

// GetDownsampleMaxPoints returns downsample.max_points, or nil when unset.
func (c *ConversionConfig) GetDownsampleMaxPoints() *int {
	if c.Downsample == nil {
		return nil
	}
	return c.Downsample.MaxPoints
}

// GetWorkers returns workers or the default.
func (c *ConversionConfig) GetWorkers() int {
	if c.Workers == nil {
		return DefaultWorkers
	}
	return *c.Workers
}

// GetCatalogPath returns catalog_path, or "" when no catalog is configured.
func (c *ConversionConfig) GetCatalogPath() string {
	if c.CatalogPath == nil {
		return ""
	}
	return *c.CatalogPath
}

// GetReportDir returns report_dir, or "" when reports are disabled.
func (c *ConversionConfig) GetReportDir() string {
	if c.ReportDir == nil {
		return ""
	}
	return *c.ReportDir
}

// GetMetricsTextfile returns metrics_textfile, or "" when disabled.
func (c *ConversionConfig) GetMetricsTextfile() string {
	if c.MetricsTextfile == nil {
		return ""
	}
	return *c.MetricsTextfile
}
