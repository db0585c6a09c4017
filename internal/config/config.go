// Package config provides Viper-based configuration loading for the spawn
// zone editor.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/hordetools/spawnedit/internal/model"
)

// SourcesConfig names the mod source files for one editing session.
type SourcesConfig struct {
	// DynamicZones is the path to the dynamic spawn zones file.
	DynamicZones string `mapstructure:"dynamic_zones"`
	// StaticZones is the path to the static horde placements file.
	StaticZones string `mapstructure:"static_zones"`
	// ConfigMappings is the path to the choose-categories file.
	ConfigMappings string `mapstructure:"config_mappings"`
	// Categories is the path to the categories file.
	Categories string `mapstructure:"categories"`
	// Health is the optional path to the zombie health data file; empty
	// disables danger classification.
	Health string `mapstructure:"health"`
}

// Paths converts the section into the loader's path set.
//
// Postcondition: Returns a Paths carrying the five source file paths.
func (s SourcesConfig) Paths() model.Paths {
	return model.Paths{
		DynamicZones:   s.DynamicZones,
		StaticZones:    s.StaticZones,
		ConfigMappings: s.ConfigMappings,
		Categories:     s.Categories,
		Health:         s.Health,
	}
}

// WorldConfig holds map geometry settings.
type WorldConfig struct {
	// Size is the world extent in game coordinates, shared by both axes.
	Size int `mapstructure:"size"`
	// MinZoneWidth is the minimum width of a newly drawn rectangle.
	MinZoneWidth int `mapstructure:"min_zone_width"`
	// MinZoneHeight is the minimum height of a newly drawn rectangle.
	MinZoneHeight int `mapstructure:"min_zone_height"`
	// ImageSize is the map image edge length in pixels.
	ImageSize int `mapstructure:"image_size"`
	// BackgroundImage is the map background file used by the HTML viewer.
	BackgroundImage string `mapstructure:"background_image"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ExportConfig holds export output settings.
type ExportConfig struct {
	// OutputDir is where manifests and generated maps are written.
	OutputDir string `mapstructure:"output_dir"`
	// ManifestName is the manifest filename within OutputDir.
	ManifestName string `mapstructure:"manifest_name"`
}

// Config is the top-level application configuration.
type Config struct {
	Sources SourcesConfig `mapstructure:"sources"`
	World   WorldConfig   `mapstructure:"world"`
	Logging LoggingConfig `mapstructure:"logging"`
	Export  ExportConfig  `mapstructure:"export"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateSources(c.Sources); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWorld(c.World); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateExport(c.Export); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSources(s SourcesConfig) error {
	var errs []string
	if s.DynamicZones == "" {
		errs = append(errs, "sources.dynamic_zones must not be empty")
	}
	if s.StaticZones == "" {
		errs = append(errs, "sources.static_zones must not be empty")
	}
	if s.ConfigMappings == "" {
		errs = append(errs, "sources.config_mappings must not be empty")
	}
	if s.Categories == "" {
		errs = append(errs, "sources.categories must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateWorld(w WorldConfig) error {
	var errs []string
	if w.Size < 1 {
		errs = append(errs, fmt.Sprintf("world.size must be positive, got %d", w.Size))
	}
	if w.MinZoneWidth < 1 {
		errs = append(errs, fmt.Sprintf("world.min_zone_width must be >= 1, got %d", w.MinZoneWidth))
	}
	if w.MinZoneHeight < 1 {
		errs = append(errs, fmt.Sprintf("world.min_zone_height must be >= 1, got %d", w.MinZoneHeight))
	}
	if w.ImageSize < 1 {
		errs = append(errs, fmt.Sprintf("world.image_size must be positive, got %d", w.ImageSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateExport(e ExportConfig) error {
	if e.ManifestName == "" {
		return errors.New("export.manifest_name must not be empty")
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SPAWNEDIT_ prefix
	v.SetEnvPrefix("SPAWNEDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("world.size", 15360)
	v.SetDefault("world.min_zone_width", 50)
	v.SetDefault("world.min_zone_height", 50)
	v.SetDefault("world.image_size", 4096)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("export.output_dir", ".")
	v.SetDefault("export.manifest_name", "export.json")
}
