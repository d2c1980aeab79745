package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config represents the main configuration structure
type Config struct {
	InFolder            string           `mapstructure:"in_folder"`
	OutFolder           string           `mapstructure:"out_folder"`
	SmallFolder         string           `mapstructure:"small_folder"`
	Quality             int              `mapstructure:"quality"`
	Full                SizeConfig       `mapstructure:"full"`
	Small               SizeConfig       `mapstructure:"small"`
	SupportedExtensions []string         `mapstructure:"supported_extensions"`
	OutputExtension     string           `mapstructure:"output_extension"`
	Manifest            ManifestConfig   `mapstructure:"manifest"`
	Processing          ProcessingConfig `mapstructure:"processing"`
	Logging             LoggingConfig    `mapstructure:"logging"`
}

// SizeConfig is a target bounding box. Zero leaves an axis unconstrained.
type SizeConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// ManifestConfig contains manifest output settings
type ManifestConfig struct {
	Path      string `mapstructure:"path"`
	Extension string `mapstructure:"extension"`
}

// ProcessingConfig contains batch behavior settings
type ProcessingConfig struct {
	StopOnError bool `mapstructure:"stop_on_error"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// FlagKeys maps CLI flag names to configuration keys.
var FlagKeys = map[string]string{
	"in-folder":    "in_folder",
	"out-folder":   "out_folder",
	"quality":      "quality",
	"width":        "full.width",
	"height":       "full.height",
	"small-width":  "small.width",
	"small-height": "small.height",
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		InFolder:    "./",
		OutFolder:   "fotogaleria-festivalu-XXXX",
		SmallFolder: "small",
		Quality:     90,
		Full: SizeConfig{
			Width:  0,
			Height: 1100,
		},
		Small: SizeConfig{
			Width:  400,
			Height: 0,
		},
		SupportedExtensions: []string{".jpg", ".jpeg", ".png"},
		OutputExtension:     ".jpg",
		Manifest: ManifestConfig{
			Path:      "list.txt",
			Extension: ".jpg",
		},
		Processing: ProcessingConfig{
			StopOnError: false,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			FilePath:   "",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		},
	}
}

// LoadConfig loads configuration from defaults, an optional config file,
// environment variables and, when flags is not nil, the changed CLI flags.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.gallery-compress")
		v.AddConfigPath("/etc/gallery-compress")
	}

	v.SetEnvPrefix("GALLERY_COMPRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	// Every key has a viper default; lists from a file or env replace them whole.
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it on Unmarshal.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("in_folder", c.InFolder)
	v.SetDefault("out_folder", c.OutFolder)
	v.SetDefault("small_folder", c.SmallFolder)
	v.SetDefault("quality", c.Quality)
	v.SetDefault("full.width", c.Full.Width)
	v.SetDefault("full.height", c.Full.Height)
	v.SetDefault("small.width", c.Small.Width)
	v.SetDefault("small.height", c.Small.Height)
	v.SetDefault("supported_extensions", c.SupportedExtensions)
	v.SetDefault("output_extension", c.OutputExtension)
	v.SetDefault("manifest.path", c.Manifest.Path)
	v.SetDefault("manifest.extension", c.Manifest.Extension)
	v.SetDefault("processing.stop_on_error", c.Processing.StopOnError)
	v.SetDefault("logging.level", c.Logging.Level)
	v.SetDefault("logging.format", c.Logging.Format)
	v.SetDefault("logging.file_path", c.Logging.FilePath)
	v.SetDefault("logging.max_size", c.Logging.MaxSize)
	v.SetDefault("logging.max_backups", c.Logging.MaxBackups)
	v.SetDefault("logging.max_age", c.Logging.MaxAge)
	v.SetDefault("logging.compress", c.Logging.Compress)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.InFolder == "" {
		return fmt.Errorf("in_folder is required")
	}
	if !isValidPath(c.InFolder) {
		return fmt.Errorf("in_folder does not exist or is not accessible: %s", c.InFolder)
	}

	if c.OutFolder == "" {
		return fmt.Errorf("out_folder is required")
	}
	if c.SmallFolder == "" {
		c.SmallFolder = "small"
	}

	if c.Full.Width < 0 || c.Full.Height < 0 || c.Small.Width < 0 || c.Small.Height < 0 {
		return fmt.Errorf("target dimensions must not be negative")
	}

	c.SupportedExtensions = normalizeExtensions(c.SupportedExtensions)
	if len(c.SupportedExtensions) == 0 {
		return fmt.Errorf("supported_extensions must not be empty")
	}

	// The output and manifest extensions are matched case-sensitively.
	c.OutputExtension = withDot(c.OutputExtension)
	if c.OutputExtension == "." {
		return fmt.Errorf("output_extension is required")
	}
	if c.Manifest.Extension == "" {
		c.Manifest.Extension = c.OutputExtension
	}
	c.Manifest.Extension = withDot(c.Manifest.Extension)
	if c.Manifest.Path == "" {
		return fmt.Errorf("manifest.path is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.Logging.Format)
	}

	return nil
}

// SmallOutFolder returns the thumbnail output directory.
func (c *Config) SmallOutFolder() string {
	return filepath.Join(c.OutFolder, c.SmallFolder)
}

// IsSupportedExtension checks if the extension is an eligible input extension
func (c *Config) IsSupportedExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, supportedExt := range c.SupportedExtensions {
		if ext == supportedExt {
			return true
		}
	}
	return false
}

// Helper functions

func isValidPath(path string) bool {
	if path == "" {
		return false
	}

	expandedPath := os.ExpandEnv(path)
	if strings.HasPrefix(expandedPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return false
		}
		expandedPath = filepath.Join(home, expandedPath[1:])
	}

	stat, err := os.Stat(expandedPath)
	return err == nil && stat.IsDir()
}

func normalizeExtensions(extensions []string) []string {
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		if ext == "" {
			continue
		}
		normalized = append(normalized, withDot(strings.ToLower(ext)))
	}
	return normalized
}

func withDot(ext string) string {
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}
