package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/menta2k/image-dehazer/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Dehaze types.Params `json:"dehaze" yaml:"dehaze"`
	Output OutputConfig `json:"output" yaml:"output"`
	Debug  DebugConfig  `json:"debug" yaml:"debug"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format    string `json:"format" yaml:"format"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`
	Prefix    string `json:"prefix" yaml:"prefix"`
	Suffix    string `json:"suffix" yaml:"suffix"`
	Quality   int    `json:"quality" yaml:"quality"`
	Lossless  bool   `json:"lossless" yaml:"lossless"`
	Compare   bool   `json:"compare" yaml:"compare"`
}

// DebugConfig selects the diagnostic artifacts written next to each result
type DebugConfig struct {
	Transmission bool `json:"transmission" yaml:"transmission"`
	Histogram    bool `json:"histogram" yaml:"histogram"`
}

// outputFormats are the encoders the processor can write
var outputFormats = []string{"jpg", "jpeg", "png", "webp", "bmp", "tif", "tiff", "gif"}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Dehaze: types.DefaultParams(),
		Output: OutputConfig{
			Format:    "",
			OutputDir: "./output",
			Prefix:    "",
			Suffix:    "_dehazed",
			Quality:   90,
			Lossless:  false,
			Compare:   false,
		},
	}
}

// LoadFromFile loads configuration from a JSON or YAML file. Fields
// missing from the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if isYAML(filename) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON or YAML file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	var err error
	if isYAML(filename) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Dehaze.Validate(); err != nil {
		return fmt.Errorf("dehaze: %w", err)
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	if c.Output.Format != "" && !lo.Contains(outputFormats, strings.ToLower(c.Output.Format)) {
		return fmt.Errorf("output.format %q is not supported", c.Output.Format)
	}

	if c.Output.OutputDir == "" {
		return fmt.Errorf("output.output_dir cannot be empty")
	}

	return nil
}

// Params returns the dehazing parameters of the configuration
func (c *Config) Params() types.Params {
	return c.Dehaze
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "image-dehazer", "config.json")
}

func isYAML(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".yaml" || ext == ".yml"
}
