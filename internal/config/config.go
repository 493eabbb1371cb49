package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"atlaspack/internal/atlas"
	"atlaspack/internal/export"
	"atlaspack/internal/packer"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds all configurable paths and packing settings.
// Pointer fields distinguish "unset" from an explicit zero or false.
type Config struct {
	// Paths
	InputDir  string `json:"input_dir" yaml:"input_dir" toml:"input_dir"`
	OutputDir string `json:"output_dir" yaml:"output_dir" toml:"output_dir"`
	Name      string `json:"name" yaml:"name" toml:"name"`

	// Packing settings
	Sizes         []int             `json:"sizes" yaml:"sizes" toml:"sizes"`
	Padding       *int              `json:"padding" yaml:"padding" toml:"padding"`
	Extrude       int               `json:"extrude" yaml:"extrude" toml:"extrude"`
	Rotate        bool              `json:"rotate" yaml:"rotate" toml:"rotate"`
	Trim          *bool             `json:"trim" yaml:"trim" toml:"trim"`
	TrimThreshold *float64          `json:"trim_threshold" yaml:"trim_threshold" toml:"trim_threshold"`
	Despeckle     float64           `json:"despeckle" yaml:"despeckle" toml:"despeckle"`
	MaxSpriteSize int               `json:"max_sprite_size" yaml:"max_sprite_size" toml:"max_sprite_size"`
	Algorithm     packer.Algorithm  `json:"algorithm" yaml:"algorithm" toml:"algorithm"`
	Format        atlas.PixelFormat `json:"format" yaml:"format" toml:"format"`
	Mipmaps       bool              `json:"mipmaps" yaml:"mipmaps" toml:"mipmaps"`
	Optimize      *bool             `json:"optimize" yaml:"optimize" toml:"optimize"`
	Sort          atlas.SortOrder   `json:"sort" yaml:"sort" toml:"sort"`

	// Output settings
	ImageFormat string `json:"image_format" yaml:"image_format" toml:"image_format"`
	Workers     int    `json:"workers" yaml:"workers" toml:"workers"`

	// baseDir anchors relative paths; set by Load to the config file's directory.
	baseDir string
}

// Load reads a JSON, YAML or TOML config file, chosen by extension.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("config: unsupported file type %q", ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.baseDir = filepath.Dir(path)
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
// Zero values and empty strings mean "not given"; Padding uses -1.
type Flags struct {
	InputDir    string
	OutputDir   string
	Name        string
	Sizes       string // comma-separated, e.g. "1024,2048,512"
	Padding     int
	Rotate      bool
	Algorithm   string
	Format      string
	ImageFormat string
	Workers     int
}

// Resolve applies flag overrides, then fills any unset field with defaults.
func (c *Config) Resolve(flags Flags) error {
	// CLI flags override config file
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Name != "" {
		c.Name = flags.Name
	}
	if flags.Sizes != "" {
		sizes, err := ParseSizes(flags.Sizes)
		if err != nil {
			return err
		}
		c.Sizes = sizes
	}
	if flags.Padding >= 0 {
		p := flags.Padding
		c.Padding = &p
	}
	if flags.Rotate {
		c.Rotate = true
	}
	if flags.Algorithm != "" {
		alg, err := packer.ParseAlgorithm(flags.Algorithm)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		c.Algorithm = alg
	}
	if flags.Format != "" {
		f, err := atlas.ParsePixelFormat(flags.Format)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		c.Format = f
	}
	if flags.ImageFormat != "" {
		c.ImageFormat = flags.ImageFormat
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	// Resolve relative paths against the config file
	if c.baseDir != "" {
		if c.InputDir != "" && !filepath.IsAbs(c.InputDir) && flags.InputDir == "" {
			c.InputDir = filepath.Join(c.baseDir, c.InputDir)
		}
		if c.OutputDir != "" && !filepath.IsAbs(c.OutputDir) && flags.OutputDir == "" {
			c.OutputDir = filepath.Join(c.baseDir, c.OutputDir)
		}
	}

	// Defaults
	def := atlas.DefaultOptions()
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.Name == "" {
		c.Name = "atlas"
	}
	if len(c.Sizes) == 0 {
		c.Sizes = def.Sizes
	}
	if c.Padding == nil {
		c.Padding = &def.Padding
	}
	if c.Trim == nil {
		c.Trim = &def.Trim
	}
	if c.TrimThreshold == nil {
		c.TrimThreshold = &def.TrimThreshold
	}
	if c.Optimize == nil {
		c.Optimize = &def.Optimize
	}
	if c.ImageFormat == "" {
		c.ImageFormat = string(export.PNG)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return nil
}

// Validate checks a resolved config.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("config: no input directory")
	}
	if _, err := export.ParseImageFormat(c.ImageFormat); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Despeckle < 0 || c.Despeckle >= 1 {
		return fmt.Errorf("config: despeckle %v outside [0,1)", c.Despeckle)
	}
	if c.MaxSpriteSize < 0 {
		return fmt.Errorf("config: max_sprite_size %d is negative", c.MaxSpriteSize)
	}
	if err := c.Options().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Options converts a resolved config to packing options.
func (c *Config) Options() atlas.Options {
	opts := atlas.DefaultOptions()
	opts.Sizes = c.Sizes
	opts.Extrude = c.Extrude
	opts.AllowRotation = c.Rotate
	opts.Algorithm = c.Algorithm
	opts.Format = c.Format
	opts.Mipmaps = c.Mipmaps
	opts.Sort = c.Sort
	if c.Padding != nil {
		opts.Padding = *c.Padding
	}
	if c.Trim != nil {
		opts.Trim = *c.Trim
	}
	if c.TrimThreshold != nil {
		opts.TrimThreshold = *c.TrimThreshold
	}
	if c.Optimize != nil {
		opts.Optimize = *c.Optimize
	}
	return opts
}

// ParseSizes parses a comma-separated list of bin sizes.
func ParseSizes(s string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("config: invalid size %q", part)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("config: no sizes in %q", s)
	}
	return sizes, nil
}
