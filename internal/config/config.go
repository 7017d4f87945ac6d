// Package config loads everylot settings from a YAML file, a .env file and
// the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values.
const (
	DefaultSearchFormat = "{address}, Cincinnati, OH"
	DefaultBlueskyHost  = "https://bsky.social"
	DefaultPitch        = -10
	DefaultFOV          = 65
	DefaultImageSize    = "640x640"
	DefaultLengthLimit  = 300
)

// Config holds every setting a run needs. Components receive the part
// they use; nothing reads the environment after Load.
type Config struct {
	DatabasePath string         `yaml:"database_path,omitempty"`
	PrintFormat  string         `yaml:"print_format,omitempty"`  // post text template, empty means the built-in one
	SearchFormat string         `yaml:"search_format,omitempty"` // Street View location template
	StartID      *int64         `yaml:"start_id,omitempty"`      // lot to post instead of a random one
	ImageDir     string         `yaml:"image_dir,omitempty"`     // where --save-image writes
	MetricsFile  string         `yaml:"metrics_file,omitempty"`  // node_exporter textfile output
	LengthLimit  int            `yaml:"length_limit,omitempty"`  // graphemes allowed in a post
	StreetView   StreetView     `yaml:"streetview"`
	Bluesky      BlueskyAccount `yaml:"bluesky"`
}

// StreetView holds Google Street View settings.
type StreetView struct {
	APIKey string  `yaml:"api_key,omitempty"`
	Pitch  float64 `yaml:"pitch"`
	FOV    int     `yaml:"fov"`
	Size   string  `yaml:"size,omitempty"`
}

// BlueskyAccount holds the posting account.
type BlueskyAccount struct {
	Enabled    bool   `yaml:"enabled"`
	Host       string `yaml:"host,omitempty"`
	Identifier string `yaml:"identifier,omitempty"`
	Password   string `yaml:"password,omitempty"`
}

// Options selects the files Load reads. Empty fields use the defaults;
// missing files are skipped.
type Options struct {
	File    string // YAML config, default ~/.config/everylot/config.yaml
	EnvFile string // dotenv file, default .env in the working directory
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SearchFormat: DefaultSearchFormat,
		ImageDir:     ".",
		LengthLimit:  DefaultLengthLimit,
		StreetView: StreetView{
			Pitch: DefaultPitch,
			FOV:   DefaultFOV,
			Size:  DefaultImageSize,
		},
		Bluesky: BlueskyAccount{
			Enabled: true,
			Host:    DefaultBlueskyHost,
		},
	}
}

// DefaultPath returns the path to the YAML config file.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "everylot", "config.yaml"), nil
}

// Load builds the configuration from defaults, then the YAML file, then
// the dotenv file and process environment. Variables already set in the
// environment win over the dotenv file.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	path := opts.File
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	if err := cfg.readFile(path); err != nil {
		return nil, err
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// readFile merges the YAML file at path into cfg.
func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

// applyEnv overrides cfg with any variables that are set.
func (c *Config) applyEnv() error {
	setString("DATABASE_PATH", &c.DatabasePath)
	setString("PRINT_FORMAT", &c.PrintFormat)
	setString("SEARCH_FORMAT", &c.SearchFormat)
	setString("EVERYLOT_IMAGE_DIR", &c.ImageDir)
	setString("EVERYLOT_METRICS_FILE", &c.MetricsFile)
	setString("GOOGLE_API_KEY", &c.StreetView.APIKey)
	setString("BLUESKY_HOST", &c.Bluesky.Host)
	setString("BLUESKY_IDENTIFIER", &c.Bluesky.Identifier)
	setString("BLUESKY_PASSWORD", &c.Bluesky.Password)

	if v, ok := lookup("START_ID"); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing START_ID: %w", err)
		}
		c.StartID = &id
	}
	if v, ok := lookup("STREETVIEW_PITCH"); ok {
		pitch, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parsing STREETVIEW_PITCH: %w", err)
		}
		c.StreetView.Pitch = pitch
	}
	if v, ok := lookup("STREETVIEW_FOV"); ok {
		fov, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing STREETVIEW_FOV: %w", err)
		}
		c.StreetView.FOV = fov
	}
	if v, ok := lookup("POST_LENGTH_LIMIT"); ok {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing POST_LENGTH_LIMIT: %w", err)
		}
		c.LengthLimit = limit
	}
	if v, ok := lookup("ENABLE_BLUESKY"); ok {
		c.Bluesky.Enabled = strings.EqualFold(v, "true")
	}

	return nil
}

// lookup returns a non-empty environment variable.
func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func setString(key string, dst *string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}
