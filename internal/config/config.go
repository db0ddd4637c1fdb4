package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port string `yaml:"port"`

	// NOMADS grib filter endpoint and the subset requested from it.
	NomadsBaseURL string   `yaml:"nomads_base_url"`
	Variables     []string `yaml:"variables"`
	Levels        []string `yaml:"levels"`

	// On-disk areas for raw grids and converted documents.
	GribDataDir string `yaml:"grib_data_dir"`
	JSONDataDir string `yaml:"json_data_dir"`

	ConverterBin   string        `yaml:"converter_bin"`
	ConvertTimeout time.Duration `yaml:"convert_timeout"`

	// FetchInterval controls how often a new acquisition run is triggered.
	FetchInterval time.Duration `yaml:"fetch_interval"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"`

	OpenWeatherAPIKey string `yaml:"openweather_api_key"`
	RoutingDataFile   string `yaml:"routing_data_file"`

	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() *AppConfig {
	return &AppConfig{
		Port:            "8080",
		NomadsBaseURL:   "https://nomads.ncep.noaa.gov/cgi-bin/filter_gfs_1p00.pl",
		Variables:       []string{"TMP", "UGRD", "VGRD"},
		Levels:          []string{"10_m_above_ground", "surface"},
		GribDataDir:     "./data/grib-data",
		JSONDataDir:     "./data/json-data",
		ConverterBin:    "converter/bin/grib2json",
		ConvertTimeout:  2 * time.Minute,
		FetchInterval:   5 * time.Minute,
		HTTPTimeout:     60 * time.Second,
		RoutingDataFile: "./data/routing-data/data.csv",
		LogLevel:        "INFO",
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, and environment variables, in that order of precedence.
// A .env file should already have been loaded by the caller.
func Load() (*AppConfig, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) applyEnv() error {
	c.Port = getenvDefault("PORT", c.Port)
	c.NomadsBaseURL = getenvDefault("NOMADS_BASE_URL", c.NomadsBaseURL)
	c.Variables = getenvList("GFS_VARIABLES", c.Variables)
	c.Levels = getenvList("GFS_LEVELS", c.Levels)
	c.GribDataDir = getenvDefault("GRIB_DATA_DIR", c.GribDataDir)
	c.JSONDataDir = getenvDefault("JSON_DATA_DIR", c.JSONDataDir)
	c.ConverterBin = getenvDefault("CONVERTER_BIN", c.ConverterBin)
	c.OpenWeatherAPIKey = getenvDefault("OPENWEATHER_API_KEY", c.OpenWeatherAPIKey)
	c.RoutingDataFile = getenvDefault("ROUTING_DATA_FILE", c.RoutingDataFile)
	c.LogFile = getenvDefault("LOG_FILE", c.LogFile)
	c.LogLevel = getenvDefault("LOG_LEVEL", c.LogLevel)

	var err error
	if c.FetchInterval, err = getenvDuration("FETCH_INTERVAL", c.FetchInterval); err != nil {
		return err
	}
	if c.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", c.HTTPTimeout); err != nil {
		return err
	}
	if c.ConvertTimeout, err = getenvDuration("CONVERT_TIMEOUT", c.ConvertTimeout); err != nil {
		return err
	}
	return nil
}

func (c *AppConfig) validate() error {
	if c.FetchInterval < time.Minute {
		return fmt.Errorf("invalid FETCH_INTERVAL %s: must be at least 1m", c.FetchInterval)
	}
	if c.NomadsBaseURL == "" {
		return fmt.Errorf("NOMADS_BASE_URL must not be empty")
	}
	if len(c.Variables) == 0 || len(c.Levels) == 0 {
		return fmt.Errorf("at least one GFS variable and level must be requested")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *AppConfig) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
