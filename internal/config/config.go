package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration
type Config struct {
	Strava  StravaConfig  `json:"strava"`
	Athlete AthleteConfig `json:"athlete"`
	Model   ModelConfig   `json:"model"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// AthleteConfig holds athlete-specific settings. FTP is the one field the
// whole analysis pipeline depends on; everything else has workable defaults.
type AthleteConfig struct {
	FTP         int     `json:"ftp"` // watts
	RestingHR   float64 `json:"resting_hr"`
	MaxHR       float64 `json:"max_hr"`
	ThresholdHR float64 `json:"threshold_hr"`
	WeightKG    float64 `json:"weight_kg"`
}

// ModelConfig holds tunable thresholds for status classification
type ModelConfig struct {
	DetrainingTL  float64 `json:"detraining_tl"`
	VeryFreshForm float64 `json:"very_fresh_form"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// ErrNoFTP is returned when an analysis requires an FTP and none is configured
var ErrNoFTP = errors.New("athlete.ftp is not configured")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Athlete: AthleteConfig{
			RestingHR:   50,
			MaxHR:       185,
			ThresholdHR: 165,
		},
		Model: ModelConfig{
			DetrainingTL:  10,
			VeryFreshForm: 10,
		},
	}
}

// Load reads the configuration from ~/.velofit/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply defaults for missing values
	defaults := DefaultConfig()
	if cfg.Athlete.RestingHR == 0 {
		cfg.Athlete.RestingHR = defaults.Athlete.RestingHR
	}
	if cfg.Athlete.MaxHR == 0 {
		cfg.Athlete.MaxHR = defaults.Athlete.MaxHR
	}
	if cfg.Athlete.ThresholdHR == 0 {
		cfg.Athlete.ThresholdHR = defaults.Athlete.ThresholdHR
	}
	if cfg.Model.DetrainingTL == 0 {
		cfg.Model.DetrainingTL = defaults.Model.DetrainingTL
	}
	if cfg.Model.VeryFreshForm == 0 {
		cfg.Model.VeryFreshForm = defaults.Model.VeryFreshForm
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.velofit/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava = StravaConfig{
		ClientID:     "YOUR_CLIENT_ID",
		ClientSecret: "YOUR_CLIENT_SECRET",
	}
	example.Athlete.FTP = 250

	return Save(&example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}

	if c.Athlete.FTP < 0 {
		return fmt.Errorf("athlete.ftp must be positive, got %d", c.Athlete.FTP)
	}

	// Validate HR ordering when values are set
	if c.Athlete.ThresholdHR > 0 && c.Athlete.MaxHR > 0 && c.Athlete.ThresholdHR >= c.Athlete.MaxHR {
		return fmt.Errorf("athlete.threshold_hr (%v) must be less than athlete.max_hr (%v)", c.Athlete.ThresholdHR, c.Athlete.MaxHR)
	}
	if c.Athlete.ThresholdHR > 0 && c.Athlete.RestingHR > 0 && c.Athlete.ThresholdHR <= c.Athlete.RestingHR {
		return fmt.Errorf("athlete.threshold_hr (%v) must be greater than athlete.resting_hr (%v)", c.Athlete.ThresholdHR, c.Athlete.RestingHR)
	}

	return nil
}

// RequireFTP returns the configured FTP or an error when it is missing.
// Power analysis without an FTP would silently produce garbage, so callers
// surface this before doing any work.
func (c *Config) RequireFTP() (int, error) {
	if c.Athlete.FTP <= 0 {
		return 0, ErrNoFTP
	}
	return c.Athlete.FTP, nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".velofit", "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".velofit"), nil
}
