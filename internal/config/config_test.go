package config

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Athlete.RestingHR != 50 {
		t.Errorf("Athlete.RestingHR = %v, want 50", cfg.Athlete.RestingHR)
	}
	if cfg.Athlete.MaxHR != 185 {
		t.Errorf("Athlete.MaxHR = %v, want 185", cfg.Athlete.MaxHR)
	}
	if cfg.Athlete.ThresholdHR != 165 {
		t.Errorf("Athlete.ThresholdHR = %v, want 165", cfg.Athlete.ThresholdHR)
	}

	// FTP has no sensible default; it must come from the athlete
	if cfg.Athlete.FTP != 0 {
		t.Errorf("Athlete.FTP should be unset by default, got %v", cfg.Athlete.FTP)
	}

	if cfg.Model.DetrainingTL != 10 {
		t.Errorf("Model.DetrainingTL = %v, want 10", cfg.Model.DetrainingTL)
	}
	if cfg.Model.VeryFreshForm != 10 {
		t.Errorf("Model.VeryFreshForm = %v, want 10", cfg.Model.VeryFreshForm)
	}

	if cfg.Strava.ClientID != "" {
		t.Errorf("Strava.ClientID should be empty, got %q", cfg.Strava.ClientID)
	}
	if cfg.Strava.ClientSecret != "" {
		t.Errorf("Strava.ClientSecret should be empty, got %q", cfg.Strava.ClientSecret)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Strava: StravaConfig{
			ClientID:     "12345",
			ClientSecret: "abc123secret",
		},
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errContains string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:        "empty client ID",
			mutate:      func(c *Config) { c.Strava.ClientID = "" },
			expectError: true,
			errContains: "client_id",
		},
		{
			name:        "placeholder client ID",
			mutate:      func(c *Config) { c.Strava.ClientID = "YOUR_CLIENT_ID" },
			expectError: true,
			errContains: "client_id",
		},
		{
			name:        "empty client secret",
			mutate:      func(c *Config) { c.Strava.ClientSecret = "" },
			expectError: true,
			errContains: "client_secret",
		},
		{
			name:        "placeholder client secret",
			mutate:      func(c *Config) { c.Strava.ClientSecret = "YOUR_CLIENT_SECRET" },
			expectError: true,
			errContains: "client_secret",
		},
		{
			name:        "negative FTP",
			mutate:      func(c *Config) { c.Athlete.FTP = -200 },
			expectError: true,
			errContains: "ftp",
		},
		{
			name: "threshold HR above max HR",
			mutate: func(c *Config) {
				c.Athlete.ThresholdHR = 190
				c.Athlete.MaxHR = 185
			},
			expectError: true,
			errContains: "threshold_hr",
		},
		{
			name: "threshold HR at resting HR",
			mutate: func(c *Config) {
				c.Athlete.ThresholdHR = 50
				c.Athlete.RestingHR = 50
			},
			expectError: true,
			errContains: "resting_hr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				} else if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestRequireFTP(t *testing.T) {
	cfg := Config{Athlete: AthleteConfig{FTP: 250}}
	ftp, err := cfg.RequireFTP()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ftp != 250 {
		t.Errorf("RequireFTP() = %v, want 250", ftp)
	}

	cfg.Athlete.FTP = 0
	if _, err := cfg.RequireFTP(); !errors.Is(err, ErrNoFTP) {
		t.Errorf("RequireFTP() error = %v, want ErrNoFTP", err)
	}
}
