package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		JWTSecret:   "test-secret",
		Port:        "8080",
		DBPassword:  "password",
		UploadDir:   "uploads",
		MaxUploadMB: 5,
		Env:         "test",
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "Valid development config",
			mutate: func(c *Config) {},
		},
		{
			name:    "Missing port",
			mutate:  func(c *Config) { c.Port = "" },
			wantErr: "PORT is required",
		},
		{
			name:    "Missing JWT secret",
			mutate:  func(c *Config) { c.JWTSecret = "" },
			wantErr: "JWT_SECRET is required",
		},
		{
			name:    "Missing upload dir",
			mutate:  func(c *Config) { c.UploadDir = "" },
			wantErr: "UPLOAD_DIR is required",
		},
		{
			name:    "Non-positive upload cap",
			mutate:  func(c *Config) { c.MaxUploadMB = 0 },
			wantErr: "MAX_UPLOAD_MB must be positive",
		},
		{
			name: "Production rejects default JWT secret",
			mutate: func(c *Config) {
				c.Env = "production"
				c.JWTSecret = defaultJWTSecret
			},
			wantErr: "JWT_SECRET must be changed from the default value in production",
		},
		{
			name: "Production rejects short JWT secret",
			mutate: func(c *Config) {
				c.Env = "production"
				c.JWTSecret = "short"
			},
			wantErr: "JWT_SECRET must be at least 32 characters in production",
		},
		{
			name: "Production rejects weak DB password",
			mutate: func(c *Config) {
				c.Env = "production"
				c.JWTSecret = "a-sufficiently-long-production-secret-value"
				c.DBPassword = "password"
			},
			wantErr: "a strong DB_PASSWORD is required in production",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestIsProduction(t *testing.T) {
	assert.True(t, (&Config{Env: "production"}).IsProduction())
	assert.True(t, (&Config{Env: "prod"}).IsProduction())
	assert.False(t, (&Config{Env: "development"}).IsProduction())
	assert.False(t, (&Config{Env: "test"}).IsProduction())
}
