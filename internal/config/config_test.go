package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		expectError bool
	}{
		{
			name:        "missing port",
			cfg:         Config{JWTSecret: "secret"},
			expectError: true,
		},
		{
			name:        "missing JWT secret",
			cfg:         Config{Port: "8480"},
			expectError: true,
		},
		{
			name:        "development with default secret",
			cfg:         Config{Port: "8480", Env: "development", JWTSecret: "your-secret-key-change-in-production"},
			expectError: false,
		},
		{
			name:        "production with default secret",
			cfg:         Config{Port: "8480", Env: "production", JWTSecret: "your-secret-key-change-in-production", DBPassword: "strong-db-password"},
			expectError: true,
		},
		{
			name:        "production with short secret",
			cfg:         Config{Port: "8480", Env: "production", JWTSecret: "short", DBPassword: "strong-db-password"},
			expectError: true,
		},
		{
			name:        "production with default DB password",
			cfg:         Config{Port: "8480", Env: "production", JWTSecret: "secure-secret-at-least-32-chars-long", DBPassword: "password"},
			expectError: true,
		},
		{
			name:        "valid production config",
			cfg:         Config{Port: "8480", Env: "production", JWTSecret: "secure-secret-at-least-32-chars-long", DBPassword: "strong-db-password", DBSSLMode: "require"},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	assert.True(t, (&Config{Env: "production"}).IsProduction())
	assert.True(t, (&Config{Env: "prod"}).IsProduction())
	assert.False(t, (&Config{Env: "development"}).IsProduction())
	assert.False(t, (&Config{Env: "test"}).IsProduction())
}
