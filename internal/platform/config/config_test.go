package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("APP_STORE_DRIVER", "memory")
	t.Setenv("APP_HTTP_PORT", "9001")
	t.Setenv("APP_MESSAGING_API_URL", "https://gate.example.com/")

	cfg, err := Load("test")
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 9001, cfg.HTTPPort)
	assert.Equal(t, "https://gate.example.com/", cfg.MessagingAPIURL)
	assert.Equal(t, IntentProviderNone, cfg.IntentProvider)
	assert.Equal(t, "IL", cfg.PhoneDefaultRegion)
	assert.Equal(t, 100, cfg.MessageLogLimit)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout())
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory store without dsn", Config{StoreDriver: StoreDriverMemory, IntentProvider: IntentProviderNone}, false},
		{"postgres without dsn", Config{StoreDriver: StoreDriverPostgres, IntentProvider: IntentProviderNone}, true},
		{"unknown store", Config{StoreDriver: "mysql", IntentProvider: IntentProviderNone}, true},
		{"gemini without key", Config{StoreDriver: StoreDriverMemory, IntentProvider: IntentProviderGemini}, true},
		{"gemini with key", Config{StoreDriver: StoreDriverMemory, IntentProvider: IntentProviderGemini, GeminiAPIKey: "k"}, false},
		{"unknown intent provider", Config{StoreDriver: StoreDriverMemory, IntentProvider: "openai"}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDurations_FallBackOnZero(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, 10*time.Second, cfg.MessagingTimeout())
	assert.Equal(t, 15*time.Second, cfg.IntentTimeout())
	assert.Equal(t, 12*time.Hour, cfg.OperatorTokenTTL())
}
