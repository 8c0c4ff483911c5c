package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, &Config{
		DefaultProfile:  "Default",
		LaunchTimeout:   30 * time.Second,
		CommandTimeout:  30 * time.Second,
		GracefulTimeout: 5 * time.Second,
		ConnectAttempts: 3,
		LogLevel:        "info",
		SaveDir:         "cookies",
	}, c)
	assert.Equal(t, logrus.InfoLevel, c.Level())
	assert.Nil(t, c.CategoryFilter())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("COOKIEGRAB_EXECUTABLE_PATH", "/opt/google/chrome/chrome")
	t.Setenv("COOKIEGRAB_USER_DATA_DIR", "/tmp/chrome")
	t.Setenv("COOKIEGRAB_DEFAULT_PROFILE", "Profile 1")
	t.Setenv("COOKIEGRAB_LAUNCH_TIMEOUT", "10s")
	t.Setenv("COOKIEGRAB_CONNECT_ATTEMPTS", "5")
	t.Setenv("COOKIEGRAB_LOG_LEVEL", "debug")
	t.Setenv("COOKIEGRAB_LOG_CATEGORY_FILTER", "^Session")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/opt/google/chrome/chrome", c.ExecutablePath)
	assert.Equal(t, "/tmp/chrome", c.UserDataDir)
	assert.Equal(t, "Profile 1", c.DefaultProfile)
	assert.Equal(t, 10*time.Second, c.LaunchTimeout)
	assert.Equal(t, 5, c.ConnectAttempts)
	assert.Equal(t, logrus.DebugLevel, c.Level())
	require.NotNil(t, c.CategoryFilter())
	assert.True(t, c.CategoryFilter().MatchString("Session:Close"))
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "bad_duration",
			env:     map[string]string{"COOKIEGRAB_COMMAND_TIMEOUT": "soon"},
			wantErr: "reading configuration",
		},
		{
			name:    "zero_attempts",
			env:     map[string]string{"COOKIEGRAB_CONNECT_ATTEMPTS": "0"},
			wantErr: "COOKIEGRAB_CONNECT_ATTEMPTS must be at least 1",
		},
		{
			name:    "negative_timeout",
			env:     map[string]string{"COOKIEGRAB_GRACEFUL_TIMEOUT": "-1s"},
			wantErr: "COOKIEGRAB_GRACEFUL_TIMEOUT must be positive",
		},
		{
			name:    "bad_level",
			env:     map[string]string{"COOKIEGRAB_LOG_LEVEL": "loud"},
			wantErr: "COOKIEGRAB_LOG_LEVEL",
		},
		{
			name:    "bad_filter",
			env:     map[string]string{"COOKIEGRAB_LOG_CATEGORY_FILTER": "("},
			wantErr: "COOKIEGRAB_LOG_CATEGORY_FILTER",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
