package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3333/api", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.NotEmpty(t, cfg.Storage.Path)
	assert.Equal(t, 0, cfg.Retry.Max)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FINANCAS_API_URL", "https://financas.example.com/api")
	t.Setenv("FINANCAS_STORAGE_BACKEND", "sqlite")
	t.Setenv("FINANCAS_STORAGE_PATH", "/tmp/financas.db")
	t.Setenv("FINANCAS_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://financas.example.com/api", cfg.APIURL)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/financas.db", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: https://api.example.com
timeout: 5s
storage:
  backend: memory
retry:
  max: 2
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 2, cfg.Retry.Max)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid",
			cfg:  Config{APIURL: "http://localhost:3333/api", Timeout: time.Second, Storage: StorageConfig{Backend: "memory"}},
		},
		{
			name:    "bad scheme",
			cfg:     Config{APIURL: "ftp://host/api", Timeout: time.Second, Storage: StorageConfig{Backend: "memory"}},
			wantErr: "scheme",
		},
		{
			name:    "unknown backend",
			cfg:     Config{APIURL: "http://h", Timeout: time.Second, Storage: StorageConfig{Backend: "redis"}},
			wantErr: "storage.backend",
		},
		{
			name:    "file without path",
			cfg:     Config{APIURL: "http://h", Timeout: time.Second, Storage: StorageConfig{Backend: "file"}},
			wantErr: "storage.path",
		},
		{
			name:    "negative retry",
			cfg:     Config{APIURL: "http://h", Timeout: time.Second, Storage: StorageConfig{Backend: "memory"}, Retry: RetryConfig{Max: -1}},
			wantErr: "retry.max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
