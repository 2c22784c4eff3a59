package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oilgas-dashboard/pkg/logging"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DefaultCandidates, cfg.Data.Candidates)
	assert.Equal(t, 240000, cfg.Sampler.TargetRows)
	assert.Equal(t, int64(42), cfg.Sampler.Seed)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
  read_timeout: 5s
logging:
  level: debug
data:
  candidates:
    - data/a.csv
    - data/b.csv
sampler:
  target_rows: 1000
`), 0o644))

	t.Setenv(FileEnvVar, path)
	t.Setenv("DASHBOARD_SERVER_PORT", "7070")
	t.Setenv("DASHBOARD_SAMPLER_SEED", "7")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"data/a.csv", "data/b.csv"}, cfg.Data.Candidates)
	assert.Equal(t, 1000, cfg.Sampler.TargetRows)
	assert.Equal(t, int64(7), cfg.Sampler.Seed)
}

func TestLoadConfig_EnvList(t *testing.T) {
	t.Setenv(FileEnvVar, filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("DASHBOARD_DATA_CANDIDATES", "x.csv,y.csv")

	_, err := LoadConfig()
	assert.Error(t, err, "a missing explicit config file is an error")

	t.Setenv(FileEnvVar, "")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"x.csv", "y.csv"}, cfg.Data.Candidates)
}

func TestLoadConfig_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  prot: 1\n"), 0o644))
	t.Setenv(FileEnvVar, path)

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "Config.Server.Port"},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, "Config.Server.ReadTimeout"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }, "Config.Logging.Level"},
		{"no candidates", func(c *Config) { c.Data.Candidates = nil }, "Config.Data.Candidates"},
		{"blank candidate", func(c *Config) { c.Data.Candidates = []string{""} }, "Config.Data.Candidates[0]"},
		{"non-positive target", func(c *Config) { c.Sampler.TargetRows = 0 }, "Config.Sampler.TargetRows"},
		{"sample overwrites source", func(c *Config) { c.Sampler.OutputPath = c.Sampler.SourcePath }, "Config.Sampler.OutputPath"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidate_LogLevelsMatchLogger(t *testing.T) {
	levels := map[string]logging.LogLevel{
		"debug":   logging.DebugLevel,
		"info":    logging.InfoLevel,
		"warn":    logging.WarnLevel,
		"warning": logging.WarnLevel,
		"error":   logging.ErrorLevel,
		"fatal":   logging.FatalLevel,
	}

	for name, want := range levels {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Logging.Level = name

			assert.NoError(t, cfg.Validate())
			assert.Equal(t, want, logging.ParseLevel(name))
		})
	}
}
