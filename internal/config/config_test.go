package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaws/metaws/pkg/metaws"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `workspace: /mods/fivem
extensions: [meta, xml, ymt]
server:
  addr: 127.0.0.1:9000
  max_body_bytes: 1024
  confine: false
  allowed_origins: ["http://localhost:5173"]
verbose: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/mods/fivem", cfg.Workspace)
	assert.Equal(t, []string{"meta", "xml", "ymt"}, cfg.Extensions)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, int64(1024), cfg.Server.MaxBodyBytes)
	assert.False(t, cfg.Server.Confine)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Verbose)
}

func TestLoad_MinimalYAMLKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("workspace: ./stream\n"), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "./stream", cfg.Workspace)
	assert.Equal(t, metaws.DefaultExtensions, cfg.Extensions)
	assert.Equal(t, metaws.DefaultServerAddr, cfg.Server.Addr)
	assert.Equal(t, int64(metaws.DefaultMaxBodyBytes), cfg.Server.MaxBodyBytes)
	assert.True(t, cfg.Server.Confine, "serve is confined to the workspace unless disabled")
	assert.Empty(t, cfg.Server.AllowedOrigins)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{{invalid"), 0644))

	cfg, err := Load(dir)
	assert.True(t, errors.Is(err, metaws.ErrInvalidConfig))
	assert.Nil(t, cfg)
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(""), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDefault_DoesNotAliasPackageExtensions(t *testing.T) {
	cfg := Default()
	cfg.Extensions[0] = "changed"
	assert.Equal(t, "meta", metaws.DefaultExtensions[0])
}

func TestResolve_NoFile(t *testing.T) {
	t.Setenv(EnvWorkspace, "")
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvVerbose, "")

	cfg, err := Resolve("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestResolve_ExplicitPathMustExist(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "custom.yaml"), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, metaws.ErrInvalidConfig))
	assert.Equal(t, metaws.ExitConfigError, metaws.ExitCodeForError(err))
}

func TestResolve_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("workspace: /from/file\n"), 0644))
	t.Setenv(EnvWorkspace, "/from/env")
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvVerbose, "true")

	cfg, err := Resolve("", dir)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Workspace)
	assert.True(t, cfg.Verbose)
}

func TestResolve_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("METAWS_ADDR=127.0.0.1:7500\nMETAWS_WORKSPACE=/from/dotenv\n"), 0644))
	t.Setenv(EnvWorkspace, "/from/env")
	t.Setenv(EnvVerbose, "")
	// godotenv sets variables missing from the environment; restore afterwards
	t.Setenv(EnvAddr, "")
	require.NoError(t, os.Unsetenv(EnvAddr))

	cfg, err := Resolve("", dir)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Workspace)
	assert.Equal(t, "127.0.0.1:7500", cfg.Server.Addr)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(lookupFrom(map[string]string{
		EnvWorkspace: "/ws",
		EnvAddr:      "localhost:1",
		EnvVerbose:   "1",
	}))
	require.NoError(t, err)
	assert.Equal(t, "/ws", cfg.Workspace)
	assert.Equal(t, "localhost:1", cfg.Server.Addr)
	assert.True(t, cfg.Verbose)

	err = Default().ApplyEnv(lookupFrom(map[string]string{EnvVerbose: "loud"}))
	assert.True(t, errors.Is(err, metaws.ErrInvalidConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"leading dot allowed", func(c *Config) { c.Extensions = []string{".meta"} }, false},
		{"empty list", func(c *Config) { c.Extensions = nil }, true},
		{"empty entry", func(c *Config) { c.Extensions = []string{"meta", ""} }, true},
		{"compound extension", func(c *Config) { c.Extensions = []string{"tar.xml"} }, true},
		{"path separator", func(c *Config) { c.Extensions = []string{"a/b"} }, true},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, true},
		{"zero body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }, true},
		{"origin", func(c *Config) { c.Server.AllowedOrigins = []string{"http://localhost:5173"} }, false},
		{"origin without scheme", func(c *Config) { c.Server.AllowedOrigins = []string{"localhost:5173"} }, true},
		{"origin with path", func(c *Config) { c.Server.AllowedOrigins = []string{"https://app.example/ui"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, metaws.ErrInvalidConfig), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
