package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRaw() *RawInput {
	return &RawInput{
		LogLevel:  "info",
		LogFormat: "text",
		Output:    "table",
		Color:     "auto",
		Redact:    true,
		Server:    ServerRawInput{Addr: ":8080", MetricsAddr: ":9090"},
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*RawInput)
		expectError bool
	}{
		{"valid defaults", func(*RawInput) {}, false},
		{"upper case values normalized", func(r *RawInput) { r.LogLevel = "DEBUG"; r.Output = "JSON" }, false},
		{"markdown output", func(r *RawInput) { r.Output = "md" }, false},
		{"metrics disabled", func(r *RawInput) { r.Server.MetricsAddr = "" }, false},
		{"invalid log level", func(r *RawInput) { r.LogLevel = "verbose" }, true},
		{"invalid log format", func(r *RawInput) { r.LogFormat = "xml" }, true},
		{"invalid output", func(r *RawInput) { r.Output = "csv" }, true},
		{"invalid color", func(r *RawInput) { r.Color = "sometimes" }, true},
		{"missing addr", func(r *RawInput) { r.Server.Addr = "" }, true},
		{"malformed addr", func(r *RawInput) { r.Server.Addr = "localhost" }, true},
		{"same listener", func(r *RawInput) { r.Server.MetricsAddr = ":8080" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(raw)
			cfg, err := ProcessAndValidate(raw)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, cfg)
		})
	}
}

func TestProcessAndValidateNormalizes(t *testing.T) {
	raw := validRaw()
	raw.LogLevel = " Warn "
	raw.Output = "MD"
	cfg, err := ProcessAndValidate(raw)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, OutputMarkdown, cfg.Output)
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	v := viper.New()
	Init(v, "")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Logging.Format)
	assert.Equal(t, OutputTable, cfg.Output)
	assert.Equal(t, ColorAuto, cfg.Color)
	assert.True(t, cfg.Redact)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultMetricsAddr, cfg.Server.MetricsAddr)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "medscore.yaml")
	content := "output: json\nlog-level: debug\nserver:\n  addr: 127.0.0.1:7000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("MEDSCORE_COLOR", "no")
	t.Setenv("MEDSCORE_SERVER_METRICS_ADDR", "127.0.0.1:7001")

	v := viper.New()
	Init(v, path)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, ColorNo, cfg.Color)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.Equal(t, "127.0.0.1:7001", cfg.Server.MetricsAddr)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "medscore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: csv\n"), 0644))

	v := viper.New()
	Init(v, path)
	_, err := Load(v)
	assert.ErrorContains(t, err, "invalid output")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	v := viper.New()
	Init(v, filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load(v)
	assert.Error(t, err)
}

func TestUseColor(t *testing.T) {
	assert.True(t, (&Config{Color: ColorYes}).UseColor(false))
	assert.False(t, (&Config{Color: ColorNo}).UseColor(true))
	assert.True(t, (&Config{Color: ColorAuto}).UseColor(true))
	assert.False(t, (&Config{Color: ColorAuto}).UseColor(false))
}
