package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, DefaultLowScale, cfg.LowScale)
	require.Equal(t, DefaultMediumScale, cfg.MediumScale)
	require.Equal(t, DefaultHighScale, cfg.HighScale)
	require.Equal(t, DefaultComplexityThreshold, cfg.ComplexityThreshold)
	require.Equal(t, DefaultMaxTargetSize, cfg.MaxTargetSize)
	require.False(t, cfg.PreloadShaders)
	require.Equal(t, slog.LevelWarn, cfg.Level())
}

func TestLoad_Env(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("FX_QUALITY_LOW", "0.25")
	t.Setenv("FX_COMPLEXITY_THRESHOLD", "0.5")
	t.Setenv("FX_PRELOAD_SHADERS", "true")
	t.Setenv("FX_LOG_LEVEL", "DEBUG")
	t.Setenv("FX_WORKERS", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 0.25, cfg.LowScale)
	require.Equal(t, 0.5, cfg.ComplexityThreshold)
	require.True(t, cfg.PreloadShaders)
	require.Equal(t, 3, cfg.Workers)
	require.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoad_File(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "fx.yaml")
	require.NoError(t, os.WriteFile(path, []byte("QUALITY_MEDIUM: 0.5\nMAX_TARGET_SIZE: 4096\n"), 0o600))
	t.Setenv("FX_MAX_TARGET_SIZE", "2048")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0.5, cfg.MediumScale)
	require.Equal(t, 2048, cfg.MaxTargetSize, "env overrides file")
}

func TestLoad_ValidationError(t *testing.T) {
	tests := map[string]string{
		"FX_QUALITY_LOW":          "0",
		"FX_QUALITY_HIGH":         "1.5",
		"FX_COMPLEXITY_THRESHOLD": "2",
		"FX_MAX_TARGET_SIZE":      "0",
		"FX_LOG_LEVEL":            "loud",
		"FX_WORKERS":              "-1",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			t.Setenv(key, val)

			cfg, err := Load("")
			require.Error(t, err)
			require.Nil(t, cfg)
		})
	}
}

func TestLoad_ScalesMustIncrease(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("FX_QUALITY_LOW", "0.8")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
