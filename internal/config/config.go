// Package config loads engine settings from the environment and an
// optional config file.
package config

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. FX_QUALITY_LOW.
const EnvPrefix = "FX"

// Config holds the engine settings.
type Config struct {
	// Resolution factor of each quality level.
	LowScale    float64 `mapstructure:"QUALITY_LOW" validate:"gt=0,lte=1,ltefield=MediumScale"`
	MediumScale float64 `mapstructure:"QUALITY_MEDIUM" validate:"gt=0,lte=1,ltefield=HighScale"`
	HighScale   float64 `mapstructure:"QUALITY_HIGH" validate:"gt=0,lte=1"`

	// Complexity above which interactive renders drop to the low level.
	ComplexityThreshold float64 `mapstructure:"COMPLEXITY_THRESHOLD" validate:"gte=0,lte=1"`

	MaxTargetSize  int    `mapstructure:"MAX_TARGET_SIZE" validate:"gte=1,lte=65536"`
	Workers        int    `mapstructure:"WORKERS" validate:"gte=0"`
	HistoryLimit   int    `mapstructure:"HISTORY_LIMIT" validate:"gte=0"`
	PreloadShaders bool   `mapstructure:"PRELOAD_SHADERS"`
	LogLevel       string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// Defaults.
const (
	DefaultLowScale            = 0.35
	DefaultMediumScale         = 0.6
	DefaultHighScale           = 1.0
	DefaultComplexityThreshold = 0.7
	DefaultMaxTargetSize       = 16384
	DefaultLogLevel            = "warn"
)

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	typ := reflect.TypeOf(c)
	for i := 0; i < typ.NumField(); i++ {
		if tag := typ.Field(i).Tag.Get("mapstructure"); tag != "" {
			_ = viper.BindEnv(tag)
		}
	}
}

func setDefaults() {
	viper.SetDefault("QUALITY_LOW", DefaultLowScale)
	viper.SetDefault("QUALITY_MEDIUM", DefaultMediumScale)
	viper.SetDefault("QUALITY_HIGH", DefaultHighScale)
	viper.SetDefault("COMPLEXITY_THRESHOLD", DefaultComplexityThreshold)
	viper.SetDefault("MAX_TARGET_SIZE", DefaultMaxTargetSize)
	viper.SetDefault("WORKERS", 0)
	viper.SetDefault("HISTORY_LIMIT", 0)
	viper.SetDefault("PRELOAD_SHADERS", false)
	viper.SetDefault("LOG_LEVEL", DefaultLogLevel)
}

// Load reads the configuration from FX_* environment variables and, when
// file is not empty, from that config file. Environment variables win over
// the file. Flags bound to the global viper instance win over both.
func Load(file string) (*Config, error) {
	viper.SetEnvPrefix(EnvPrefix)
	bindEnv(Config{})
	viper.AutomaticEnv()
	setDefaults()

	if file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return l
}
