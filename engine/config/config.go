// Package config loads runtime settings from files, the environment and flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-creature/common"
	"github.com/Carmen-Shannon/oxy-creature/engine"
	"github.com/Carmen-Shannon/oxy-creature/engine/asset_cache"
	"github.com/Carmen-Shannon/oxy-creature/engine/creature"
	"github.com/Carmen-Shannon/oxy-creature/engine/director"
	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. OXY_TICK_RATE.
const EnvPrefix = "OXY"

// Per-creature geometry defaults, used when the matching key is unset.
const (
	// DefaultOverlapDelta is the depth step between consecutive regions.
	DefaultOverlapDelta float32 = 0.01
	// DefaultBoneLengthFactor scales a bone's length onto its transform's x scale.
	DefaultBoneLengthFactor float32 = 0.02
	// DefaultBoneSize is the y and z scale of a bone transform.
	DefaultBoneSize float32 = 0.01
)

// Process-wide defaults.
const (
	// DefaultTickRate is the number of engine ticks per second.
	DefaultTickRate = 60.0
	// DefaultLogLevel is the logrus level name used when none is configured.
	DefaultLogLevel = "info"
)

// Config holds the settings shared by the engine, its directors and their creatures.
type Config struct {
	Asset            string   `mapstructure:"asset"`
	SearchDirs       []string `mapstructure:"search_dirs"`
	StartAnimation   string   `mapstructure:"start_animation"`
	Looping          bool     `mapstructure:"looping"`
	Playing          bool     `mapstructure:"playing"`
	Smooth           bool     `mapstructure:"smooth_transitions"`
	TimeScale        float32  `mapstructure:"time_scale"`
	OverlapDelta     float32  `mapstructure:"overlap_delta"`
	BoneLengthFactor float32  `mapstructure:"bone_length_factor"`
	BoneSize         float32  `mapstructure:"bone_size"`
	EditorMode       bool     `mapstructure:"editor_mode"`

	TickRate    float64 `mapstructure:"tick_rate"`
	RenderLimit float64 `mapstructure:"render_limit"`
	MaxTicks    int64   `mapstructure:"max_ticks"`
	TickWorkers int     `mapstructure:"tick_workers"`
	Instances   int     `mapstructure:"instances"`
	Profiling   bool    `mapstructure:"profiling"`
	LogLevel    string  `mapstructure:"log_level"`
	LogColors   bool    `mapstructure:"log_colors"`
}

// SetDefaults registers every default on v.
//
// Parameters:
//   - v: the viper instance
func SetDefaults(v *viper.Viper) {
	v.SetDefault("looping", true)
	v.SetDefault("playing", true)
	v.SetDefault("smooth_transitions", false)
	v.SetDefault("time_scale", 0)
	v.SetDefault("overlap_delta", DefaultOverlapDelta)
	v.SetDefault("bone_length_factor", DefaultBoneLengthFactor)
	v.SetDefault("bone_size", DefaultBoneSize)
	v.SetDefault("editor_mode", false)
	v.SetDefault("tick_rate", DefaultTickRate)
	v.SetDefault("render_limit", 0)
	v.SetDefault("max_ticks", 0)
	v.SetDefault("tick_workers", 0)
	v.SetDefault("instances", 1)
	v.SetDefault("profiling", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_colors", true)
	v.SetDefault("search_dirs", []string{})
}

// NewViper returns a viper instance with defaults and OXY_ environment overrides set up.
//
// Returns:
//   - *viper.Viper: the viper instance
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path, if any, into v and decodes the result. An empty path
// searches for oxy.yaml/json/toml in the working directory; a missing file there is not an
// error.
//
// Parameters:
//   - v: the viper instance, NewViper() when nil
//   - path: an explicit config file, or ""
//
// Returns:
//   - Config: the decoded config
//   - error: error if an explicit file cannot be read or any file fails to decode
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = NewViper()
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("oxy")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: failed to read config: %w", err)
		}
	}
	return Decode(v)
}

// Decode unmarshals the current settings of v.
//
// Parameters:
//   - v: the viper instance
//
// Returns:
//   - Config: the decoded config
//   - error: error if a value has the wrong type
func Decode(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: failed to decode: %w", err)
	}
	return c, nil
}

// Logger builds the logger described by the config.
func (c Config) Logger() logging.Logger {
	return logging.New(common.Coalesce(c.LogLevel, DefaultLogLevel), nil, c.LogColors)
}

// CacheOptions maps the config onto asset cache options.
//
// Parameters:
//   - l: the logger handed to the cache
//
// Returns:
//   - []asset_cache.AssetCacheBuilderOption: the options
func (c Config) CacheOptions(l logging.Logger) []asset_cache.AssetCacheBuilderOption {
	opts := []asset_cache.AssetCacheBuilderOption{asset_cache.WithLogger(l)}
	if len(c.SearchDirs) > 0 {
		opts = append(opts, asset_cache.WithSearchDirs(c.SearchDirs...))
	}
	return opts
}

// CreatureOptions maps the config onto creature options. Zero factors fall back to defaults.
//
// Returns:
//   - []creature.CreatureBuilderOption: the options
func (c Config) CreatureOptions() []creature.CreatureBuilderOption {
	opts := []creature.CreatureBuilderOption{
		creature.WithLooping(c.Looping),
		creature.WithPlaying(c.Playing),
		creature.WithSmoothTransitions(c.Smooth),
		creature.WithEditorMode(c.EditorMode),
		creature.WithOverlapDelta(common.Coalesce(c.OverlapDelta, DefaultOverlapDelta)),
		creature.WithBoneFactors(
			common.Coalesce(c.BoneLengthFactor, DefaultBoneLengthFactor),
			common.Coalesce(c.BoneSize, DefaultBoneSize),
		),
	}
	if c.Asset != "" {
		opts = append(opts, creature.WithAsset(c.Asset))
	}
	if c.StartAnimation != "" {
		opts = append(opts, creature.WithStartAnimation(c.StartAnimation))
	}
	if c.TimeScale > 0 {
		opts = append(opts, creature.WithTimeScale(c.TimeScale))
	}
	return opts
}

// DirectorOptions maps the config onto director options.
//
// Returns:
//   - []director.DirectorBuilderOption: the options
func (c Config) DirectorOptions() []director.DirectorBuilderOption {
	var opts []director.DirectorBuilderOption
	if c.TickWorkers > 0 {
		opts = append(opts, director.WithTickWorkers(c.TickWorkers))
	}
	return opts
}

// EngineOptions maps the config onto engine options.
//
// Returns:
//   - []engine.EngineBuilderOption: the options
func (c Config) EngineOptions() []engine.EngineBuilderOption {
	opts := []engine.EngineBuilderOption{
		engine.WithTickRate(common.Coalesce(c.TickRate, DefaultTickRate)),
		engine.WithProfiling(c.Profiling),
	}
	if c.RenderLimit > 0 {
		opts = append(opts, engine.WithRenderFrameLimit(c.RenderLimit))
	}
	if c.MaxTicks > 0 {
		opts = append(opts, engine.WithMaxTicks(c.MaxTicks))
	}
	return opts
}
