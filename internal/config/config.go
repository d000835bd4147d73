// Package config provides Viper-based configuration loading for the game runtime.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// LevelConfig locates the level descriptions and the root room.
type LevelConfig struct {
	// AssetsDir is the directory exit file names are resolved against.
	AssetsDir string `mapstructure:"assets_dir"`
	// Start is the file name of the root room, relative to AssetsDir.
	Start string `mapstructure:"start"`
	// RootX is the world X offset of the root room.
	RootX float32 `mapstructure:"root_x"`
	// RootZ is the world Z offset of the root room.
	RootZ float32 `mapstructure:"root_z"`
}

// StartPath returns the root room path inside the level file system.
//
// Postcondition: Returns AssetsDir and Start joined with a forward slash.
func (l LevelConfig) StartPath() string {
	return strings.TrimSuffix(l.AssetsDir, "/") + "/" + l.Start
}

// PhysicsConfig holds rigid-body simulation settings.
type PhysicsConfig struct {
	// StepHz is the fixed simulation rate in steps per second.
	StepHz float32 `mapstructure:"step_hz"`
	// Gravity is the vertical acceleration applied to dynamic bodies.
	Gravity float32 `mapstructure:"gravity"`
}

// Step returns the fixed step length in seconds.
//
// Precondition: StepHz > 0.
func (p PhysicsConfig) Step() float32 {
	return 1 / p.StepHz
}

// VisionConfig holds camera lens and visibility gate settings.
type VisionConfig struct {
	// Trigger is "level" (hooks every tick) or "edge" (hooks on change only).
	Trigger string `mapstructure:"trigger"`
	// FovDeg is the vertical field of view in degrees.
	FovDeg float32 `mapstructure:"fov_deg"`
	// Near is the near clip plane distance.
	Near float32 `mapstructure:"near"`
	// Far is the far clip plane distance.
	Far float32 `mapstructure:"far"`
}

// PlayerConfig holds player and gameplay tuning.
type PlayerConfig struct {
	// KillPlane is the height below which the player respawns.
	KillPlane float32 `mapstructure:"kill_plane"`
	// DevKillPlane replaces KillPlane in dev mode.
	DevKillPlane float32 `mapstructure:"dev_kill_plane"`
	// SpawnHeight is the Y coordinate the player is placed at on respawn.
	SpawnHeight float32 `mapstructure:"spawn_height"`
	// WinRate is how much the win meter rises per tick a win crest is seen.
	WinRate float32 `mapstructure:"win_rate"`
	// MoverSpeed is the distance a moving platform travels per tick.
	MoverSpeed float32 `mapstructure:"mover_speed"`
	// DevMode enables developer-only actions and the deeper kill plane.
	DevMode bool `mapstructure:"dev_mode"`
}

// ScriptingConfig holds Lua crest hook settings.
type ScriptingConfig struct {
	// Dir is the directory of *.lua crest scripts. Empty disables scripting.
	Dir string `mapstructure:"dir"`
	// InstructionLimit caps opcodes per hook call. 0 uses the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// AudioConfig holds cue synthesis settings.
type AudioConfig struct {
	// SampleRate is the output sample rate in Hz.
	SampleRate int `mapstructure:"sample_rate"`
	// WinCue is the length of the win chime.
	WinCue time.Duration `mapstructure:"win_cue"`
	// Volume is the linear gain applied to cues.
	Volume float64 `mapstructure:"volume"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Level     LevelConfig     `mapstructure:"level"`
	Physics   PhysicsConfig   `mapstructure:"physics"`
	Vision    VisionConfig    `mapstructure:"vision"`
	Player    PlayerConfig    `mapstructure:"player"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Audio     AudioConfig     `mapstructure:"audio"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	for _, err := range []error{
		validateLogging(c.Logging),
		validateLevel(c.Level),
		validatePhysics(c.Physics),
		validateVision(c.Vision),
		validatePlayer(c.Player),
		validateScripting(c.Scripting),
		validateAudio(c.Audio),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateLevel(l LevelConfig) error {
	var errs []string
	if l.AssetsDir == "" {
		errs = append(errs, "level.assets_dir must not be empty")
	}
	if l.Start == "" {
		errs = append(errs, "level.start must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePhysics(p PhysicsConfig) error {
	if p.StepHz <= 0 {
		return fmt.Errorf("physics.step_hz must be > 0, got %g", p.StepHz)
	}
	return nil
}

func validateVision(v VisionConfig) error {
	var errs []string
	validTriggers := map[string]bool{"level": true, "edge": true}
	if !validTriggers[v.Trigger] {
		errs = append(errs, fmt.Sprintf("vision.trigger must be one of [level, edge], got %q", v.Trigger))
	}
	if v.FovDeg <= 0 || v.FovDeg >= 180 {
		errs = append(errs, fmt.Sprintf("vision.fov_deg must be in (0, 180), got %g", v.FovDeg))
	}
	if v.Near <= 0 {
		errs = append(errs, fmt.Sprintf("vision.near must be > 0, got %g", v.Near))
	}
	if v.Far <= v.Near {
		errs = append(errs, "vision.far must exceed vision.near")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePlayer(p PlayerConfig) error {
	var errs []string
	if p.WinRate <= 0 || p.WinRate > 1 {
		errs = append(errs, fmt.Sprintf("player.win_rate must be in (0, 1], got %g", p.WinRate))
	}
	if p.MoverSpeed <= 0 {
		errs = append(errs, fmt.Sprintf("player.mover_speed must be > 0, got %g", p.MoverSpeed))
	}
	if p.DevKillPlane > p.KillPlane {
		errs = append(errs, "player.dev_kill_plane must not be above player.kill_plane")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return fmt.Errorf("scripting.instruction_limit must be >= 0, got %d", s.InstructionLimit)
	}
	return nil
}

func validateAudio(a AudioConfig) error {
	var errs []string
	if a.SampleRate <= 0 {
		errs = append(errs, fmt.Sprintf("audio.sample_rate must be > 0, got %d", a.SampleRate))
	}
	if a.WinCue <= 0 {
		errs = append(errs, "audio.win_cue must be positive")
	}
	if a.Volume < 0 {
		errs = append(errs, fmt.Sprintf("audio.volume must be >= 0, got %g", a.Volume))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with PERIPHERY_ prefix
	v.SetEnvPrefix("PERIPHERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the default values.
//
// Postcondition: LoadFromViper(Defaults()) yields a valid Config.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("level.assets_dir", "levels")
	v.SetDefault("level.start", "level1.xml")
	v.SetDefault("level.root_x", 0)
	v.SetDefault("level.root_z", 0)

	v.SetDefault("physics.step_hz", 60)
	v.SetDefault("physics.gravity", -9.81)

	v.SetDefault("vision.trigger", "level")
	v.SetDefault("vision.fov_deg", 45)
	v.SetDefault("vision.near", 1)
	v.SetDefault("vision.far", 1000)

	v.SetDefault("player.kill_plane", -5)
	v.SetDefault("player.dev_kill_plane", -100)
	v.SetDefault("player.spawn_height", 2)
	v.SetDefault("player.win_rate", 0.005)
	v.SetDefault("player.mover_speed", 0.05)
	v.SetDefault("player.dev_mode", false)

	v.SetDefault("scripting.dir", "")
	v.SetDefault("scripting.instruction_limit", 0)

	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("audio.win_cue", "400ms")
	v.SetDefault("audio.volume", 0.8)
}
