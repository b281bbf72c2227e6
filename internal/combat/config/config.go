// Package config loads combat tuning parameters via viper, the same way
// this codebase loads its other runtime configuration: named fields,
// environment-variable overrides, and a defaults-first Load.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/tacticsforge/combatcore/internal/combat"
)

// Config holds the tunables of one combat simulation.
type Config struct {
	// Dt is the fixed simulated-time step per tick, in seconds.
	Dt float64 `mapstructure:"dt"`

	// TimeoutSeconds is the simulated-time ceiling after which an
	// unresolved combat ends in a timeout.
	TimeoutSeconds float64 `mapstructure:"timeout_seconds"`

	// DamageDelaySeconds is the basic-attack windup before damage is
	// applied.
	DamageDelaySeconds float64 `mapstructure:"damage_delay_seconds"`

	// SnapshotEveryTick, when true, emits a state_snapshot every tick
	//; when false, only at combat end.
	SnapshotEveryTick bool `mapstructure:"snapshot_every_tick"`

	// AnimationDuration is the duration reported on animation_start
	// events.
	AnimationDuration float64 `mapstructure:"animation_duration"`
}

// Default returns the canonical tuning defaults.
func Default() Config {
	return Config{
		Dt:                 0.1,
		TimeoutSeconds:     60,
		DamageDelaySeconds: 0.2,
		SnapshotEveryTick:  true,
		AnimationDuration:  0.2,
	}
}

// Validate reports whether c's fields are usable by the simulator.
func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %v", combat.ErrInvalidConfig, c.Dt)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: timeout_seconds must be positive, got %v", combat.ErrInvalidConfig, c.TimeoutSeconds)
	}
	if c.DamageDelaySeconds < 0 {
		return fmt.Errorf("%w: damage_delay_seconds must be >= 0, got %v", combat.ErrInvalidConfig, c.DamageDelaySeconds)
	}
	if c.AnimationDuration < 0 {
		return fmt.Errorf("%w: animation_duration must be >= 0, got %v", combat.ErrInvalidConfig, c.AnimationDuration)
	}
	return nil
}

// Load reads combat tuning from configPath (if non-empty) and the
// COMBAT_* environment namespace, falling back to Default for anything
// unset, then validates the result.
func Load(configPath string) (Config, error) {
	v := viper.New()
	cfg := Default()
	v.SetDefault("dt", cfg.Dt)
	v.SetDefault("timeout_seconds", cfg.TimeoutSeconds)
	v.SetDefault("damage_delay_seconds", cfg.DamageDelaySeconds)
	v.SetDefault("snapshot_every_tick", cfg.SnapshotEveryTick)
	v.SetDefault("animation_duration", cfg.AnimationDuration)

	v.SetEnvPrefix("COMBAT")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("combat config: reading %s: %w", configPath, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("combat config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
