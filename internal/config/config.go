package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	jlconfig "github.com/JeremyLoy/config"
)

type Config struct {
	Context   ContextConfig   `toml:"context"`
	Loop      LoopConfig      `toml:"loop"`
	Logging   LoggingConfig   `toml:"logging"`
	Prefabs   PrefabConfig    `toml:"prefabs"`
	Scripting ScriptingConfig `toml:"scripting"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

type ContextConfig struct {
	Name               string `toml:"name"`
	StartCreationIndex uint32 `toml:"start_creation_index"`
}

type LoopConfig struct {
	TickRate      time.Duration `toml:"tick_rate"`
	FixedTickRate time.Duration `toml:"fixed_tick_rate"` // 0 disables fixed execute
	MaxFrames     int           `toml:"max_frames"`      // 0 runs until interrupted
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type PrefabConfig struct {
	Dir   string   `toml:"dir"`
	Watch bool     `toml:"watch"`
	Spawn []string `toml:"spawn"` // prefab names spawned on initialize
}

type ScriptingConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type MetricsConfig struct {
	StatsdAddress string   `toml:"statsd_address"` // empty disables statsd
	Namespace     string   `toml:"namespace"`
	Tags          []string `toml:"tags"`
	PhaseTiming   bool     `toml:"phase_timing"`
}

// envOverrides lists the settings that can be overridden from the
// environment without editing the config file.
type envOverrides struct {
	ContextName   string `config:"ECS_CONTEXT_NAME"`
	MaxFrames     int    `config:"ECS_MAX_FRAMES"`
	LogLevel      string `config:"ECS_LOG_LEVEL"`
	LogFormat     string `config:"ECS_LOG_FORMAT"`
	PrefabDir     string `config:"ECS_PREFAB_DIR"`
	PrefabWatch   bool   `config:"ECS_PREFAB_WATCH"`
	ScriptDir     string `config:"ECS_SCRIPT_DIR"`
	StatsdAddress string `config:"ECS_STATSD_ADDRESS"`
}

// Load reads the TOML file at path over the defaults, then applies ECS_*
// environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("apply environment to %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration with environment overrides.
func Default() (*Config, error) {
	cfg := defaults()
	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("apply environment: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	o := envOverrides{
		ContextName:   cfg.Context.Name,
		MaxFrames:     cfg.Loop.MaxFrames,
		LogLevel:      cfg.Logging.Level,
		LogFormat:     cfg.Logging.Format,
		PrefabDir:     cfg.Prefabs.Dir,
		PrefabWatch:   cfg.Prefabs.Watch,
		ScriptDir:     cfg.Scripting.Dir,
		StatsdAddress: cfg.Metrics.StatsdAddress,
	}
	if err := jlconfig.FromEnv().To(&o); err != nil {
		return err
	}
	cfg.Context.Name = o.ContextName
	cfg.Loop.MaxFrames = o.MaxFrames
	cfg.Logging.Level = o.LogLevel
	cfg.Logging.Format = o.LogFormat
	cfg.Prefabs.Dir = o.PrefabDir
	cfg.Prefabs.Watch = o.PrefabWatch
	cfg.Scripting.Dir = o.ScriptDir
	cfg.Metrics.StatsdAddress = o.StatsdAddress
	return nil
}

func (c *Config) validate() error {
	if c.Loop.TickRate <= 0 {
		return fmt.Errorf("loop.tick_rate must be positive, got %s", c.Loop.TickRate)
	}
	if c.Loop.FixedTickRate < 0 {
		return fmt.Errorf("loop.fixed_tick_rate must not be negative, got %s", c.Loop.FixedTickRate)
	}
	if c.Loop.MaxFrames < 0 {
		return fmt.Errorf("loop.max_frames must not be negative, got %d", c.Loop.MaxFrames)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Context: ContextConfig{
			Name:               "game",
			StartCreationIndex: 1,
		},
		Loop: LoopConfig{
			TickRate:      50 * time.Millisecond,
			FixedTickRate: 200 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Prefabs: PrefabConfig{
			Dir: "prefabs",
		},
		Scripting: ScriptingConfig{
			Enabled: true,
			Dir:     "scripts",
		},
		Metrics: MetricsConfig{
			Namespace: "ecsrt",
		},
	}
}
