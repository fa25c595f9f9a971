package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "CULTIVATION_CONFIG"

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Sim       SimConfig       `toml:"sim"`
	Combat    CombatConfig    `toml:"combat"`
	Encounter EncounterConfig `toml:"encounter"`
	World     WorldConfig     `toml:"world"`
	Data      DataConfig      `toml:"data"`
	Scripts   ScriptsConfig   `toml:"scripts"`
	Database  DatabaseConfig  `toml:"database"`
	Logging   LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	StartTime int64  // set at boot, not from config
}

type SimConfig struct {
	DayLength float64       `toml:"day_length"` // real seconds per game day
	Speed     float64       `toml:"speed"`
	TickRate  time.Duration `toml:"tick_rate"`
	Seed      int64         `toml:"seed"` // 0: seeded from the clock
}

type CombatConfig struct {
	MaxTurns     int    `toml:"max_turns"`
	SpecialCost  int    `toml:"special_cost"`
	HealCap      int    `toml:"heal_cap"`
	Auto         bool   `toml:"auto"`
	Intervention bool   `toml:"intervention"`
	Strategy     string `toml:"strategy"`
}

type EncounterConfig struct {
	DefaultProbability float64         `toml:"default_probability"`
	Triggers           []TriggerConfig `toml:"triggers"`
}

// TriggerConfig is one [[encounter.triggers]] entry. Kind is "location",
// "attribute" or "time"; only the fields of that kind are read.
type TriggerConfig struct {
	Kind       string `toml:"kind"`
	Location   string `toml:"location"`
	Attribute  string `toml:"attribute"`
	Threshold  int    `toml:"threshold"`
	Comparator string `toml:"comparator"`
	Period     int    `toml:"period"`
}

type WorldConfig struct {
	PlayerTemplate string `toml:"player_template"`
	PlayerName     string `toml:"player_name"`
	NPCMin         int    `toml:"npc_min"`
	NPCMax         int    `toml:"npc_max"`
}

type DataConfig struct {
	Dir string `toml:"dir"`
}

type ScriptsConfig struct {
	Dir string `toml:"dir"` // empty: built-in formulas only
}

// DatabaseConfig enables the chronicle when DSN is set.
type DatabaseConfig struct {
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Path returns the config file to load: $CULTIVATION_CONFIG or fallback.
func Path(fallback string) string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return fallback
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "问道",
		},
		Sim: SimConfig{
			DayLength: 60,
			Speed:     1,
			TickRate:  200 * time.Millisecond,
		},
		Combat: CombatConfig{
			MaxTurns:     10,
			SpecialCost:  10,
			HealCap:      20,
			Auto:         true,
			Intervention: true,
			Strategy:     "balanced",
		},
		Encounter: EncounterConfig{
			DefaultProbability: 0.1,
			Triggers: []TriggerConfig{
				{Kind: "location", Location: "mountain"},
				{Kind: "location", Location: "wilderness"},
				{Kind: "attribute", Attribute: "health", Threshold: 30, Comparator: "<="},
				{Kind: "time", Period: 7},
			},
		},
		World: WorldConfig{
			PlayerTemplate: "player_template",
			NPCMin:         3,
			NPCMax:         5,
		},
		Data: DataConfig{
			Dir: "data/yaml",
		},
		Scripts: ScriptsConfig{
			Dir: "scripts",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

var strategies = map[string]bool{"aggressive": true, "defensive": true, "balanced": true, "technical": true}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Sim.DayLength <= 0 {
		errs = append(errs, fmt.Errorf("sim.day_length must be positive, got %v", c.Sim.DayLength))
	}
	if c.Sim.Speed < 0.1 || c.Sim.Speed > 10 {
		errs = append(errs, fmt.Errorf("sim.speed must be within [0.1, 10], got %v", c.Sim.Speed))
	}
	if c.Sim.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("sim.tick_rate must be positive, got %v", c.Sim.TickRate))
	}
	if c.Combat.MaxTurns <= 0 {
		errs = append(errs, fmt.Errorf("combat.max_turns must be positive, got %d", c.Combat.MaxTurns))
	}
	if c.Combat.SpecialCost < 0 || c.Combat.HealCap < 0 {
		errs = append(errs, errors.New("combat.special_cost and combat.heal_cap cannot be negative"))
	}
	if !strategies[c.Combat.Strategy] {
		errs = append(errs, fmt.Errorf("combat.strategy: unknown %q", c.Combat.Strategy))
	}
	if p := c.Encounter.DefaultProbability; p < 0 || p > 1 {
		errs = append(errs, fmt.Errorf("encounter.default_probability must be within [0, 1], got %v", p))
	}
	if c.World.NPCMin < 0 || c.World.NPCMax < c.World.NPCMin {
		errs = append(errs, fmt.Errorf("world.npc_min/npc_max: bad range [%d, %d]", c.World.NPCMin, c.World.NPCMax))
	}
	if c.World.PlayerTemplate == "" {
		errs = append(errs, errors.New("world.player_template is required"))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unknown %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}
