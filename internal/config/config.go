package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Entrants   EntrantsConfig   `yaml:"entrants"`
	Tournament TournamentConfig `yaml:"tournament"`
	Guess      GuessConfig      `yaml:"guess"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type EntrantsConfig struct {
	BaseURL        string `yaml:"base_url"`
	PageSize       int    `yaml:"page_size"`
	MaxPages       int    `yaml:"max_pages"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type TournamentConfig struct {
	MaxHealth      int `yaml:"max_health"`
	StageDelayMS   int `yaml:"stage_delay_ms"`
	ExchangeTickMS int `yaml:"exchange_tick_ms"`
	RoundPauseMS   int `yaml:"round_pause_ms"`
}

type GuessConfig struct {
	TurnSeconds       int               `yaml:"turn_seconds"`
	MaxPlayerTurns    int               `yaml:"max_player_turns"`
	EntryPrice        float64           `yaml:"entry_price"`
	SessionTTLMinutes int               `yaml:"session_ttl_minutes"`
	Multipliers       map[int][]float64 `yaml:"multipliers"`
}

// Default returns the built-in configuration used when no config file is
// provided. The multiplier tables are non-increasing by player turn.
func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "arena.db?_journal_mode=WAL"},
		Entrants: EntrantsConfig{
			PageSize:       50,
			MaxPages:       20,
			TimeoutSeconds: 10,
		},
		Tournament: TournamentConfig{
			MaxHealth:      32,
			StageDelayMS:   2000,
			ExchangeTickMS: 1500,
			RoundPauseMS:   5000,
		},
		Guess: GuessConfig{
			TurnSeconds:       15,
			MaxPlayerTurns:    10,
			EntryPrice:        100,
			SessionTTLMinutes: 30,
			Multipliers: map[int][]float64{
				64:  {5.0, 3.0, 2.0, 1.5, 1.2, 1.0, 0.8, 0.5},
				128: {8.0, 5.0, 3.0, 2.0, 1.5, 1.2, 1.0, 0.8, 0.5},
				256: {10.0, 8.0, 5.0, 3.0, 2.0, 1.5, 1.2, 1.0, 0.8, 0.5},
			},
		},
	}
}

// Load reads a YAML config file over the defaults. A missing path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Tournament.MaxHealth < 1 {
		return fmt.Errorf("tournament.max_health must be positive, got %d", c.Tournament.MaxHealth)
	}
	if c.Guess.TurnSeconds < 1 {
		return fmt.Errorf("guess.turn_seconds must be positive, got %d", c.Guess.TurnSeconds)
	}
	for tier, table := range c.Guess.Multipliers {
		if len(table) == 0 {
			return fmt.Errorf("guess.multipliers[%d] is empty", tier)
		}
		for i := 1; i < len(table); i++ {
			if table[i] > table[i-1] {
				return fmt.Errorf("guess.multipliers[%d] must be non-increasing", tier)
			}
		}
	}
	return nil
}
