package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Transport Transport `yaml:"transport"`
	Protocol  Protocol  `yaml:"protocol"`
	Record    Record    `yaml:"record"`
	Index     Index     `yaml:"index"`
	Strategy  string    `yaml:"strategy"`
	Rules     Rules     `yaml:"rules"`
}

type Transport struct {
	// WSURL selects the websocket transport when set; stdio otherwise.
	WSURL        string        `yaml:"ws_url"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type Protocol struct {
	ValidateState    bool `yaml:"validate_state"`
	ValidateCommands bool `yaml:"validate_commands"`
}

type Record struct {
	Dir string `yaml:"dir"`
}

type Index struct {
	Path string `yaml:"path"`
}

// Rules mirrors the server's game constants. The client only reads them to
// plan; the server stays authoritative.
type Rules struct {
	Radius               float64 `yaml:"radius"`
	ShipMaxHealth        int     `yaml:"ship_max_health"`
	ShipRockPrice        int     `yaml:"ship_rock_price"`
	ShipMovementFree     float64 `yaml:"ship_movement_free"`
	ShipMovementMaxSize  float64 `yaml:"ship_movement_max_size"`
	ShipTransferDistance float64 `yaml:"ship_transfer_distance"`
	ShipShootDistance    float64 `yaml:"ship_shoot_distance"`
	ShipRepairDistance   float64 `yaml:"ship_repair_distance"`
	WormholeRadius       float64 `yaml:"wormhole_radius"`
}

func Defaults() Config {
	return Config{
		Transport: Transport{
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Strategy: "sample",
		Rules: Rules{
			Radius:               15000,
			ShipMaxHealth:        100,
			ShipRockPrice:        100,
			ShipMovementFree:     1,
			ShipMovementMaxSize:  10000,
			ShipTransferDistance: 20,
			ShipShootDistance:    100,
			ShipRepairDistance:   50,
			WormholeRadius:       5,
		},
	}
}

// Load reads a YAML config on top of Defaults. Keys missing from the file
// keep their default values.
func Load(path string) (Config, error) {
	c := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Transport.ReadTimeout < 0 || c.Transport.WriteTimeout < 0 {
		return fmt.Errorf("transport timeouts must not be negative")
	}
	switch c.Strategy {
	case "idle", "sample":
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	if c.Rules.ShipRockPrice <= 0 {
		return fmt.Errorf("rules.ship_rock_price must be positive")
	}
	return nil
}
