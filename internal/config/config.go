// Package config loads the command catalog and world settings from YAML, with
// CLANKER_* environment overrides.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/appengine-ltd/clanker-quest/internal/grid"
	"github.com/appengine-ltd/clanker-quest/internal/parser"
)

const EnvPrefix = "CLANKER_"

//go:embed default.yaml
var defaultYAML []byte

type Config struct {
	Threshold float64         `yaml:"threshold" env:"THRESHOLD"`
	Speeds    SpeedConfig     `yaml:"speeds"`
	Movement  MovementConfig  `yaml:"movement"`
	Grid      GridConfig      `yaml:"grid"`
	Actor     ActorConfig     `yaml:"actor"`
	LogLevel  string          `yaml:"log_level" env:"LOG_LEVEL"`
	Commands  []CommandConfig `yaml:"commands"`
}

type SpeedConfig struct {
	Normal float64 `yaml:"normal"`
	Fast   float64 `yaml:"fast"`
	Slow   float64 `yaml:"slow"`
}

type MovementConfig struct {
	BaseStepMS      int     `yaml:"base_step_ms" env:"BASE_STEP_MS"`
	BlockOnEmpty    bool    `yaml:"block_on_empty" env:"BLOCK_ON_EMPTY"`
	WobbleAmplitude float64 `yaml:"wobble_amplitude"`
}

type GridConfig struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Layout   string  `yaml:"layout"`
	CellSize float64 `yaml:"cell_size"`
	Blocked  []Cell  `yaml:"blocked,omitempty"`
}

type ActorConfig struct {
	Name  string `yaml:"name"`
	Start Cell   `yaml:"start"`
}

type CommandConfig struct {
	Name     string   `yaml:"name"`
	Handler  string   `yaml:"handler"`
	Keywords []string `yaml:"keywords"`
}

// Cell is written as a two-element flow sequence: [x, y].
type Cell grid.Cell

func (c *Cell) UnmarshalYAML(value *yaml.Node) error {
	var xy []int
	if err := value.Decode(&xy); err != nil {
		return err
	}
	if len(xy) != 2 {
		return fmt.Errorf("line %d: cell needs exactly two coordinates, got %d", value.Line, len(xy))
	}
	*c = Cell{X: xy[0], Y: xy[1]}
	return nil
}

func (c Cell) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range []int{c.X, c.Y} {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(v)})
	}
	return node, nil
}

func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		panic(fmt.Sprintf("embedded default config: %v", err))
	}
	return cfg
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func ParseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	if err := parser.ValidateThreshold(c.Threshold); err != nil {
		return err
	}
	if c.Speeds.Normal <= 0 || c.Speeds.Fast <= 0 || c.Speeds.Slow <= 0 {
		return fmt.Errorf("speeds must be positive, got %+v", c.Speeds)
	}
	if c.Movement.BaseStepMS <= 0 {
		return fmt.Errorf("base_step_ms must be positive, got %d", c.Movement.BaseStepMS)
	}
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", c.Grid.Width, c.Grid.Height)
	}
	if _, err := grid.NewLayout(grid.LayoutKind(c.Grid.Layout), c.Grid.CellSize); err != nil {
		return err
	}
	start := grid.Cell(c.Actor.Start)
	if start.X < 0 || start.Y < 0 || start.X >= c.Grid.Width || start.Y >= c.Grid.Height {
		return fmt.Errorf("actor start %s is outside the %dx%d grid", start, c.Grid.Width, c.Grid.Height)
	}
	if len(c.Commands) == 0 {
		return errors.New("no commands configured")
	}
	if _, err := c.Catalog(); err != nil {
		return err
	}
	return nil
}

// Catalog builds the command catalog in file order.
func (c Config) Catalog() (*parser.Catalog, error) {
	defs := make([]parser.CommandDef, 0, len(c.Commands))
	for _, cmd := range c.Commands {
		defs = append(defs, parser.CommandDef{
			Name:     cmd.Name,
			Keywords: cmd.Keywords,
			Handler:  parser.HandlerKind(strings.TrimSpace(strings.ToLower(cmd.Handler))),
		})
	}
	return parser.NewCatalog(defs)
}

func (c Config) BlockedCells() []grid.Cell {
	out := make([]grid.Cell, 0, len(c.Grid.Blocked))
	for _, b := range c.Grid.Blocked {
		out = append(out, grid.Cell(b))
	}
	return out
}

// Save writes cfg to path atomically.
func Save(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "config-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	cleanup = false
	return nil
}
