package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is a gameplay definitions file: the loop settings, the stacking
// strategy, named stat and effect definitions and the hosts built from them.
type Config struct {
	LogLevel    string               `yaml:"log_level"`
	Loop        Loop                 `yaml:"loop"`
	Strategy    Strategy             `yaml:"strategy"`
	Stats       []StatDef            `yaml:"stats"`
	Effects     map[string]EffectDef `yaml:"effects"`
	Resistances map[string]float64   `yaml:"resistances"`
	Hosts       []HostDef            `yaml:"hosts"`

	// directory the file was loaded from; script paths are relative to it
	dir string
}

type Loop struct {
	FrameStep     float64 `yaml:"frame_step"`
	FixedStep     float64 `yaml:"fixed_step"`
	MaxFixedSteps int     `yaml:"max_fixed_steps"`
	ParallelHosts bool    `yaml:"parallel_hosts"`
	Workers       int     `yaml:"workers"`
	Frames        int     `yaml:"frames"`
}

// Strategy selects the stacking strategy: "tiered", "cached" or "script".
type Strategy struct {
	Kind   string `yaml:"kind"`
	Script string `yaml:"script,omitempty"`
}

// StatDef describes one stat. Tags are tag names or numbers.
type StatDef struct {
	Name  string   `yaml:"name"`
	Value float64  `yaml:"value"`
	Tier  string   `yaml:"tier"`
	Pwn   string   `yaml:"pwn,omitempty"`
	Tags  []string `yaml:"tags"`
}

// EffectDef describes a status effect. Type picks the effect kind in the
// catalog; Params carries its kind-specific numbers.
type EffectDef struct {
	Type     string             `yaml:"type"`
	Policy   []string           `yaml:"policy"`
	Duration float64            `yaml:"duration"`
	Params   map[string]float64 `yaml:"params,omitempty"`
}

// HostDef describes a host and the stock components it gets.
type HostDef struct {
	Name        string                   `yaml:"name"`
	Health      float64                  `yaml:"health"`
	Speed       float64                  `yaml:"speed"`
	Cooldown    float64                  `yaml:"cooldown"`
	Stats       []string                 `yaml:"stats"`
	Effects     []string                 `yaml:"effects"`
	Resistances map[string]float64       `yaml:"resistances"`
	Immunities  map[string]time.Duration `yaml:"immunities"`
}

// Default returns a Config with the loop defaults and the tiered strategy.
func Default() Config {
	return Config{
		LogLevel: "info",
		Loop: Loop{
			FrameStep:     1.0 / 60,
			FixedStep:     0.02,
			MaxFixedSteps: 8,
			Workers:       4,
			Frames:        300,
		},
		Strategy: Strategy{Kind: StrategyTiered},
	}
}

// Load decodes a YAML definitions file on top of Default and validates it.
// An empty document yields the defaults.
func Load(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile loads and validates the file at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Stat returns the stat definition with the given name.
func (c *Config) Stat(name string) (StatDef, bool) {
	for _, s := range c.Stats {
		if s.Name == name {
			return s, true
		}
	}
	return StatDef{}, false
}

// Host returns the host definition with the given name.
func (c *Config) Host(name string) (HostDef, bool) {
	for _, h := range c.Hosts {
		if h.Name == name {
			return h, true
		}
	}
	return HostDef{}, false
}

// Path resolves p against the directory the config was loaded from.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}
