// Package config loads simulation scenarios from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/lanepath/internal/core/observability/log"
	"github.com/zeusync/lanepath/internal/core/planner"
	"github.com/zeusync/lanepath/internal/core/systems/physics"
)

var ErrInvalidConfig = errors.New("invalid scenario configuration")

// minRealTimeTick is the smallest tick a wall-clock ticker can pace: 1ns.
const minRealTimeTick = 1e-9

// Scenario is the top-level configuration file.
type Scenario struct {
	LogLevel  string          `json:"log_level" yaml:"log_level"`
	Loop      LoopConfig      `json:"loop" yaml:"loop"`
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`
	Agents    []AgentConfig   `json:"agents" yaml:"agents"`
}

type LoopConfig struct {
	Tick     float64 `json:"tick" yaml:"tick"`
	MaxTicks uint64  `json:"max_ticks,omitempty" yaml:"max_ticks,omitempty"`
	RealTime bool    `json:"real_time,omitempty" yaml:"real_time,omitempty"`
}

type TelemetryConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// AgentConfig is one vehicle and the field it covers.
type AgentConfig struct {
	Name           string `json:"name" yaml:"name"`
	planner.Config `yaml:",inline"`
	Start          StartPose `json:"start" yaml:"start"`
}

type StartPose struct {
	X       float64 `json:"x" yaml:"x"`
	Y       float64 `json:"y" yaml:"y"`
	Z       float64 `json:"z" yaml:"z"`
	Heading float64 `json:"heading" yaml:"heading"`
}

func (p StartPose) Pose() physics.Pose {
	return physics.Pose{Position: physics.V3(p.X, p.Y, p.Z), Heading: p.Heading}
}

// Default returns the single seed-drilling tractor of the reference scene.
func Default() *Scenario {
	return &Scenario{
		LogLevel:  "info",
		Loop:      LoopConfig{Tick: 0.02, MaxTicks: 1_000_000},
		Telemetry: TelemetryConfig{Addr: "127.0.0.1:8088"},
		Agents: []AgentConfig{
			{
				Name: "tractor",
				Config: planner.Config{
					Strategy: planner.StrategySweep,
					Field:    planner.FieldSpec{Length: 20, Width: 10, RowSpacing: 1},
					Motion:   planner.MotionSpec{Speed: 2, MarkerInterval: 1},
				},
			},
		},
	}
}

// Load decodes a scenario. Fields absent from the document keep their Default values,
// except Agents which is replaced when present.
func Load(r io.Reader) (*Scenario, error) {
	s := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile opens path and calls Load.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Validate checks the loop, logging and every agent's planner configuration.
func (s *Scenario) Validate() error {
	if _, err := log.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !(s.Loop.Tick > 0) {
		return fmt.Errorf("%w: loop tick must be positive, got %v", ErrInvalidConfig, s.Loop.Tick)
	}
	if s.Loop.RealTime && s.Loop.Tick < minRealTimeTick {
		return fmt.Errorf("%w: real-time loop tick must be at least %v, got %v", ErrInvalidConfig, minRealTimeTick, s.Loop.Tick)
	}
	if s.Telemetry.Enabled && s.Telemetry.Addr == "" {
		return fmt.Errorf("%w: telemetry enabled without addr", ErrInvalidConfig)
	}
	if len(s.Agents) == 0 {
		return fmt.Errorf("%w: no agents configured", ErrInvalidConfig)
	}

	seen := make(map[string]struct{}, len(s.Agents))
	for i, a := range s.Agents {
		if a.Name == "" {
			return fmt.Errorf("%w: agent %d has no name", ErrInvalidConfig, i)
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("%w: duplicate agent name %q", ErrInvalidConfig, a.Name)
		}
		seen[a.Name] = struct{}{}
		if err := a.Config.Validate(); err != nil {
			return fmt.Errorf("agent %q: %w", a.Name, err)
		}
	}
	return nil
}

// Level returns the parsed log level; Validate has already rejected bad values.
func (s *Scenario) Level() log.Level {
	lvl, _ := log.ParseLevel(s.LogLevel)
	return lvl
}

// Encode writes the scenario as YAML.
func (s *Scenario) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}
