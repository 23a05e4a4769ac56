// Package config loads the two YAML configuration blobs the runtime
// consumes at process start: WorldGenConfig (handed to the external
// worldgen collaborator before tick 1) and SimConfig (the run() entrypoint's
// own parameters). The runtime itself only ever sees the already-parsed
// structs; it never re-reads the file mid-run.
//
// Grounded on the teacher's pkg/config/config.go Load/validate shape and
// pkg/persistence/filestore.go's YAML load idiom, adapted from
// environment-variable sourcing to file-based YAML (spec §6: "Produced by
// an external loader").
package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// MapConfig is the worldgen map-shape section of WorldGenConfig.
type MapConfig struct {
	NumRegions      int `yaml:"num_regions"`
	Width           int `yaml:"width"`
	Height          int `yaml:"height"`
	NumBiomeCenters int `yaml:"num_biome_centers"`
	AdjacencyK      int `yaml:"adjacency_k"`
}

// WorldGenConfig is the blob consumed once by worldgen before tick 1
// (spec §6). SubsystemKnobs carries optional, per-subsystem tuning
// overrides the runtime never interprets itself — worldgen resolves them
// against each subsystem's own defaults.
type WorldGenConfig struct {
	Seed           uint64                 `yaml:"seed"`
	Map            MapConfig              `yaml:"map"`
	SubsystemKnobs map[string]interface{} `yaml:"subsystem_knobs,omitempty"`
}

// SimConfig is the run() entrypoint's own parameter set (spec §6:
// "run(world, systems, SimConfig{start_year, num_years, seed})").
type SimConfig struct {
	StartYear uint32 `yaml:"start_year"`
	NumYears  uint32 `yaml:"num_years"`
	Seed      uint64 `yaml:"seed"`
}

// LoadWorldGenConfig reads and validates a WorldGenConfig from path.
func LoadWorldGenConfig(path string) (*WorldGenConfig, error) {
	logrus.WithFields(logrus.Fields{
		"function": "LoadWorldGenConfig", "path": path,
	}).Debug("loading worldgen config")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read worldgen config %s: %w", path, err)
	}

	cfg := &WorldGenConfig{
		Map: MapConfig{NumRegions: 8, Width: 64, Height: 64, NumBiomeCenters: 6, AdjacencyK: 4},
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal worldgen config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid worldgen config: %w", err)
	}
	return cfg, nil
}

func (c *WorldGenConfig) validate() error {
	if c.Map.NumRegions < 1 {
		return fmt.Errorf("map.num_regions must be at least 1, got %d", c.Map.NumRegions)
	}
	if c.Map.Width < 1 || c.Map.Height < 1 {
		return fmt.Errorf("map.width and map.height must be positive, got %dx%d", c.Map.Width, c.Map.Height)
	}
	if c.Map.NumBiomeCenters < 1 {
		return fmt.Errorf("map.num_biome_centers must be at least 1, got %d", c.Map.NumBiomeCenters)
	}
	if c.Map.AdjacencyK < 1 {
		return fmt.Errorf("map.adjacency_k must be at least 1, got %d", c.Map.AdjacencyK)
	}
	return nil
}

// LoadSimConfig reads and validates a SimConfig from path.
func LoadSimConfig(path string) (*SimConfig, error) {
	logrus.WithFields(logrus.Fields{
		"function": "LoadSimConfig", "path": path,
	}).Debug("loading sim config")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sim config %s: %w", path, err)
	}

	cfg := &SimConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sim config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid sim config: %w", err)
	}
	return cfg, nil
}

func (c *SimConfig) validate() error {
	if c.NumYears < 1 {
		return fmt.Errorf("num_years must be at least 1, got %d", c.NumYears)
	}
	return nil
}
