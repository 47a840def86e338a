// Package config loads the simulation's tunable settings from a JSON file,
// falling back to built-in defaults when the file is absent.
package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/onuse/lithogen/internal/worldparams"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Settings is the top-level configuration file shape.
type Settings struct {
	World      WorldSettings      `json:"world"`
	Simulation SimulationSettings `json:"simulation"`
	Server     ServerSettings     `json:"server"`
}

// WorldSettings sizes the toroidal grid.
type WorldSettings struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SimulationSettings configures the lithosphere itself.
type SimulationSettings struct {
	Seed                   uint32  `json:"seed"`
	SeaLevel               float64 `json:"seaLevel"`
	ErosionPeriod          int     `json:"erosionPeriod"`
	FoldingRatio           float64 `json:"foldingRatio"`
	AggrOverlapAbs         int     `json:"aggrOverlapAbs"`
	AggrOverlapRel         float64 `json:"aggrOverlapRel"`
	NumCycles              int     `json:"numCycles"`
	NumPlates              int     `json:"numPlates"`
	RegenerateOceanicCrust bool    `json:"regenerateOceanicCrust"`
}

// ServerSettings configures the query/streaming server.
type ServerSettings struct {
	Port             int `json:"port"`
	UpdateIntervalMs int `json:"updateIntervalMs"`
}

// Default returns the built-in configuration used when no file is supplied.
func Default() Settings {
	p := worldparams.Default()
	return Settings{
		World: WorldSettings{Width: 512, Height: 256},
		Simulation: SimulationSettings{
			Seed:                   p.Seed,
			SeaLevel:               p.SeaLevel,
			ErosionPeriod:          p.ErosionPeriod,
			FoldingRatio:           p.FoldingRatio,
			AggrOverlapAbs:         p.AggrOverlapAbs,
			AggrOverlapRel:         p.AggrOverlapRel,
			NumCycles:              p.NumCycles,
			NumPlates:              p.NumPlates,
			RegenerateOceanicCrust: p.RegenerateOceanicCrust,
		},
		Server: ServerSettings{
			Port:             8080,
			UpdateIntervalMs: 250,
		},
	}
}

// Load reads settings from path, starting from Default() and overriding
// whichever fields the file sets. A missing file is not an error: the
// defaults are returned unchanged.
func Load(path string) (Settings, error) {
	settings := Default()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&settings); err != nil {
		return settings, fmt.Errorf("config: error parsing %s: %w", path, err)
	}
	return settings, nil
}

// Params converts the loaded simulation settings into a worldparams.Params.
func (s Settings) Params() worldparams.Params {
	sim := s.Simulation
	return worldparams.Params{
		Seed:                   sim.Seed,
		SeaLevel:               sim.SeaLevel,
		ErosionPeriod:          sim.ErosionPeriod,
		FoldingRatio:           sim.FoldingRatio,
		AggrOverlapAbs:         sim.AggrOverlapAbs,
		AggrOverlapRel:         sim.AggrOverlapRel,
		NumCycles:              sim.NumCycles,
		NumPlates:              sim.NumPlates,
		RegenerateOceanicCrust: sim.RegenerateOceanicCrust,
	}
}
