// Package config holds the file-level parameters of an RVE run, loads
// them from YAML and validates them before a run starts.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/chazu/rvegen/pkg/geom"
	"github.com/chazu/rvegen/pkg/gmsh"
	"github.com/chazu/rvegen/pkg/kernel/sdfx"
	"github.com/chazu/rvegen/pkg/rve"
)

// maxFileSize caps parameter files.
const maxFileSize = 1 * 1024 * 1024 // 1MB

// Params describes one RVE run.
type Params struct {
	Domain               DomainParams `yaml:"domain"`
	RadiusMin            float64      `yaml:"radius_min"`
	RadiusMax            float64      `yaml:"radius_max"`
	TargetVolumeFraction float64      `yaml:"target_volume_fraction"`
	IntegrationPoints    int64        `yaml:"integration_points"`
	TriesPerInclusion    int          `yaml:"tries_per_inclusion"`
	Seed                 uint64       `yaml:"seed"`
	Mesh                 MeshParams   `yaml:"mesh"`
}

// DomainParams holds the box corners as [x, y, z].
type DomainParams struct {
	Min []float64 `yaml:"min"`
	Max []float64 `yaml:"max"`
}

// MeshParams controls the outputs derived from a run.
type MeshParams struct {
	// CircleDiscretizationPoints is written into the Gmsh script.
	CircleDiscretizationPoints int `yaml:"circle_discretization_points"`
	// PreviewCells is the marching cubes resolution of the STL preview.
	PreviewCells int `yaml:"preview_cells"`
}

// Default returns the parameters used for any field a file leaves out:
// the [-1,1]^3 cube filled to 30% with radii between 0.1 and 0.2.
func Default() *Params {
	return &Params{
		Domain: DomainParams{
			Min: []float64{-1, -1, -1},
			Max: []float64{1, 1, 1},
		},
		RadiusMin:            0.1,
		RadiusMax:            0.2,
		TargetVolumeFraction: 0.3,
		IntegrationPoints:    rve.DefaultIntegrationPoints,
		TriesPerInclusion:    rve.DefaultTriesPerInclusion,
		Seed:                 rve.DefaultSeed,
		Mesh: MeshParams{
			CircleDiscretizationPoints: gmsh.DefaultCircleDiscretizationPoints,
			PreviewCells:               sdfx.DefaultMeshCells,
		},
	}
}

// Load reads a YAML parameter file. Fields absent from the file keep
// their Default values. Load does not validate; call Validate.
func Load(path string) (*Params, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (*Params, error) {
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return p, nil
}

// Marshal encodes p as YAML. The run catalog stores this snapshot.
func (p *Params) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config YAML: %w", err)
	}
	return data, nil
}

// Box returns the domain as a geom.Box. It assumes both corners have
// three components; Validate reports when they do not.
func (d DomainParams) Box() geom.Box {
	return geom.NewBox(toVec(d.Min), toVec(d.Max))
}

func toVec(c []float64) r3.Vec {
	var v [3]float64
	copy(v[:], c)
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// RVEConfig converts p into a placement configuration.
func (p *Params) RVEConfig(logger *slog.Logger) rve.Config {
	return rve.Config{
		Domain:               p.Domain.Box(),
		RadiusMin:            p.RadiusMin,
		RadiusMax:            p.RadiusMax,
		TargetVolumeFraction: p.TargetVolumeFraction,
		IntegrationPoints:    p.IntegrationPoints,
		TriesPerInclusion:    p.TriesPerInclusion,
		Seed:                 p.Seed,
		Logger:               logger,
	}
}
