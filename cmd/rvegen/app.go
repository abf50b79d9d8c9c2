package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chazu/rvegen/pkg/config"
	"github.com/chazu/rvegen/pkg/engine"
	"github.com/chazu/rvegen/pkg/gmsh"
	"github.com/chazu/rvegen/pkg/kernel"
	"github.com/chazu/rvegen/pkg/kernel/sdfx"
	"github.com/chazu/rvegen/pkg/report"
	"github.com/chazu/rvegen/pkg/rve"
	"github.com/chazu/rvegen/pkg/store"
	"github.com/chazu/rvegen/pkg/tessellate"
)

// histogramBins is the bin count of the radius histogram.
const histogramBins = 20

// App runs the pipeline behind the CLI: parameters, placement, script,
// and the optional preview, plots and catalog entry.
type App struct {
	engine *engine.Engine
	logger *slog.Logger

	// newKernel builds the preview kernel for a meshing resolution.
	newKernel func(cells int) kernel.Kernel
}

// Outputs selects the files a generate run writes. Empty paths are skipped
// except Script, which is required.
type Outputs struct {
	Script      string // Gmsh .geo
	STL         string // inclusion phase preview
	Convergence string // volume fraction plot
	Histogram   string // radius histogram
	Catalog     string // sqlite run catalog
}

// Outcome is what a generate run produced.
type Outcome struct {
	Params  *config.Params
	Result  *rve.Result
	Summary report.Summary
	Run     *store.Run // nil unless a catalog was given
}

// NewApp creates an App with an engine and the sdfx kernel. A nil logger
// means slog.Default().
func NewApp(logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		engine: engine.NewEngine(),
		logger: logger,
		newKernel: func(cells int) kernel.Kernel {
			return sdfx.New(cells)
		},
	}
}

// LoadParams reads parameters from a YAML file or a Lisp script
// (.rve or .lisp), chosen by extension.
func (a *App) LoadParams(path string) (*config.Params, error) {
	switch filepath.Ext(path) {
	case ".rve", ".lisp":
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		p, evalErrs, err := a.engine.Evaluate(string(source))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(evalErrs) > 0 {
			errs := make([]error, len(evalErrs))
			for i, e := range evalErrs {
				errs[i] = fmt.Errorf("%s: %w", path, e)
			}
			return nil, errors.Join(errs...)
		}
		return p, nil
	default:
		return config.Load(path)
	}
}

// Generate validates p, places the inclusions and writes the requested
// outputs. Validation warnings are logged; validation errors abort the
// run before any placement.
func (a *App) Generate(ctx context.Context, p *config.Params, out Outputs) (*Outcome, error) {
	if out.Script == "" {
		return nil, errors.New("no output script given")
	}

	vr := p.Validate()
	for _, w := range vr.Warnings {
		a.logger.Warn("parameter warning", "field", w.Field, "message", w.Message)
	}
	if err := vr.Err(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	res, err := rve.NewBuilder(p.RVEConfig(a.logger)).Generate()
	if err != nil {
		return nil, err
	}
	outcome := &Outcome{
		Params:  p,
		Result:  res,
		Summary: report.Summarize(res, p.TargetVolumeFraction),
	}
	a.logger.Info("rve generated", "summary", outcome.Summary)

	w := gmsh.NewWriter(res.Domain, res.Inclusions, res.VolumeFraction)
	w.CircleDiscretizationPoints = p.Mesh.CircleDiscretizationPoints
	if err := w.WriteFile(out.Script); err != nil {
		return nil, err
	}
	a.logger.Info("wrote gmsh script", "path", out.Script)

	if out.STL != "" {
		if err := a.writePreview(res, p.Mesh.PreviewCells, out.STL); err != nil {
			return nil, err
		}
	}
	if out.Convergence != "" {
		if err := report.PlotConvergence(res, p.TargetVolumeFraction, out.Convergence); err != nil {
			return nil, err
		}
		a.logger.Info("wrote convergence plot", "path", out.Convergence)
	}
	if out.Histogram != "" {
		if err := report.PlotRadii(res, histogramBins, out.Histogram); err != nil {
			return nil, err
		}
		a.logger.Info("wrote radius histogram", "path", out.Histogram)
	}
	if out.Catalog != "" {
		run, err := a.record(ctx, out.Catalog, p, res)
		if err != nil {
			return nil, err
		}
		outcome.Run = &run
	}

	return outcome, nil
}

// writePreview meshes both phases once, logs how well the mesh volumes
// agree with the estimated fraction, and writes the inclusion mesh as STL.
func (a *App) writePreview(res *rve.Result, cells int, path string) error {
	k := a.newKernel(cells)
	sw, ok := k.(kernel.STLWriter)
	if !ok {
		return fmt.Errorf("kernel %T cannot write STL", k)
	}
	if len(res.Inclusions) == 0 {
		return errors.New("preview: no inclusions to export")
	}

	meshes, err := tessellate.Tessellate(res, k)
	if err != nil {
		return err
	}
	domainVolume := res.Domain.Volume()
	var matrix, inclusions *kernel.Mesh
	for _, m := range meshes {
		switch m.Name {
		case tessellate.PhaseMatrix:
			matrix = m
		case tessellate.PhaseInclusions:
			inclusions = m
		}
	}
	if matrix == nil || inclusions == nil {
		return errors.New("preview: missing phase mesh")
	}
	a.logger.Info("preview mesh",
		"triangles", inclusions.TriangleCount(),
		"mesh_volume_fraction", inclusions.Volume()/domainVolume,
		"matrix_volume_fraction", matrix.Volume()/domainVolume,
		"estimated_volume_fraction", res.VolumeFraction)

	if err := sw.WriteSTL(inclusions, path); err != nil {
		return err
	}
	a.logger.Info("wrote stl preview", "path", path)
	return nil
}

func (a *App) record(ctx context.Context, path string, p *config.Params, res *rve.Result) (store.Run, error) {
	s, err := store.Open(path)
	if err != nil {
		return store.Run{}, err
	}
	defer s.Close()

	run, err := s.SaveRun(ctx, p, res)
	if err != nil {
		return store.Run{}, err
	}
	a.logger.Info("recorded run", "id", run.ID, "catalog", path)
	return run, nil
}

// Runs lists the catalog, newest first.
func (a *App) Runs(ctx context.Context, catalog string) ([]store.Run, error) {
	s, err := store.Open(catalog)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Runs(ctx)
}

// Export rewrites the Gmsh script of a stored run.
func (a *App) Export(ctx context.Context, catalog, id, path string) error {
	s, err := store.Open(catalog)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.Result(ctx, id)
	if err != nil {
		return err
	}
	p, err := s.Params(ctx, id)
	if err != nil {
		return err
	}

	w := gmsh.NewWriter(res.Domain, res.Inclusions, res.VolumeFraction)
	w.CircleDiscretizationPoints = p.Mesh.CircleDiscretizationPoints
	if err := w.WriteFile(path); err != nil {
		return err
	}
	a.logger.Info("exported run", "id", id, "path", path)
	return nil
}
