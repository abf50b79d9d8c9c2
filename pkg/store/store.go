// Package store keeps a catalog of generated RVEs in SQLite so a layout
// can be listed and re-exported without rerunning the placement.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/chazu/rvegen/pkg/config"
	"github.com/chazu/rvegen/pkg/geom"
	"github.com/chazu/rvegen/pkg/rve"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("store: run not found")

const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		target DOUBLE NOT NULL,
		volume_fraction DOUBLE NOT NULL,
		inclusions INTEGER NOT NULL,
		placements INTEGER NOT NULL,
		params TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS inclusions (
		run_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		x DOUBLE NOT NULL,
		y DOUBLE NOT NULL,
		z DOUBLE NOT NULL,
		r DOUBLE NOT NULL,
		fraction DOUBLE NOT NULL,
		PRIMARY KEY (run_id, idx),
		FOREIGN KEY(run_id) REFERENCES runs(run_id)
	);
`

// Store is a run catalog backed by a SQLite file.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Run is one catalog entry.
type Run struct {
	ID             string
	CreatedAt      time.Time
	Seed           uint64
	Target         float64
	VolumeFraction float64
	Inclusions     int
	Placements     int
}

// Open opens or creates the catalog at path. ":memory:" gives a private
// in-memory catalog.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// SQLite serializes writers; one connection also keeps :memory: alive.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun records a finished run with a snapshot of its parameters. The
// inclusions are stored in acceptance order together with the running
// volume fraction after each one.
func (s *Store) SaveRun(ctx context.Context, p *config.Params, res *rve.Result) (Run, error) {
	snapshot, err := p.Marshal()
	if err != nil {
		return Run{}, fmt.Errorf("store: %w", err)
	}

	run := Run{
		ID:             uuid.NewString(),
		CreatedAt:      s.now().UTC(),
		Seed:           p.Seed,
		Target:         p.TargetVolumeFraction,
		VolumeFraction: res.VolumeFraction,
		Inclusions:     len(res.Inclusions),
		Placements:     res.Placements,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, seed, target, volume_fraction, inclusions, placements, params)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixNano(), int64(run.Seed), run.Target, run.VolumeFraction,
		run.Inclusions, run.Placements, string(snapshot))
	if err != nil {
		return Run{}, fmt.Errorf("store: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO inclusions (run_id, idx, x, y, z, r, fraction) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("store: prepare inclusions: %w", err)
	}
	defer stmt.Close()

	for i, sp := range res.Inclusions {
		var fraction float64
		if i < len(res.History) {
			fraction = res.History[i]
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i,
			sp.Center.X, sp.Center.Y, sp.Center.Z, sp.Radius, fraction); err != nil {
			return Run{}, fmt.Errorf("store: insert inclusion %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("store: commit: %w", err)
	}
	return run, nil
}

const runColumns = `run_id, created_at, seed, target, volume_fraction, inclusions, placements`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r       Run
		created int64
		seed    int64
	)
	if err := sc.Scan(&r.ID, &created, &seed, &r.Target, &r.VolumeFraction, &r.Inclusions, &r.Placements); err != nil {
		return Run{}, err
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	r.Seed = uint64(seed)
	return r, nil
}

// Runs lists all runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	return runs, nil
}

// Run returns the run with the given ID.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("store: get run %s: %w", id, err)
	}
	return r, nil
}

// Params returns the parameter snapshot stored with a run.
func (s *Store) Params(ctx context.Context, id string) (*config.Params, error) {
	var snapshot string
	err := s.db.QueryRowContext(ctx, `SELECT params FROM runs WHERE run_id = ?`, id).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get params %s: %w", id, err)
	}
	p, err := config.Parse([]byte(snapshot))
	if err != nil {
		return nil, fmt.Errorf("store: run %s: %w", id, err)
	}
	return p, nil
}

// Inclusions returns the spheres of a run in acceptance order.
func (s *Store) Inclusions(ctx context.Context, id string) ([]geom.Sphere, error) {
	spheres, _, err := s.inclusions(ctx, id)
	return spheres, err
}

func (s *Store) inclusions(ctx context.Context, id string) ([]geom.Sphere, []float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT x, y, z, r, fraction FROM inclusions WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("store: list inclusions: %w", err)
	}
	defer rows.Close()

	var (
		spheres []geom.Sphere
		history []float64
	)
	for rows.Next() {
		var sp geom.Sphere
		var fraction float64
		if err := rows.Scan(&sp.Center.X, &sp.Center.Y, &sp.Center.Z, &sp.Radius, &fraction); err != nil {
			return nil, nil, fmt.Errorf("store: scan inclusion: %w", err)
		}
		spheres = append(spheres, sp)
		history = append(history, fraction)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("store: list inclusions: %w", err)
	}
	return spheres, history, nil
}

// Result rebuilds the placement result of a stored run.
func (s *Store) Result(ctx context.Context, id string) (*rve.Result, error) {
	run, err := s.Run(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.Params(ctx, id)
	if err != nil {
		return nil, err
	}
	spheres, history, err := s.inclusions(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rve.Result{
		Domain:         p.Domain.Box(),
		Inclusions:     spheres,
		VolumeFraction: run.VolumeFraction,
		History:        history,
		Placements:     run.Placements,
	}, nil
}
