package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/rvegen/pkg/config"
	"github.com/chazu/rvegen/pkg/geom"
	"github.com/chazu/rvegen/pkg/rve"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// fixedClock returns successive instants one second apart.
func fixedClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Second)
		return now
	}
}

func sampleResult() *rve.Result {
	return &rve.Result{
		Domain: geom.NewBox(r3.Vec{X: -1, Y: -1, Z: -1}, r3.Vec{X: 1, Y: 1, Z: 1}),
		Inclusions: []geom.Sphere{
			geom.NewSphere(r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, 0.2),
			geom.NewSphere(r3.Vec{X: -0.9, Y: 0.1, Z: 0.3}, 0.15),
			geom.NewSphere(r3.Vec{X: 0, Y: -0.5, Z: -0.25}, 0.1),
		},
		VolumeFraction: 0.0102,
		History:        []float64{0.0042, 0.0071, 0.0102},
		Placements:     5,
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	s := openTemp(t)
	s.now = fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	p := config.Default()
	p.Seed = 1 << 63 // exercises the full uint64 range
	res := sampleResult()

	run, err := s.SaveRun(ctx, p, res)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 3, run.Inclusions)
	assert.Equal(t, 5, run.Placements)

	got, err := s.Run(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt), "created %v, stored %v", run.CreatedAt, got.CreatedAt)
	got.CreatedAt = run.CreatedAt
	assert.Equal(t, run, got)
	assert.Equal(t, uint64(1<<63), got.Seed)

	spheres, err := s.Inclusions(ctx, run.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(res.Inclusions, spheres); diff != "" {
		t.Errorf("inclusions mismatch (-want +got):\n%s", diff)
	}

	params, err := s.Params(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, p, params)
}

func TestResultRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	res := sampleResult()
	run, err := s.SaveRun(ctx, config.Default(), res)
	require.NoError(t, err)

	got, err := s.Result(ctx, run.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(res, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestRunsNewestFirst(t *testing.T) {
	s := openTemp(t)
	s.now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	var ids []string
	for seed := uint64(1); seed <= 3; seed++ {
		p := config.Default()
		p.Seed = seed
		run, err := s.SaveRun(ctx, p, sampleResult())
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{runs[0].ID, runs[1].ID, runs[2].ID})
	assert.Equal(t, uint64(3), runs[0].Seed)
}

func TestRunsEmpty(t *testing.T) {
	s := openTemp(t)
	runs, err := s.Runs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRunNotFound(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, err := s.Run(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.Params(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.Result(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	spheres, err := s.Inclusions(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, spheres)
}

func TestSaveRunEmptyInclusions(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	res := &rve.Result{Domain: sampleResult().Domain}
	run, err := s.SaveRun(ctx, config.Default(), res)
	require.NoError(t, err)
	assert.Zero(t, run.Inclusions)

	spheres, err := s.Inclusions(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, spheres)
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	run, err := s.SaveRun(ctx, config.Default(), sampleResult())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Run(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
}

func TestSaveRunCanceledContext(t *testing.T) {
	s := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SaveRun(ctx, config.Default(), sampleResult())
	assert.Error(t, err)
}
