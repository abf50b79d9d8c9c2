package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestSphereVolume(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
		want   float64
	}{
		{"unit", 1, 4.0 / 3.0 * math.Pi},
		{"half", 0.5, 0.5235987755982988},
		{"tiny", 1e-3, 4.0 / 3.0 * math.Pi * 1e-9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSphere(r3.Vec{}, tt.radius)
			if got := s.Volume(); math.Abs(got-tt.want) > 1e-12*math.Max(1, tt.want) {
				t.Errorf("Volume() = %.15g, want %.15g", got, tt.want)
			}
		})
	}
}

func TestRadiusFromVolume(t *testing.T) {
	for _, r := range []float64{0.1, 0.5, 1, 7.25} {
		got := RadiusFromVolume(NewSphere(r3.Vec{}, r).Volume())
		if math.Abs(got-r) > 1e-12 {
			t.Errorf("RadiusFromVolume(Volume(%g)) = %.15g", r, got)
		}
	}
}

func TestSphereCollidesWith(t *testing.T) {
	tests := []struct {
		name string
		a, b Sphere
		want bool
	}{
		{
			name: "separated",
			a:    NewSphere(r3.Vec{X: 0}, 1),
			b:    NewSphere(r3.Vec{X: 3}, 1),
			want: false,
		},
		{
			name: "touching counts as collision",
			a:    NewSphere(r3.Vec{X: 0}, 1),
			b:    NewSphere(r3.Vec{X: 2}, 1),
			want: true,
		},
		{
			name: "overlapping",
			a:    NewSphere(r3.Vec{X: 0, Y: 0, Z: 0}, 0.5),
			b:    NewSphere(r3.Vec{X: 0.3, Y: 0.3, Z: 0.3}, 0.2),
			want: true,
		},
		{
			name: "one inside the other",
			a:    NewSphere(r3.Vec{}, 2),
			b:    NewSphere(r3.Vec{X: 0.1}, 0.1),
			want: true,
		},
		{
			name: "diagonal gap",
			a:    NewSphere(r3.Vec{X: -1, Y: -1, Z: -1}, 0.5),
			b:    NewSphere(r3.Vec{X: 1, Y: 1, Z: 1}, 0.5),
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.CollidesWith(tt.b); got != tt.want {
				t.Errorf("a.CollidesWith(b) = %v, want %v", got, tt.want)
			}
			// Symmetry.
			if got := tt.b.CollidesWith(tt.a); got != tt.want {
				t.Errorf("b.CollidesWith(a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpherePointQueries(t *testing.T) {
	s := NewSphere(r3.Vec{X: 1, Y: 2, Z: 3}, 2)

	tests := []struct {
		name       string
		p          r3.Vec
		wantInside bool
		wantDist   float64
	}{
		{"center", r3.Vec{X: 1, Y: 2, Z: 3}, true, -2},
		{"on surface", r3.Vec{X: 3, Y: 2, Z: 3}, true, 0},
		{"outside", r3.Vec{X: 1, Y: 2, Z: 7}, false, 2},
		{"inside off-axis", r3.Vec{X: 2, Y: 3, Z: 3}, true, math.Sqrt2 - 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.IsPointInside(tt.p); got != tt.wantInside {
				t.Errorf("IsPointInside(%v) = %v, want %v", tt.p, got, tt.wantInside)
			}
			if got := s.SignedDistance(tt.p); math.Abs(got-tt.wantDist) > 1e-12 {
				t.Errorf("SignedDistance(%v) = %g, want %g", tt.p, got, tt.wantDist)
			}
		})
	}
}

func TestSphereWithCenterLeavesOriginal(t *testing.T) {
	s := NewSphere(r3.Vec{X: 1}, 0.25)
	moved := s.WithCenter(r3.Vec{Y: 5})

	if s.Center != (r3.Vec{X: 1}) {
		t.Errorf("original center changed to %v", s.Center)
	}
	if moved.Center != (r3.Vec{Y: 5}) || moved.Radius != 0.25 {
		t.Errorf("moved = %+v, want center (0,5,0) radius 0.25", moved)
	}
}

func TestSphereBounds(t *testing.T) {
	b := NewSphere(r3.Vec{X: 1, Y: -1, Z: 0}, 0.5).Bounds()
	wantMin := r3.Vec{X: 0.5, Y: -1.5, Z: -0.5}
	wantMax := r3.Vec{X: 1.5, Y: -0.5, Z: 0.5}
	if b.Min != wantMin || b.Max != wantMax {
		t.Errorf("Bounds() = %v..%v, want %v..%v", b.Min, b.Max, wantMin, wantMax)
	}
}
