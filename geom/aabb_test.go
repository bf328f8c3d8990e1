package geom

import (
	"math/rand"
	"testing"

	"github.com/Ambroisie/beevee/types"
)

func TestEmptyAABBIsUnionIdentity(t *testing.T) {
	empty := EmptyAABB()
	if !empty.IsEmpty() {
		t.Fatal("expected EmptyAABB to report IsEmpty")
	}

	b := NewAABB(types.XYZ(-1, -2, -3), types.XYZ(4, 5, 6))
	if got := empty.Union(b); got != b {
		t.Fatalf("expected empty union b to equal b; got %v", got)
	}
	if got := b.Union(empty); got != b {
		t.Fatalf("expected b union empty to equal b; got %v", got)
	}
	if got := empty.Union(empty); !got.IsEmpty() {
		t.Fatalf("expected empty union empty to stay empty; got %v", got)
	}
}

func TestUnionCommutes(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randBox := func() AABB {
		p1 := types.XYZ(rng.Float32()*10-5, rng.Float32()*10-5, rng.Float32()*10-5)
		p2 := types.XYZ(rng.Float32()*10-5, rng.Float32()*10-5, rng.Float32()*10-5)
		return NewAABB(types.MinVec3(p1, p2), types.MaxVec3(p1, p2))
	}

	for i := 0; i < 100; i++ {
		a, b := randBox(), randBox()
		if a.Union(b) != b.Union(a) {
			t.Fatalf("expected union to commute for %v and %v", a, b)
		}
	}
}

func TestNewAABBRejectsInvertedCorners(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected inverted corners to panic")
		}
	}()
	NewAABB(types.XYZ(1, 0, 0), types.XYZ(0, 1, 1))
}

func TestGrow(t *testing.T) {
	b := EmptyAABB()
	b = b.Grow(types.XYZ(1, 2, 3))
	if exp := NewAABB(types.XYZ(1, 2, 3), types.XYZ(1, 2, 3)); b != exp {
		t.Fatalf("expected growing the empty box to yield the point box %v; got %v", exp, b)
	}

	b = b.Grow(types.XYZ(-1, 5, 3))
	exp := NewAABB(types.XYZ(-1, 2, 3), types.XYZ(1, 5, 3))
	if b != exp {
		t.Fatalf("expected grown box %v; got %v", exp, b)
	}

	// Growing by an inner point must not change the box.
	if got := b.Grow(types.XYZ(0, 3, 3)); got != b {
		t.Fatalf("expected inner point to leave the box unchanged; got %v", got)
	}
}

func TestContains(t *testing.T) {
	b := NewAABB(types.XYZ(0, 0, 0), types.XYZ(2, 2, 2))

	specs := []struct {
		p   types.Vec3
		exp bool
	}{
		{types.XYZ(1, 1, 1), true},
		{types.XYZ(0, 0, 0), true}, // corners are inside: the box is closed
		{types.XYZ(2, 2, 2), true},
		{types.XYZ(2, 2, 2.001), false},
		{types.XYZ(-0.001, 1, 1), false},
	}
	for _, spec := range specs {
		if got := b.Contains(spec.p); got != spec.exp {
			t.Fatalf("expected Contains(%v) to be %t; got %t", spec.p, spec.exp, got)
		}
	}
}

func TestSurfaceAndVolume(t *testing.T) {
	b := NewAABB(types.XYZ(0, 0, 0), types.XYZ(1, 2, 3))
	if exp, got := float32(2*(2+3+6)), b.Surface(); got != exp {
		t.Fatalf("expected surface %f; got %f", exp, got)
	}
	if exp, got := float32(6), b.Volume(); got != exp {
		t.Fatalf("expected volume %f; got %f", exp, got)
	}
}

func TestCentroidAndDiagonal(t *testing.T) {
	b := NewAABB(types.XYZ(-1, -2, -3), types.XYZ(3, 2, 1))
	if exp, got := types.XYZ(4, 4, 4), b.Diagonal(); got != exp {
		t.Fatalf("expected diagonal %v; got %v", exp, got)
	}
	if exp, got := types.XYZ(1, 0, -1), b.Centroid(); got != exp {
		t.Fatalf("expected centroid %v; got %v", exp, got)
	}
}

func TestLargestAxisTieBreaks(t *testing.T) {
	origin := types.XYZ(0, 0, 0)

	specs := []struct {
		max types.Vec3
		exp types.Axis
	}{
		{types.XYZ(1, 1, 1), types.XAxis}, // full tie goes to X
		{types.XYZ(3, 2, 1), types.XAxis},
		{types.XYZ(1, 2, 2), types.YAxis}, // Y/Z tie goes to Y
		{types.XYZ(1, 2, 3), types.ZAxis},
	}
	for _, spec := range specs {
		if got := NewAABB(origin, spec.max).LargestAxis(); got != spec.exp {
			t.Fatalf("expected largest axis of box to %v to be %v; got %v", spec.max, spec.exp, got)
		}
	}
}

func TestDistanceToPoint(t *testing.T) {
	b := NewAABB(types.XYZ(0, 0, 0), types.XYZ(2, 2, 2))

	specs := []struct {
		p   types.Vec3
		exp float32
	}{
		{types.XYZ(1, 1, 1), 0},           // inside
		{types.XYZ(2, 2, 2), 0},           // on the surface
		{types.XYZ(4, 1, 1), 2},           // off one face
		{types.XYZ(-3, 1, -2), 3.6055512}, // off an edge: sqrt(9+4)
	}
	for _, spec := range specs {
		if got := b.DistanceToPoint(spec.p); !almostEqual(got, spec.exp) {
			t.Fatalf("expected distance from %v to be %f; got %f", spec.p, spec.exp, got)
		}
	}
}

func TestAABBImplementsBounded(t *testing.T) {
	var bounded Bounded = NewAABB(types.XYZ(0, 0, 0), types.XYZ(2, 4, 6))
	if got := bounded.Bounds(); got != bounded.(AABB) {
		t.Fatalf("expected a box to be its own bound; got %v", got)
	}
	if exp, got := types.XYZ(1, 2, 3), bounded.Centroid(); got != exp {
		t.Fatalf("expected centroid %v; got %v", exp, got)
	}
}

func almostEqual(a, b float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1e-5
}
