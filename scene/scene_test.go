package scene

import (
	"strings"
	"testing"

	"github.com/Ambroisie/beevee/bvh"
	"github.com/Ambroisie/beevee/geom"
	"github.com/Ambroisie/beevee/shape"
	"github.com/Ambroisie/beevee/types"
)

// testScene holds a sphere at x=5 and a two-triangle wall at x=2, both on
// the ray leaving the origin along +X.
func testScene(t *testing.T) *Scene {
	t.Helper()

	s := &Scene{
		Spheres: []shape.Sphere{
			shape.NewSphere(types.XYZ(5, 0, 0), 1),
			shape.NewSphere(types.XYZ(0, 20, 0), 2),
		},
		Meshes: []shape.Mesh{
			{Triangles: []shape.Triangle{
				shape.NewTriangle(types.XYZ(2, -1, -1), types.XYZ(2, 1, -1), types.XYZ(2, 1, 1)),
				shape.NewTriangle(types.XYZ(2, -1, -1), types.XYZ(2, 1, 1), types.XYZ(2, -1, 1)),
			}},
		},
	}
	if err := s.Compile(bvh.DefaultMaxCapacity); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSceneTracePicksNearestObject(t *testing.T) {
	s := testScene(t)

	r := geom.NewRay(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0))
	hit, ok := s.Trace(r)
	if !ok {
		t.Fatal("expected the ray to hit the wall")
	}
	if hit.Distance != 2 {
		t.Fatalf("expected the wall at distance 2; got %f", hit.Distance)
	}
	if exp := types.XYZ(2, 0, 0); hit.Point != exp {
		t.Fatalf("expected hit point %v; got %v", exp, hit.Point)
	}
	if _, isMesh := hit.Object.(*shape.Mesh); !isMesh {
		t.Fatalf("expected to hit the mesh; got %v", hit.Object)
	}
	if _, isTriangle := hit.Primitive.(shape.Triangle); !isTriangle {
		t.Fatalf("expected a triangle primitive; got %v", hit.Primitive)
	}
}

func TestSceneTraceBeyondMesh(t *testing.T) {
	s := testScene(t)

	// Starting past the wall leaves only the sphere ahead.
	r := geom.NewRay(types.XYZ(3, 0, 0), types.XYZ(1, 0, 0))
	hit, ok := s.Trace(r)
	if !ok {
		t.Fatal("expected the ray to hit the sphere")
	}
	if hit.Distance != 1 {
		t.Fatalf("expected the sphere surface at distance 1; got %f", hit.Distance)
	}

	sphere, isSphere := hit.Object.(*shape.Sphere)
	if !isSphere {
		t.Fatalf("expected to hit a sphere; got %v", hit.Object)
	}
	if sphere != &s.Spheres[0] {
		t.Fatal("expected the hit to reference the scene's own sphere entry")
	}
	if _, samePrim := hit.Primitive.(shape.Sphere); !samePrim {
		t.Fatalf("expected the sphere as its own primitive; got %v", hit.Primitive)
	}
}

func TestSceneTraceMiss(t *testing.T) {
	s := testScene(t)

	r := geom.NewRay(types.XYZ(0, 0, 0), types.XYZ(-1, 0, 0))
	if _, ok := s.Trace(r); ok {
		t.Fatal("expected a ray leaving the scene to miss")
	}
}

func TestSceneCompileEmpty(t *testing.T) {
	s := &Scene{}
	if err := s.Compile(bvh.DefaultMaxCapacity); err != nil {
		t.Fatal(err)
	}

	if !s.Bounds().IsEmpty() {
		t.Fatalf("expected empty scene bounds; got %v", s.Bounds())
	}
	r := geom.NewRay(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0))
	if _, ok := s.Trace(r); ok {
		t.Fatal("expected an empty scene to miss")
	}
}

func TestSceneCompileSkipsEmptyMeshes(t *testing.T) {
	s := &Scene{
		Spheres: []shape.Sphere{shape.NewSphere(types.XYZ(5, 0, 0), 1)},
		Meshes:  []shape.Mesh{{}},
	}
	if err := s.Compile(bvh.DefaultMaxCapacity); err != nil {
		t.Fatal(err)
	}

	if s.Tree().Len() != 1 {
		t.Fatalf("expected only the sphere in the object index; got %d entries", s.Tree().Len())
	}

	r := geom.NewRay(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0))
	hit, ok := s.Trace(r)
	if !ok || hit.Distance != 4 {
		t.Fatalf("expected the sphere at distance 4; got %f (hit: %v)", hit.Distance, ok)
	}
}

func TestSceneRecompileAfterMutation(t *testing.T) {
	s := testScene(t)

	s.Spheres = append(s.Spheres, shape.NewSphere(types.XYZ(0.5, 0, 0), 0.25))
	if err := s.Compile(4); err != nil {
		t.Fatal(err)
	}

	r := geom.NewRay(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0))
	hit, ok := s.Trace(r)
	if !ok || hit.Distance != 0.25 {
		t.Fatalf("expected the new sphere at distance 0.25; got %f (hit: %v)", hit.Distance, ok)
	}
}

func TestSceneStats(t *testing.T) {
	s := testScene(t)

	stats := s.Stats()
	for _, exp := range []string{"Geometry", "Spheres", "Meshes", "Triangles", "Object index", "Nodes", "Total"} {
		if !strings.Contains(stats, exp) {
			t.Fatalf("expected stats to mention %q; got:\n%s", exp, stats)
		}
	}
}
