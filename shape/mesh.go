package shape

import (
	"fmt"

	"github.com/Ambroisie/beevee/bvh"
	"github.com/Ambroisie/beevee/geom"
	"github.com/Ambroisie/beevee/types"
)

// Mesh groups a triangle soup behind its own index so rays only ever test
// the handful of triangles near their path. Meshes satisfy bvh.Accelerated
// and report the exact triangle that was hit.
//
// A mesh must be compiled before serving intersection queries. NewMesh does
// this; meshes obtained any other way (decoded from a compiled scene file,
// or assembled by hand) need an explicit Compile call.
type Mesh struct {
	// Name is an optional label carried over from scene files.
	Name      string
	Triangles []Triangle

	tree *bvh.Tree[Triangle]
}

// NewMesh creates a mesh from a triangle list and compiles it. The mesh
// takes ownership of the slice and reorders it.
func NewMesh(triangles []Triangle) (*Mesh, error) {
	m := &Mesh{Triangles: triangles}
	if err := m.Compile(bvh.DefaultMaxCapacity); err != nil {
		return nil, err
	}
	return m, nil
}

// Compile rebuilds the triangle index, reordering the Triangles slice in
// place. maxCapacity bounds the number of triangles per index leaf.
func (m *Mesh) Compile(maxCapacity int) error {
	tree, err := bvh.WithMaxCapacity(m.Triangles, maxCapacity)
	if err != nil {
		return fmt.Errorf("mesh: %v", err)
	}
	m.tree = tree
	return nil
}

// Tree exposes the compiled triangle index, or nil for an uncompiled mesh.
func (m *Mesh) Tree() *bvh.Tree[Triangle] {
	return m.tree
}

// Bounds returns the box around every triangle in the mesh.
func (m *Mesh) Bounds() geom.AABB {
	return m.tree.Bounds()
}

// Centroid returns the center of the mesh bounds.
func (m *Mesh) Centroid() types.Vec3 {
	return m.tree.Bounds().Centroid()
}

// Intersect returns the distance to the closest triangle hit by r.
func (m *Mesh) Intersect(r *geom.Ray) (float32, bool) {
	_, dist, ok := bvh.Walk(m.tree, r)
	return dist, ok
}

// IntersectPrimitive returns the closest triangle hit by r along with the
// distance to it.
func (m *Mesh) IntersectPrimitive(r *geom.Ray) (bvh.Intersected, float32, bool) {
	tri, dist, ok := bvh.Walk(m.tree, r)
	if !ok {
		return nil, 0, false
	}
	return *tri, dist, true
}

func (m *Mesh) String() string {
	if m.Name != "" {
		return fmt.Sprintf("mesh %q: %d triangles", m.Name, len(m.Triangles))
	}
	return fmt.Sprintf("mesh: %d triangles", len(m.Triangles))
}
