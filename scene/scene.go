// Package scene assembles shapes into a traceable scene backed by a
// two-level index: every mesh carries its own triangle index and a scene
// level index spans whole objects.
package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/Ambroisie/beevee/bvh"
	"github.com/Ambroisie/beevee/geom"
	"github.com/Ambroisie/beevee/log"
	"github.com/Ambroisie/beevee/shape"
	"github.com/Ambroisie/beevee/types"
	"github.com/olekukonko/tablewriter"
)

var logger = log.New("scene")

// Scene holds the geometry of a traceable scene. The exported fields are
// the persistent representation; Compile derives the indices from them and
// must be called before tracing rays.
type Scene struct {
	Spheres []shape.Sphere
	Meshes  []shape.Mesh

	tree *bvh.Tree[bvh.Accelerated]
}

// Hit describes the closest intersection found for a ray.
type Hit struct {
	// Object is the scene entry that was hit.
	Object bvh.Accelerated
	// Primitive is the exact shape hit inside Object. For spheres it is
	// the sphere itself, for meshes the individual triangle.
	Primitive bvh.Intersected
	// Distance from the ray origin to the hit, in ray direction units.
	Distance float32
	// Point is the location of the hit.
	Point types.Vec3
}

// Compile builds the mesh indices and the scene object index, reordering
// the mesh triangle slices in place. maxCapacity bounds the number of
// entries per index leaf. Scenes must be recompiled after their geometry
// changes.
func (s *Scene) Compile(maxCapacity int) error {
	objects := make([]bvh.Accelerated, 0, len(s.Spheres)+len(s.Meshes))
	for i := range s.Spheres {
		objects = append(objects, &s.Spheres[i])
	}

	totalTriangles := 0
	for i := range s.Meshes {
		if err := s.Meshes[i].Compile(maxCapacity); err != nil {
			return fmt.Errorf("scene: mesh %d: %v", i, err)
		}
		// A mesh without triangles has no bounds; it can never be hit
		// so it does not belong in the object index.
		if len(s.Meshes[i].Triangles) == 0 {
			continue
		}
		totalTriangles += len(s.Meshes[i].Triangles)
		objects = append(objects, &s.Meshes[i])
	}

	tree, err := bvh.WithMaxCapacity(objects, maxCapacity)
	if err != nil {
		return fmt.Errorf("scene: %v", err)
	}
	s.tree = tree

	logger.Debugf(
		"compiled scene: %d spheres, %d meshes (%d triangles), %d index nodes",
		len(s.Spheres), len(s.Meshes), totalTriangles, tree.Stats().Nodes,
	)
	return nil
}

// Tree exposes the compiled object index, or nil for an uncompiled scene.
func (s *Scene) Tree() *bvh.Tree[bvh.Accelerated] {
	return s.tree
}

// Bounds returns the box around the whole compiled scene.
func (s *Scene) Bounds() geom.AABB {
	return s.tree.Bounds()
}

// Trace finds the closest object hit by r and resolves the exact primitive
// inside it.
func (s *Scene) Trace(r *geom.Ray) (Hit, bool) {
	obj, _, ok := bvh.Walk(s.tree, r)
	if !ok {
		return Hit{}, false
	}

	prim, dist, ok := (*obj).IntersectPrimitive(r)
	if !ok {
		return Hit{}, false
	}

	return Hit{
		Object:    *obj,
		Primitive: prim,
		Distance:  dist,
		Point:     r.Origin.Add(r.Dir.Mul(dist)),
	}, true
}

// Build a tabular representation of scene statistics.
func (s *Scene) Stats() string {
	triangleSlices := make([]interface{}, len(s.Meshes))
	totalTriangles := 0
	meshNodes, meshMaxDepth := 0, 0
	for i := range s.Meshes {
		triangleSlices[i] = s.Meshes[i].Triangles
		totalTriangles += len(s.Meshes[i].Triangles)
		if t := s.Meshes[i].Tree(); t != nil {
			st := t.Stats()
			meshNodes += st.Nodes
			if st.MaxDepth > meshMaxDepth {
				meshMaxDepth = st.MaxDepth
			}
		}
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Scene Item", "Detail", "Value"})
	table.Append([]string{"Geometry", "---", fmtSize(append(triangleSlices, s.Spheres)...)})
	table.Append([]string{"", "Spheres", fmt.Sprintf("%d", len(s.Spheres))})
	table.Append([]string{"", "Meshes", fmt.Sprintf("%d", len(s.Meshes))})
	table.Append([]string{"", "Triangles", fmt.Sprintf("%d", totalTriangles)})
	if s.tree != nil {
		st := s.tree.Stats()
		table.Append([]string{" ", " ", " "})
		table.Append([]string{"Object index", "---", " "})
		table.Append([]string{"", "Nodes", fmt.Sprintf("%d", st.Nodes)})
		table.Append([]string{"", "Leaves", fmt.Sprintf("%d", st.Leaves)})
		table.Append([]string{"", "Max depth", fmt.Sprintf("%d", st.MaxDepth)})
		table.Append([]string{"", "Max objects per leaf", fmt.Sprintf("%d", st.MaxLeaf)})
		table.Append([]string{" ", " ", " "})
		table.Append([]string{"Mesh indices", "---", " "})
		table.Append([]string{"", "Nodes", fmt.Sprintf("%d", meshNodes)})
		table.Append([]string{"", "Max depth", fmt.Sprintf("%d", meshMaxDepth)})
	}
	table.SetFooter([]string{"Total", " ", strings.TrimLeft(fmtSize(append(triangleSlices, s.Spheres)...), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
