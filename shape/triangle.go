package shape

import (
	"fmt"

	"github.com/Ambroisie/beevee/bvh"
	"github.com/Ambroisie/beevee/geom"
	"github.com/Ambroisie/beevee/types"
	"github.com/chewxy/math32"
)

// triEpsilon rejects rays that run parallel to the triangle plane.
const triEpsilon = 1e-5

// Triangle is defined by its three corners, wound counter-clockwise when
// seen from the side its normal points to.
type Triangle struct {
	P0 types.Vec3
	P1 types.Vec3
	P2 types.Vec3
}

// NewTriangle creates a triangle from its corners.
func NewTriangle(p0, p1, p2 types.Vec3) Triangle {
	return Triangle{P0: p0, P1: p1, P2: p2}
}

// Bounds returns the tightest box around the three corners.
func (t Triangle) Bounds() geom.AABB {
	box := geom.EmptyAABB()
	box.GrowMut(t.P0)
	box.GrowMut(t.P1)
	box.GrowMut(t.P2)
	return box
}

// Centroid returns the barycenter of the corners.
func (t Triangle) Centroid() types.Vec3 {
	return t.P0.Add(t.P1).Add(t.P2).Mul(1.0 / 3.0)
}

// Intersect runs the Moeller-Trumbore test and returns the distance to the
// point where r crosses the triangle plane inside the corner bounds. Rays
// parallel to the plane miss regardless of their origin.
func (t Triangle) Intersect(r *geom.Ray) (float32, bool) {
	e1 := t.P1.Sub(t.P0)
	e2 := t.P2.Sub(t.P0)

	pvec := r.Dir.Cross(e2)
	det := e1.Dot(pvec)
	if math32.Abs(det) < triEpsilon {
		return 0, false
	}

	invDet := 1.0 / det
	toRay := r.Origin.Sub(t.P0)
	u := toRay.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	qvec := toRay.Cross(e1)
	v := r.Dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	dist := e2.Dot(qvec) * invDet
	if dist < 0 {
		return 0, false
	}
	return dist, true
}

// IntersectPrimitive implements bvh.Accelerated; a triangle is its own
// primitive.
func (t Triangle) IntersectPrimitive(r *geom.Ray) (bvh.Intersected, float32, bool) {
	dist, ok := t.Intersect(r)
	if !ok {
		return nil, 0, false
	}
	return t, dist, true
}

// Normal returns the unit normal of the triangle plane, oriented by the
// corner winding.
func (t Triangle) Normal(types.Vec3) types.Vec3 {
	e1 := t.P1.Sub(t.P0)
	e2 := t.P2.Sub(t.P0)
	return e1.Cross(e2).Normalize()
}

// Barycentric expresses a point on the triangle plane in barycentric
// coordinates (u, v) such that point = P0 + u*(P1-P0) + v*(P2-P0).
func (t Triangle) Barycentric(point types.Vec3) (float32, float32) {
	e1 := t.P1.Sub(t.P0)
	e2 := t.P2.Sub(t.P0)
	toPoint := point.Sub(t.P0)

	dot00 := e2.Dot(e2)
	dot01 := e2.Dot(e1)
	dot02 := e2.Dot(toPoint)
	dot11 := e1.Dot(e1)
	dot12 := e1.Dot(toPoint)

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot00*dot12 - dot01*dot02) * invDenom
	v := (dot11*dot02 - dot01*dot12) * invDenom
	return u, v
}

func (t Triangle) String() string {
	return fmt.Sprintf("triangle: %v, %v, %v", t.P0, t.P1, t.P2)
}
