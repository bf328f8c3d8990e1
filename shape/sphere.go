// Package shape provides the primitive shapes scenes are assembled from.
// Every shape satisfies bvh.Accelerated so it can be indexed directly or
// nested inside an aggregate.
package shape

import (
	"fmt"

	"github.com/Ambroisie/beevee/bvh"
	"github.com/Ambroisie/beevee/geom"
	"github.com/Ambroisie/beevee/types"
	"github.com/chewxy/math32"
)

// Sphere is defined by its center and radius. The radius must be positive.
type Sphere struct {
	Center types.Vec3
	Radius float32
}

// NewSphere creates a sphere at center with the given radius.
func NewSphere(center types.Vec3, radius float32) Sphere {
	return Sphere{Center: center, Radius: radius}
}

// Bounds returns the tightest box around the sphere.
func (s Sphere) Bounds() geom.AABB {
	d := types.XYZ(s.Radius, s.Radius, s.Radius)
	return geom.NewAABB(s.Center.Sub(d), s.Center.Add(d))
}

// Centroid returns the sphere center.
func (s Sphere) Centroid() types.Vec3 {
	return s.Center
}

// Intersect returns the distance to the closest point where r meets the
// sphere surface. Rays starting inside the sphere hit the far side.
func (s Sphere) Intersect(r *geom.Ray) (float32, bool) {
	toCenter := s.Center.Sub(r.Origin)
	tca := r.Dir.Dot(toCenter)
	d2 := toCenter.Dot(toCenter) - tca*tca
	r2 := s.Radius * s.Radius

	if d2 > r2 {
		return 0, false
	}

	thc := math32.Sqrt(r2 - d2)
	t0, t1 := tca-thc, tca+thc
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	if t0 < 0 {
		t0 = t1
	}
	if t0 < 0 {
		return 0, false
	}
	return t0, true
}

// IntersectPrimitive implements bvh.Accelerated; a sphere is its own
// primitive.
func (s Sphere) IntersectPrimitive(r *geom.Ray) (bvh.Intersected, float32, bool) {
	dist, ok := s.Intersect(r)
	if !ok {
		return nil, 0, false
	}
	return s, dist, true
}

// Normal returns the outwards unit normal at a point on the sphere surface.
func (s Sphere) Normal(point types.Vec3) types.Vec3 {
	return point.Sub(s.Center).Normalize()
}

func (s Sphere) String() string {
	return fmt.Sprintf("sphere: center %v, radius %f", s.Center, s.Radius)
}
