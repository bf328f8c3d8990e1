package geom

import (
	"fmt"

	"github.com/Ambroisie/beevee/types"
	"github.com/chewxy/math32"
)

// Ray is a half line starting at Origin and heading along the unit vector
// Dir. InvDir caches the componentwise reciprocal of Dir; axis-aligned rays
// carry infinite components there, which the slab test relies on instead of
// guarding divisions.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3
	InvDir types.Vec3
}

// NewRay creates a ray from an origin and a direction. The direction is
// normalized so reported hit distances are euclidean, and must not be the
// zero vector.
func NewRay(origin, dir types.Vec3) *Ray {
	d := dir.Normalize()
	return &Ray{
		Origin: origin,
		Dir:    d,
		InvDir: types.Vec3{1 / d[0], 1 / d[1], 1 / d[2]},
	}
}

// IntersectAABB performs the slab test between the ray and box. Per axis
// the two slab distances are ordered by direction sign, not by magnitude;
// that keeps the interval arithmetic correct when InvDir components are
// infinite. Reports the distance to the point where the ray enters the box,
// or to the exit point when the origin is inside. Boxes entirely behind the
// origin report a miss.
func (r *Ray) IntersectAABB(box AABB) (float32, bool) {
	tMin := math32.Inf(-1)
	tMax := math32.Inf(1)

	for axis := 0; axis < 3; axis++ {
		lo := (box.Min[axis] - r.Origin[axis]) * r.InvDir[axis]
		hi := (box.Max[axis] - r.Origin[axis]) * r.InvDir[axis]
		if r.Dir[axis] < 0 {
			lo, hi = hi, lo
		}

		if lo > tMax || hi < tMin {
			return 0, false
		}
		if lo > tMin {
			tMin = lo
		}
		if hi < tMax {
			tMax = hi
		}
	}

	if tMax < 0 {
		// The whole box lies behind the origin.
		return 0, false
	}
	if tMin < 0 {
		// The origin is inside the box; report the exit distance.
		return tMax, true
	}
	return tMin, true
}

func (r *Ray) String() string {
	return fmt.Sprintf("origin: %v, dir: %v", r.Origin, r.Dir)
}
