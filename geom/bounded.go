package geom

import "github.com/Ambroisie/beevee/types"

// Bounded is the capability every object placed in a spatial index must
// provide: an enclosing box and a representative point used as the
// partitioning key. It is the only coupling between the index and concrete
// geometry; an AABB is trivially its own bound, and a single point is the
// degenerate box NewAABB(p, p).
type Bounded interface {
	// Bounds returns a box enclosing the whole object.
	Bounds() AABB

	// Centroid returns the point the object is ordered by when building
	// spatial partitions. It must lie inside Bounds and must be finite.
	Centroid() types.Vec3
}
