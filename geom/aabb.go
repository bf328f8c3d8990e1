// Package geom provides the axis-aligned geometry kit the spatial index is
// built from: bounding boxes, the Bounded capability and rays.
package geom

import (
	"fmt"

	"github.com/Ambroisie/beevee/types"
	"github.com/chewxy/math32"
)

// AABB is an axis-aligned box spanning the volume between its Min and Max
// corners.
type AABB struct {
	Min types.Vec3
	Max types.Vec3
}

// EmptyAABB returns the empty box: Min at +infinity, Max at -infinity on
// every axis. It is the identity element for Union and the seed value for
// bound folds.
func EmptyAABB() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min: types.Vec3{inf, inf, inf},
		Max: types.Vec3{-inf, -inf, -inf},
	}
}

// NewAABB creates a box from its two corners. Corners must satisfy
// min <= max componentwise; inverted corners are a caller bug and panic.
// Use EmptyAABB for the empty box, or grow a box around an unordered point
// set instead.
func NewAABB(min, max types.Vec3) AABB {
	if min[0] > max[0] || min[1] > max[1] || min[2] > max[2] {
		panic(fmt.Sprintf("geom: inverted AABB corners min=%v max=%v", min, max))
	}
	return AABB{Min: min, Max: max}
}

// Grow returns a copy of the box expanded to include p.
func (b AABB) Grow(p types.Vec3) AABB {
	b.GrowMut(p)
	return b
}

// GrowMut expands the box in place to include p.
func (b *AABB) GrowMut(p types.Vec3) {
	b.Min = types.MinVec3(b.Min, p)
	b.Max = types.MaxVec3(b.Max, p)
}

// Union returns the smallest box enclosing both b and other.
func (b AABB) Union(other AABB) AABB {
	b.UnionMut(other)
	return b
}

// UnionMut expands the box in place to enclose other. The empty box is the
// identity: unioning with it leaves b untouched.
func (b *AABB) UnionMut(other AABB) {
	b.Min = types.MinVec3(b.Min, other.Min)
	b.Max = types.MaxVec3(b.Max, other.Max)
}

// Contains reports whether p lies inside the closed box.
func (b AABB) Contains(p types.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Diagonal returns the extent of the box on each axis.
func (b AABB) Diagonal() types.Vec3 {
	return b.Max.Sub(b.Min)
}

// IsEmpty reports whether the box encloses no volume at all, i.e. its
// corners are inverted on at least one axis.
func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Surface returns the total surface area of the box.
func (b AABB) Surface() float32 {
	d := b.Diagonal()
	return 2 * (d[0]*d[1] + d[0]*d[2] + d[1]*d[2])
}

// Volume returns the enclosed volume.
func (b AABB) Volume() float32 {
	d := b.Diagonal()
	return d[0] * d[1] * d[2]
}

// LargestAxis returns the axis along which the box extends the most. Ties
// resolve to X over Y and Z, and to Y over Z.
func (b AABB) LargestAxis() types.Axis {
	d := b.Diagonal()
	axis := types.XAxis
	if d[types.YAxis] > d[axis] {
		axis = types.YAxis
	}
	if d[types.ZAxis] > d[axis] {
		axis = types.ZAxis
	}
	return axis
}

// DistanceToPoint returns the euclidean distance between p and the closest
// point on the box surface, or 0 when p is inside the box.
func (b AABB) DistanceToPoint(p types.Vec3) float32 {
	var sum float32
	for axis := 0; axis < 3; axis++ {
		d := math32.Max(math32.Max(b.Min[axis]-p[axis], 0), p[axis]-b.Max[axis])
		sum += d * d
	}
	return math32.Sqrt(sum)
}

// Bounds makes a box its own bound.
func (b AABB) Bounds() AABB {
	return b
}

// Centroid returns the center point of the box.
func (b AABB) Centroid() types.Vec3 {
	return b.Min.Add(b.Diagonal().Mul(0.5))
}

func (b AABB) String() string {
	return fmt.Sprintf("min: %v, max: %v", b.Min, b.Max)
}
