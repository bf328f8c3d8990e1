package bvh

import (
	"github.com/Ambroisie/beevee/geom"
	"github.com/chewxy/math32"
)

// Intersected is the capability to test a ray against an object's exact
// geometry, as opposed to its bounding box. Leaf scans during Walk rely on
// it.
type Intersected interface {
	geom.Bounded

	// Intersect reports the euclidean distance along r to the closest
	// hit, if any. Hits behind the ray origin are misses.
	Intersect(r *geom.Ray) (float32, bool)
}

// Accelerated is the capability to resolve a ray hit down to the innermost
// primitive that produced it. Aggregates, such as a mesh carrying its own
// nested tree, report the nested primitive; simple shapes report
// themselves.
type Accelerated interface {
	Intersected

	// IntersectPrimitive reports the innermost primitive hit by r and the
	// distance to it.
	IntersectPrimitive(r *geom.Ray) (Intersected, float32, bool)
}

// Walk returns a pointer to the object hit first along r together with the
// hit distance. It descends the tree front to back, skipping every subtree
// whose box either misses the ray or lies at least as far as the best hit
// already found, and linearly scanning leaf ranges. A tree built over no
// objects, or a ray that hits nothing, reports a miss.
//
// Walk is a free function rather than a method so that trees can be built
// over anything Bounded while queries demand the stronger Intersected
// capability.
func Walk[T Intersected](t *Tree[T], r *geom.Ray) (*T, float32, bool) {
	best := math32.Inf(1)
	var bestObj *T

	type frame struct {
		node int32
		dist float32
	}
	stack := make([]frame, 0, 64)
	if dist, ok := r.IntersectAABB(t.nodes[0].bounds); ok {
		stack = append(stack, frame{node: 0, dist: dist})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.dist >= best {
			// The subtree was pushed before a closer hit was found.
			continue
		}

		n := &t.nodes[f.node]
		if n.isLeaf() {
			for i := n.begin; i < n.end; i++ {
				if dist, ok := t.objects[i].Intersect(r); ok && dist < best {
					best = dist
					bestObj = &t.objects[i]
				}
			}
			continue
		}

		nearIdx, farIdx := n.left, n.right
		nearDist, nearOk := r.IntersectAABB(t.nodes[nearIdx].bounds)
		farDist, farOk := r.IntersectAABB(t.nodes[farIdx].bounds)
		if farOk && (!nearOk || farDist < nearDist) {
			nearIdx, farIdx = farIdx, nearIdx
			nearDist, farDist = farDist, nearDist
			nearOk, farOk = farOk, nearOk
		}

		// Push the far child first so the near one is visited first.
		if farOk && farDist < best {
			stack = append(stack, frame{node: farIdx, dist: farDist})
		}
		if nearOk && nearDist < best {
			stack = append(stack, frame{node: nearIdx, dist: nearDist})
		}
	}

	if bestObj == nil {
		return nil, 0, false
	}
	return bestObj, best, true
}
