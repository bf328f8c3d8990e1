// Package bvh implements a bounding volume hierarchy: a binary tree of
// axis-aligned boxes built over arbitrary bounded objects with the surface
// area heuristic, and queried for the nearest object hit by a ray in
// sublinear time.
//
// Construction reorders the object slice it is given and the resulting tree
// retains that exact slice, so a tree can never be paired with the wrong
// object ordering. Once built, a tree is immutable; any number of goroutines
// may call Walk, IsSound or VisitNodes concurrently. Construction itself
// must complete before the first query and must not run concurrently with
// anything touching the same slice.
package bvh

import (
	"fmt"
	"time"

	"github.com/Ambroisie/beevee/geom"
	"github.com/Ambroisie/beevee/log"
)

// DefaultMaxCapacity is the leaf capacity used by Build.
const DefaultMaxCapacity = 32

// node is a single arena slot. Child links are arena indices; a negative
// left link marks a leaf. [begin, end) indexes the tree's object slice and,
// for internal nodes, spans both children's ranges contiguously.
type node struct {
	bounds geom.AABB
	begin  int32
	end    int32
	left   int32
	right  int32
}

func (n *node) isLeaf() bool {
	return n.left < 0
}

// Tree is a bounding volume hierarchy over objects of type T. The zero
// value is not usable; trees are created with Build or WithMaxCapacity.
type Tree[T geom.Bounded] struct {
	nodes   []node
	objects []T
}

// Build constructs a tree over objects using the default leaf capacity.
// The slice is reordered in place and retained by the returned tree.
func Build[T geom.Bounded](objects []T) (*Tree[T], error) {
	return WithMaxCapacity(objects, DefaultMaxCapacity)
}

// WithMaxCapacity constructs a tree whose leaves hold at most maxCapacity
// objects each, except where the cost model decides a larger leaf is
// cheaper than any split. The slice is reordered in place and retained by
// the returned tree; an empty slice produces a valid tree whose queries
// always miss.
//
// Objects whose centroid carries a NaN coordinate cannot be ordered by the
// heuristic and are rejected with an error before any reordering happens.
func WithMaxCapacity[T geom.Bounded](objects []T, maxCapacity int) (*Tree[T], error) {
	if maxCapacity < 1 {
		return nil, fmt.Errorf("bvh: max leaf capacity must be at least 1; got %d", maxCapacity)
	}
	for i, obj := range objects {
		if obj.Centroid().HasNaN() {
			return nil, fmt.Errorf("bvh: centroid of object %d contains NaN", i)
		}
	}

	b := &builder[T]{
		objects:     objects,
		maxCapacity: maxCapacity,
		nodes:       make([]node, 0, 2*len(objects)/maxCapacity+1),
		logger:      log.New("bvh"),
	}

	start := time.Now()
	b.buildRange(0, int32(len(objects)))
	tree := &Tree[T]{nodes: b.nodes, objects: objects}

	st := tree.Stats()
	b.logger.Debugf(
		"built tree for %d objects in %d ms (nodes: %d, leaves: %d, max depth: %d)",
		len(objects), time.Since(start).Nanoseconds()/1e6,
		st.Nodes, st.Leaves, st.MaxDepth,
	)
	return tree, nil
}

type builder[T geom.Bounded] struct {
	objects     []T
	maxCapacity int
	nodes       []node
	logger      log.Logger
}

// buildRange recursively partitions objects[begin:end) and returns the
// arena index of the subtree root.
func (b *builder[T]) buildRange(begin, end int32) int32 {
	bounds := geom.EmptyAABB()
	for i := begin; i < end; i++ {
		bounds.UnionMut(b.objects[i].Bounds())
	}

	n := end - begin
	if int(n) <= b.maxCapacity {
		return b.emit(node{bounds: bounds, begin: begin, end: end, left: -1, right: -1})
	}

	axis, split, cost := b.scoreSplits(begin, end, bounds.Surface())
	if cost >= float32(n) {
		// No split beats scanning this range linearly.
		return b.emit(node{bounds: bounds, begin: begin, end: end, left: -1, right: -1})
	}
	if split == 0 || split >= n-1 {
		// A split leaving one side empty degenerates into unbounded
		// recursion; fall back to the range midpoint.
		split = n / 2
	}

	pivot := begin + split
	selectByCentroid(b.objects[begin:end], int(split), axis)

	idx := b.emit(node{bounds: bounds, begin: begin, end: end, left: -1, right: -1})
	left := b.buildRange(begin, pivot)
	right := b.buildRange(pivot, end)
	b.nodes[idx].left = left
	b.nodes[idx].right = right
	return idx
}

func (b *builder[T]) emit(n node) int32 {
	b.nodes = append(b.nodes, n)
	return int32(len(b.nodes) - 1)
}

// Bounds returns the box enclosing every indexed object; it is the empty
// box for a tree over no objects.
func (t *Tree[T]) Bounds() geom.AABB {
	return t.nodes[0].bounds
}

// Len returns the number of indexed objects.
func (t *Tree[T]) Len() int {
	return len(t.objects)
}

// Objects returns the object slice in index order. It is the same backing
// array the tree was built from; mutating it invalidates the tree.
func (t *Tree[T]) Objects() []T {
	return t.objects
}

// IsSound verifies the structural invariants of the tree: ordered ranges,
// leaf bounds that already enclose every object in their range, and
// internal bounds that equal the union of their children's bounds over
// contiguous child ranges. It is a diagnostic, not a hot-path call.
func (t *Tree[T]) IsSound() bool {
	return t.soundNode(0)
}

func (t *Tree[T]) soundNode(idx int32) bool {
	n := &t.nodes[idx]
	if n.begin > n.end {
		return false
	}
	if n.isLeaf() {
		for i := n.begin; i < n.end; i++ {
			if n.bounds.Union(t.objects[i].Bounds()) != n.bounds {
				return false
			}
		}
		return true
	}

	left, right := &t.nodes[n.left], &t.nodes[n.right]
	if left.begin != n.begin || left.end != right.begin || right.end != n.end {
		return false
	}
	if left.bounds.Union(right.bounds) != n.bounds {
		return false
	}
	return t.soundNode(n.left) && t.soundNode(n.right)
}

// NodeInfo describes one tree node to VisitNodes callbacks.
type NodeInfo struct {
	Bounds geom.AABB
	Depth  int
	Leaf   bool
	Count  int
}

// VisitNodes calls visit for every node in depth-first preorder. The root
// has depth 1.
func (t *Tree[T]) VisitNodes(visit func(NodeInfo)) {
	t.visitNode(0, 1, visit)
}

func (t *Tree[T]) visitNode(idx int32, depth int, visit func(NodeInfo)) {
	n := &t.nodes[idx]
	visit(NodeInfo{Bounds: n.bounds, Depth: depth, Leaf: n.isLeaf(), Count: int(n.end - n.begin)})
	if !n.isLeaf() {
		t.visitNode(n.left, depth+1, visit)
		t.visitNode(n.right, depth+1, visit)
	}
}

// Stats describes the shape of a built tree.
type Stats struct {
	Nodes    int
	Leaves   int
	MaxDepth int
	MaxLeaf  int
	Objects  int
}

// Stats walks the tree and tallies its shape.
func (t *Tree[T]) Stats() Stats {
	st := Stats{Objects: len(t.objects)}
	t.VisitNodes(func(info NodeInfo) {
		st.Nodes++
		if info.Depth > st.MaxDepth {
			st.MaxDepth = info.Depth
		}
		if info.Leaf {
			st.Leaves++
			if info.Count > st.MaxLeaf {
				st.MaxLeaf = info.Count
			}
		}
	})
	return st
}
