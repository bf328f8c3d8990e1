package bvh

import (
	"sort"

	"github.com/Ambroisie/beevee/geom"
	"github.com/Ambroisie/beevee/types"
	"github.com/chewxy/math32"
)

// scoreSplits evaluates the surface area heuristic over objects[begin:end)
// for every candidate split on every axis. It returns the winning axis, the
// object count left of the winning split, and the winning cost. Ties keep
// the first candidate found, scanning axes in X, Y, Z order and split
// counts in ascending order.
//
// Costs are in units of expected intersection tests: a range of n objects
// scans linearly at cost n, so a returned cost of n or more means no split
// is worth making.
func (b *builder[T]) scoreSplits(begin, end int32, parentSurface float32) (types.Axis, int32, float32) {
	objects := b.objects[begin:end]
	n := len(objects)

	bestAxis := types.XAxis
	bestSplit := int32(n / 2)
	bestCost := math32.Inf(1)

	// leftSurf[k] holds the union surface of the first k+1 objects in the
	// current axis order; rightSurf[k] the union surface of the last k.
	leftSurf := make([]float32, n-1)
	rightSurf := make([]float32, n)

	for _, axis := range []types.Axis{types.XAxis, types.YAxis, types.ZAxis} {
		sort.Slice(objects, func(i, j int) bool {
			return objects[i].Centroid()[axis] < objects[j].Centroid()[axis]
		})

		leftBox := geom.EmptyAABB()
		rightBox := geom.EmptyAABB()
		for i := 0; i < n-1; i++ {
			leftBox.UnionMut(objects[i].Bounds())
			leftSurf[i] = leftBox.Surface()

			rightBox.UnionMut(objects[n-1-i].Bounds())
			rightSurf[i+1] = rightBox.Surface()
		}

		for leftCount := 1; leftCount < n; leftCount++ {
			rightCount := n - leftCount

			cost := 1/float32(b.maxCapacity) +
				(float32(leftCount)*leftSurf[leftCount-1]+
					float32(rightCount)*rightSurf[rightCount])/parentSurface

			if cost < bestCost {
				bestCost = cost
				bestAxis = axis
				bestSplit = int32(leftCount)
			}
		}
	}

	return bestAxis, bestSplit, bestCost
}

// selectByCentroid reorders objects in place so that the k smallest by
// centroid coordinate on axis occupy objects[:k] and the rest objects[k:],
// without fully sorting the range. Plain quickselect around Hoare
// partitioning; centroids were validated NaN-free before construction
// started, otherwise this ordering would be meaningless.
func selectByCentroid[T geom.Bounded](objects []T, k int, axis types.Axis) {
	lo, hi := 0, len(objects)-1
	for lo < hi {
		p := hoarePartition(objects, lo, hi, axis)
		if k <= p {
			hi = p
		} else {
			lo = p + 1
		}
	}
}

// hoarePartition partitions objects[lo..hi] around the centroid coordinate
// of the middle element and returns the boundary index p: every element of
// objects[lo..p] orders no higher than every element of objects[p+1..hi].
func hoarePartition[T geom.Bounded](objects []T, lo, hi int, axis types.Axis) int {
	pivot := objects[(lo+hi)/2].Centroid()[axis]
	i, j := lo-1, hi+1
	for {
		for {
			i++
			if objects[i].Centroid()[axis] >= pivot {
				break
			}
		}
		for {
			j--
			if objects[j].Centroid()[axis] <= pivot {
				break
			}
		}
		if i >= j {
			return j
		}
		objects[i], objects[j] = objects[j], objects[i]
	}
}
