package types

// Axis selects one of the three spatial dimensions. Axis values index Vec3
// components directly. Whenever axes need to be ranked (e.g. picking the
// dominant extent of a box) ties resolve in X, Y, Z order.
type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

func (a Axis) String() string {
	switch a {
	case XAxis:
		return "X"
	case YAxis:
		return "Y"
	case ZAxis:
		return "Z"
	}
	return "unknown axis"
}
