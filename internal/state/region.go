package state

// SpawnRegion is the area new elements are dropped into.
type SpawnRegion struct {
	X, Y          float64
	Width, Height float64
}

// Contains reports whether (x, y) lies inside the region, edges included.
func (r SpawnRegion) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Random picks a point using rnd, which must return values in [0, 1).
func (r SpawnRegion) Random(rnd func() float64) (x, y float64) {
	return r.X + rnd()*r.Width, r.Y + rnd()*r.Height
}
