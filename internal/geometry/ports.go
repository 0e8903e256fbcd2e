package geometry

// Node footprint and port layout. Offsets are relative to the node origin
// (top-left of the icon footprint) and index the four ports in the fixed
// order north, south, west, east.
const (
	FootprintWidth  = 125.0
	FootprintHeight = 67.5

	// PortDiameter is the size of the circular port marker. A port's
	// position is the top-left of its marker's bounding square.
	PortDiameter = 10.0

	PortCount = 4
)

var portOffsets = [PortCount]Point{
	{X: 57.5, Y: -10},  // north
	{X: 57.5, Y: 67.5}, // south
	{X: -10, Y: 30},    // west
	{X: 125, Y: 30},    // east
}

// PortOffset returns the fixed offset of port index i. ok is false when i is
// outside 0..3.
func PortOffset(i int) (offset Point, ok bool) {
	if i < 0 || i >= PortCount {
		return Point{}, false
	}
	return portOffsets[i], true
}

// PortPosition returns the absolute position of port i on a node whose origin
// is at origin.
func PortPosition(origin Point, i int) (Point, bool) {
	off, ok := PortOffset(i)
	if !ok {
		return Point{}, false
	}
	return origin.Add(off), true
}

// PortHit reports whether p falls on the circular marker of a port at pos.
func PortHit(pos, p Point) bool {
	r := PortDiameter / 2
	center := pos.Add(Point{X: r, Y: r})
	return Distance(center, p) <= r
}

// Footprint returns the body rectangle of a node at origin.
func Footprint(origin Point) Rect {
	return RectAt(origin, FootprintWidth, FootprintHeight)
}
