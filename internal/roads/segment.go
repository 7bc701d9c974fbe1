// Package roads owns road segments and the road network graph. Segment
// rasterisation is the single source of truth for which grid cells are
// Road; the grid is a derived view (see worldgrid.Grid).
// See design doc Section 4.2.
package roads

import (
	"math"
	"sort"

	"github.com/talgya/citycore/internal/worldgrid"
)

// SegmentID stably identifies a road segment across its lifetime.
type SegmentID uint32

// Node is a point on the road graph, identified by grid coordinate.
type Node struct {
	X, Y int
}

// Less orders nodes by (y, x), matching the CSR build order.
func (n Node) Less(o Node) bool {
	if n.Y != o.Y {
		return n.Y < o.Y
	}
	return n.X < o.X
}

// Point is a 2D point in world space (control points / rasterised samples).
type Point struct{ X, Y float64 }

// Direction is the traversal direction allowed on a one-way segment.
type Direction uint8

const (
	Forward Direction = iota
	Reverse
)

// Segment is a cubic-Bezier road segment with four control points, a cached
// arc length, and the sorted list of grid cells it rasterises to.
type Segment struct {
	ID        SegmentID
	StartNode Node
	EndNode   Node
	P0, P1, P2, P3 Point
	RoadType  worldgrid.RoadType

	ArcLength       float64
	RasterizedCells []Node // sorted by (y, x)
}

// rasterSteps controls the parameter resolution used when walking the curve.
// Higher values produce finer-grained cell coverage at higher CPU cost.
const rasterSteps = 256

// bezierPoint evaluates the cubic Bezier curve at parameter t in [0,1].
func bezierPoint(p0, p1, p2, p3 Point, t float64) Point {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// NewStraight builds a straight-line segment (all control points collinear)
// between two grid nodes, matching the `PlaceRoadLine` action shape.
func NewStraight(id SegmentID, start, end Node, rt worldgrid.RoadType) *Segment {
	p0 := Point{float64(start.X), float64(start.Y)}
	p3 := Point{float64(end.X), float64(end.Y)}
	p1 := Point{p0.X + (p3.X-p0.X)/3, p0.Y + (p3.Y-p0.Y)/3}
	p2 := Point{p0.X + 2*(p3.X-p0.X)/3, p0.Y + 2*(p3.Y-p0.Y)/3}
	s := &Segment{
		ID: id, StartNode: start, EndNode: end,
		P0: p0, P1: p1, P2: p2, P3: p3,
		RoadType: rt,
	}
	s.Rasterize()
	return s
}

// NewSegment builds a segment directly from its control points, used to
// reconstruct a curve loaded from a save file. The caller is responsible
// for re-adding it to a Network, which rasterises and assigns it a fresh
// ID.
func NewSegment(id SegmentID, start, end Node, p0, p1, p2, p3 Point, rt worldgrid.RoadType) *Segment {
	return &Segment{
		ID: id, StartNode: start, EndNode: end,
		P0: p0, P1: p1, P2: p2, P3: p3,
		RoadType: rt,
	}
}

// Rasterize walks the Bezier curve at small parameter increments, recording
// every distinct grid cell touched, in sorted (y,x) order, and computes the
// cached arc length via the same sampling pass.
func (s *Segment) Rasterize() {
	seen := make(map[Node]struct{}, rasterSteps/2)
	var arc float64
	prev := bezierPoint(s.P0, s.P1, s.P2, s.P3, 0)
	seen[Node{int(math.Round(prev.X)), int(math.Round(prev.Y))}] = struct{}{}

	for i := 1; i <= rasterSteps; i++ {
		t := float64(i) / float64(rasterSteps)
		cur := bezierPoint(s.P0, s.P1, s.P2, s.P3, t)
		arc += math.Hypot(cur.X-prev.X, cur.Y-prev.Y)
		seen[Node{int(math.Round(cur.X)), int(math.Round(cur.Y))}] = struct{}{}
		prev = cur
	}

	cells := make([]Node, 0, len(seen))
	for n := range seen {
		cells = append(cells, n)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })

	s.RasterizedCells = cells
	s.ArcLength = arc
}

// Length returns the cached arc length of the curve.
func (s *Segment) Length() float64 { return s.ArcLength }
