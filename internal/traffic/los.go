package traffic

import "github.com/talgya/citycore/internal/roads"

// Distribution counts cells per LOS grade across the whole city, as returned
// by UpdateLOSFromGrid.
type Distribution struct {
	Counts [6]int // indexed by LOSGrade
}

// SegmentGrade is the averaged LOS grade for one road segment.
type SegmentGrade struct {
	SegmentID roads.SegmentID
	AvgVC     float64
	Grade     LOSGrade
}

// UpdateLOSFromGrid recomputes the city-wide grade distribution and
// per-segment grades from the current traffic density and road network. It
// reads road type per rasterised cell via roadTypeAt, keeping this package
// free of a worldgrid import. Runs on the TrafficLOSInterval cadence (every
// 10 ticks per spec).
func UpdateLOSFromGrid(density *Grid, roadTypeAt func(x, y int) (rt uint8, capacity float64), net *roads.Network) (Distribution, []SegmentGrade) {
	var dist Distribution
	grades := make([]SegmentGrade, 0, len(net.Segments))

	// Sort segment IDs for deterministic iteration.
	ids := make([]roads.SegmentID, 0, len(net.Segments))
	for id := range net.Segments {
		ids = append(ids, id)
	}
	sortSegmentIDs(ids)

	for _, id := range ids {
		seg := net.Segments[id]
		var sum float64
		var n int
		for _, cell := range seg.RasterizedCells {
			_, capacity := roadTypeAt(cell.X, cell.Y)
			vc := 0.0
			if capacity > 0 {
				vc = float64(density.Get(cell.X, cell.Y)) / capacity
			}
			sum += vc
			n++
			dist.Counts[GradeFromVC(vc)]++
		}
		if n == 0 {
			continue
		}
		avg := sum / float64(n)
		grades = append(grades, SegmentGrade{SegmentID: id, AvgVC: avg, Grade: GradeFromVC(avg)})
	}

	return dist, grades
}

func sortSegmentIDs(ids []roads.SegmentID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// Roundabout is a registered ring site: its ring cells yield on entry,
// proportional to current ring density.
type Roundabout struct {
	ID        uint32
	RingCells []roads.Node
}

// Registry holds all registered roundabout sites.
type Registry struct {
	Sites []Roundabout
}

// RingCellSet returns a lookup set of all ring cells across every registered
// roundabout, for use by csrgraph.Graph.ApplyRoundaboutWeights.
func (r *Registry) RingCellSet() map[roads.Node]bool {
	set := make(map[roads.Node]bool)
	for _, s := range r.Sites {
		for _, c := range s.RingCells {
			set[c] = true
		}
	}
	return set
}
