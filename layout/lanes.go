package layout

import (
	"sort"
	"time"

	"github.com/warp/bentobox/generic"
)

// Span is anything that occupies [start, end) on the calendar.
type Span interface {
	Bounds() (start, end time.Time)
}

// Block is a positioned span. Overlapping spans share the column width:
// Lane is the zero-based slot and Lanes the number of slots in its cluster.
type Block[T Span] struct {
	Item     T
	Position Position
	Lane     int
	Lanes    int
}

// Column is one rendered day.
type Column[T Span] struct {
	Day    time.Time
	Blocks []Block[T]
}

// Malformed reports whether either bound of s is unreadable (zero).
func Malformed(s Span) bool {
	start, end := s.Bounds()
	return start.IsZero() || end.IsZero()
}

// Columns groups items by the day they start on and lays out each day.
// Days with no items are kept so a week view always has seven columns.
// Items with no readable start have no day; they go to the first column
// as degenerate blocks so they stay visible.
func Columns[T Span](period generic.Period, items []T) []Column[T] {
	days := period.Days()
	byDay := make(map[time.Time][]T, len(days))
	for _, it := range items {
		start, _ := it.Bounds()
		var d time.Time
		switch {
		case start.IsZero():
			if len(days) == 0 {
				continue
			}
			d = days[0]
		case period.Contains(start):
			d = generic.StartOfDay(start.In(period.Start.Location()))
		default:
			continue
		}
		byDay[d] = append(byDay[d], it)
	}

	cols := make([]Column[T], 0, len(days))
	for _, d := range days {
		cols = append(cols, Column[T]{Day: d, Blocks: Lanes(byDay[d])})
	}
	return cols
}

// Lanes positions items and assigns lanes so no two overlapping blocks
// share one. Items are ordered by start, then by longer duration first.
// Malformed items come first as single-lane Degenerate blocks.
func Lanes[T Span](items []T) []Block[T] {
	var degenerate, blocks []Block[T]
	for _, it := range items {
		if Malformed(it) {
			degenerate = append(degenerate, Block[T]{Item: it, Position: Degenerate, Lanes: 1})
			continue
		}
		s, e := it.Bounds()
		blocks = append(blocks, Block[T]{Item: it, Position: PositionOf(s, e)})
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		si, ei := blocks[i].Item.Bounds()
		sj, ej := blocks[j].Item.Bounds()
		if !si.Equal(sj) {
			return si.Before(sj)
		}
		return ei.After(ej)
	})

	var (
		cluster    []int       // indexes into blocks
		laneEnds   []time.Time // end of the last block placed in each lane
		clusterEnd time.Time
	)
	flush := func() {
		for _, idx := range cluster {
			blocks[idx].Lanes = len(laneEnds)
		}
		cluster = cluster[:0]
		laneEnds = laneEnds[:0]
	}

	for i := range blocks {
		start, end := blocks[i].Item.Bounds()
		if len(cluster) > 0 && !start.Before(clusterEnd) {
			flush()
		}
		lane := -1
		for l, le := range laneEnds {
			if !start.Before(le) {
				lane = l
				break
			}
		}
		if lane < 0 {
			lane = len(laneEnds)
			laneEnds = append(laneEnds, end)
		} else {
			laneEnds[lane] = end
		}
		blocks[i].Lane = lane
		cluster = append(cluster, i)
		if len(cluster) == 1 || end.After(clusterEnd) {
			clusterEnd = end
		}
	}
	flush()
	return append(degenerate, blocks...)
}
