package tui

import (
	"math"

	"whackamole/internal/targets"
)

const (
	statusRows = 2 // status line plus a spacer
	bannerRows = 4
	minBoxW    = 3
	minBoxH    = 3
)

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// Layout places the cells as a near-square grid under the status line.
type Layout struct {
	cols, rows int
	boxes      []rect // boxes[i] belongs to cell i+1
}

func NewLayout(cells, width, height int) Layout {
	if cells < 1 {
		cells = 1
	}
	cols := int(math.Ceil(math.Sqrt(float64(cells))))
	rows := (cells + cols - 1) / cols

	boxW := max(width/cols, minBoxW)
	boxH := max((height-statusRows-bannerRows)/rows, minBoxH)

	l := Layout{cols: cols, rows: rows, boxes: make([]rect, cells)}
	for i := range l.boxes {
		col, row := i%cols, i/cols
		l.boxes[i] = rect{x: col * boxW, y: statusRows + row*boxH, w: boxW, h: boxH}
	}
	return l
}

// CellAt returns the cell under screen position x, y or targets.None.
func (l Layout) CellAt(x, y int) int {
	for i, b := range l.boxes {
		if b.contains(x, y) {
			return i + 1
		}
	}
	return targets.None
}

func (l Layout) box(id int) (rect, bool) {
	if id < 1 || id > len(l.boxes) {
		return rect{}, false
	}
	return l.boxes[id-1], true
}

// bottom is the first row below the grid.
func (l Layout) bottom() int {
	if len(l.boxes) == 0 {
		return statusRows
	}
	last := l.boxes[len(l.boxes)-1]
	return last.y + last.h
}
