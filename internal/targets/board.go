package targets

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var ErrNoSuchCell = errors.New("no such cell")

// Board is the fixed set of target cells with ids 1..Size. At most one cell
// is active at a time. A Board is owned by a single goroutine.
type Board struct {
	size   int
	active int
}

func NewBoard(size int) *Board {
	if size < 1 {
		size = 1
	}
	return &Board{size: size}
}

func (b *Board) Size() int {
	return b.size
}

func (b *Board) Has(id int) bool {
	return id >= 1 && id <= b.size
}

// Active returns the id of the marked cell, or None.
func (b *Board) Active() int {
	return b.active
}

// Activate marks id as the only active cell.
func (b *Board) Activate(id int) error {
	if !b.Has(id) {
		return fmt.Errorf("activating cell %d: %w", id, ErrNoSuchCell)
	}
	b.active = id
	return nil
}

func (b *Board) Clear() {
	b.active = None
}

func (b *Board) Get(id int) (Target, bool) {
	if !b.Has(id) {
		return Target{}, false
	}
	return Target{ID: id, Active: id == b.active}, true
}

func (b *Board) List() []Target {
	list := make([]Target, 0, b.size)
	for id := 1; id <= b.size; id++ {
		list = append(list, Target{ID: id, Active: id == b.active})
	}
	return list
}

// Pick draws a cell id uniformly from the board. With excludeLast the draw
// leaves the last cell out (legacy mode); a
// single-cell board always yields that cell.
func (b *Board) Pick(r *rand.Rand, excludeLast bool) int {
	n := b.size
	if excludeLast && n > 1 {
		n--
	}
	return r.IntN(n) + 1
}
