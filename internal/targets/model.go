package targets

// None is the active id reported when no cell is marked.
const None = 0

// Target is one clickable cell of the board.
type Target struct {
	ID     int  `json:"id"`
	Active bool `json:"active"`
}
