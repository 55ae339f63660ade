// Package render draws scene geometry into a terminal frame: a braille dot
// canvas for the 3D elements over a glyph layer for the rain overlay.
package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Braille dot positions (col, row) -> bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// Canvas is a grid of braille cells, 2x4 dots each. Every cell keeps the
// colour of its nearest dot.
type Canvas struct {
	cols, rows int
	bits       []uint8
	color      []colorful.Color
	depth      []float64
}

func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize changes the cell grid and clears it.
func (c *Canvas) Resize(cols, rows int) {
	cols, rows = max(cols, 0), max(rows, 0)
	if cols != c.cols || rows != c.rows {
		c.cols, c.rows = cols, rows
		n := cols * rows
		c.bits = make([]uint8, n)
		c.color = make([]colorful.Color, n)
		c.depth = make([]float64, n)
	}
	c.Clear()
}

func (c *Canvas) Clear() {
	clear(c.bits)
	for i := range c.depth {
		c.depth[i] = math.Inf(1)
	}
}

// Cells is the grid size in cells.
func (c *Canvas) Cells() (cols, rows int) { return c.cols, c.rows }

// Dots is the grid size in dots.
func (c *Canvas) Dots() (w, h int) { return c.cols * 2, c.rows * 4 }

// Set lights dot (x, y). The cell takes col if depth is the nearest so far.
func (c *Canvas) Set(x, y int, col colorful.Color, depth float64) {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return
	}
	i := (y/4)*c.cols + x/2
	c.bits[i] |= 1 << brailleBits[x%2][y%4]
	if depth < c.depth[i] {
		c.depth[i] = depth
		c.color[i] = col
	}
}

// Cell returns the braille rune and colour at (col, row). Empty cells
// report ok == false.
func (c *Canvas) Cell(col, row int) (r rune, clr colorful.Color, ok bool) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return 0, colorful.Color{}, false
	}
	i := row*c.cols + col
	if c.bits[i] == 0 {
		return 0, colorful.Color{}, false
	}
	return rune(0x2800 + int(c.bits[i])), c.color[i], true
}
