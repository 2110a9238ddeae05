package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a Braille dot canvas of Width x Height cells, i.e.
// (2*Width) x (4*Height) addressable dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set turns on the dot at (x, y) in dot coordinates, y growing downwards.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Count returns the number of dots turned on.
func (c *Canvas) Count() int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			bits := r - brailleBlank
			for bits != 0 {
				n += int(bits & 1)
				bits >>= 1
			}
		}
	}
	return n
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Frame maps data coordinates onto a canvas, y up.
type Frame struct {
	MinX, MaxX, MinY, MaxY float64
	c                      *Canvas
}

// NewFrame pads degenerate ranges so a constant series still renders.
func NewFrame(c *Canvas, minX, maxX, minY, maxY float64) *Frame {
	if maxX <= minX {
		minX, maxX = minX-0.5, minX+0.5
	}
	if maxY <= minY {
		minY, maxY = minY-0.5, minY+0.5
	}
	return &Frame{MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY, c: c}
}

// Plot sets the dot nearest (x, y). Non-finite or out-of-frame points are
// dropped.
func (f *Frame) Plot(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return
	}
	if x < f.MinX || x > f.MaxX || y < f.MinY || y > f.MaxY {
		return
	}
	w := float64(f.c.Width*2 - 1)
	h := float64(f.c.Height*4 - 1)
	px := int(math.Round((x - f.MinX) / (f.MaxX - f.MinX) * w))
	py := int(math.Round((f.MaxY - y) / (f.MaxY - f.MinY) * h))
	f.c.Set(px, py)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
