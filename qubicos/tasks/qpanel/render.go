package qpanel

import (
	"fmt"
	"image/color"

	"qubic/hal"
	"qubic/internal/buildinfo"
	"qubic/qubicos/qsim"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	colorBG       = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	colorFG       = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	colorDim      = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	colorHeaderBG = color.RGBA{R: 0x18, G: 0x18, B: 0x18, A: 0xff}

	colorBar     = color.RGBA{R: 0x4a, G: 0xdf, B: 0x6a, A: 0xff}
	colorBarDim  = color.RGBA{R: 0x24, G: 0x24, B: 0x24, A: 0xff}
	colorQubit   = color.RGBA{R: 0x66, G: 0xaa, B: 0xff, A: 0xff}
	colorTarget  = color.RGBA{R: 0xff, G: 0xdd, B: 0x66, A: 0xff}
	colorControl = color.RGBA{R: 0xff, G: 0x88, B: 0x44, A: 0xff}
)

const (
	headerH = 16
	chartX  = 8
	chartY  = 28
	chartH  = 150
	slotW   = 19
	barW    = 15

	qubitRowY = chartY + chartH + 28
	qubitBarW = 48
	qubitBarH = 10

	statusY = 300
)

var hexDigits = "0123456789ABCDEF"

// fbCanvas adapts the framebuffer to the drivers.Displayer surface
// tinyfont draws on.
type fbCanvas struct {
	fb hal.Framebuffer
}

func (c *fbCanvas) Size() (x, y int16) {
	return int16(c.fb.Width()), int16(c.fb.Height())
}

func (c *fbCanvas) SetPixel(x, y int16, col color.RGBA) {
	if c.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := c.fb.Buffer()
	if buf == nil {
		return
	}
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= c.fb.Width() || iy < 0 || iy >= c.fb.Height() {
		return
	}
	pixel := hal.RGB565(col.R, col.G, col.B)
	off := iy*c.fb.StrideBytes() + ix*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (c *fbCanvas) Display() error { return c.fb.Present() }

func (c *fbCanvas) fill(x, y, w, h int, col color.RGBA) {
	if c.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := c.fb.Buffer()
	if buf == nil {
		return
	}
	fw, fh := c.fb.Width(), c.fb.Height()
	x0, y0 := clamp(x, 0, fw), clamp(y, 0, fh)
	x1, y1 := clamp(x+w, 0, fw), clamp(y+h, 0, fh)
	if x0 >= x1 || y0 >= y1 {
		return
	}
	pixel := hal.RGB565(col.R, col.G, col.B)
	lo, hi := byte(pixel), byte(pixel>>8)
	stride := c.fb.StrideBytes()
	for py := y0; py < y1; py++ {
		row := py * stride
		for px := x0; px < x1; px++ {
			off := row + px*2
			if off+1 >= len(buf) {
				continue
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (t *Task) draw() {
	c := &fbCanvas{fb: t.fb}
	font := &proggy.TinySZ8pt7b

	t.fb.ClearRGB(colorBG.R, colorBG.G, colorBG.B)

	// Header.
	c.fill(0, 0, t.fb.Width(), headerH, colorHeaderBG)
	tinyfont.WriteLine(c, font, 4, 11, "QUBIC "+buildinfo.Short(), colorFG)
	tinyfont.WriteLine(c, font, 180, 11, fmt.Sprintf("%d qubits", qsim.Qubits), colorDim)

	// Basis-state bars, scaled against the largest probability so the
	// dominant state always fills the chart.
	max := t.maxProb()
	for i := 0; i < qsim.States; i++ {
		x := chartX + i*slotW
		c.fill(x, chartY, barW, chartH, colorBarDim)
		if max > 0 {
			h := int(t.probs[i] / max * chartH)
			if h > 0 {
				c.fill(x, chartY+chartH-h, barW, h, colorBar)
			}
		}
		tinyfont.WriteLine(c, font, int16(x+4), chartY+chartH+12, string(hexDigits[i]), colorDim)
	}

	// Per-qubit P(1) row with target/control markers.
	for q := uint8(0); q < qsim.Qubits; q++ {
		x := chartX + int(q)*(qubitBarW+28)
		label := colorDim
		if q == t.target {
			label = colorTarget
		} else if q == t.control {
			label = colorControl
		}
		tinyfont.WriteLine(c, font, int16(x), qubitRowY+9, fmt.Sprintf("q%d", q), label)
		c.fill(x+16, qubitRowY, qubitBarW, qubitBarH, colorBarDim)
		w := int(t.probQubitOne(q) * qubitBarW)
		if w > 0 {
			c.fill(x+16, qubitRowY, w, qubitBarH, colorQubit)
		}
	}

	// Status + last measurement.
	tinyfont.WriteLine(c, font, chartX, statusY, t.status, colorFG)
	if t.hasLast {
		tinyfont.WriteLine(c, font, 180, statusY,
			fmt.Sprintf("last M q%d=%d", t.lastQubit, t.lastOutcome), colorDim)
	}

	_ = t.fb.Present()
}
