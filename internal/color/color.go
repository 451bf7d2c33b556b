// Package color renders 24-bit terminal colors for the CLI: one stable hue
// per user and one color per task urgency severity.
package color

import (
	"fmt"
	"io"
	"os"

	"github.com/eventdeck/eventdeck-client/internal/domain"
)

// RGB is a 24-bit color.
type RGB struct {
	R, G, B uint8
}

// Hex renders c as "#RRGGBB".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

var severityColors = map[domain.Severity]RGB{
	domain.SeverityDanger:    {R: 0xDC, G: 0x35, B: 0x45},
	domain.SeverityWarn:      {R: 0xFF, G: 0xC1, B: 0x07},
	domain.SeverityInfo:      {R: 0x0D, G: 0xCA, B: 0xF0},
	domain.SeveritySecondary: {R: 0x6C, G: 0x75, B: 0x7D},
}

// ForSeverity returns the color of an urgency severity. Unknown values get
// the secondary color.
func ForSeverity(s domain.Severity) RGB {
	if c, ok := severityColors[s]; ok {
		return c
	}
	return severityColors[domain.SeveritySecondary]
}

// ForUser returns a stable color for userID, so a user reads the same
// across every listing.
func ForUser(userID domain.EntityID) RGB {
	h := 0
	for _, c := range userID.String() {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}

	// S=0.4, L=0.65 stays readable on dark and light backgrounds.
	r, g, b := hslToRGB(float64(h%360), 0.4, 0.65)
	return RGB{R: r, G: g, B: b}
}

// Painter wraps text in escape sequences when enabled.
type Painter struct {
	enabled bool
}

// NewPainter enables color when w is a terminal and NO_COLOR is unset.
func NewPainter(w io.Writer) Painter {
	if _, off := os.LookupEnv("NO_COLOR"); off {
		return Painter{}
	}
	f, ok := w.(*os.File)
	if !ok {
		return Painter{}
	}
	info, err := f.Stat()
	if err != nil {
		return Painter{}
	}
	return Painter{enabled: info.Mode()&os.ModeCharDevice != 0}
}

// Enabled reports whether Paint emits escape sequences.
func (p Painter) Enabled() bool {
	return p.enabled
}

// Paint colors text with c, or returns it unchanged when disabled.
func (p Painter) Paint(c RGB, text string) string {
	if !p.enabled || text == "" {
		return text
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", c.R, c.G, c.B, text)
}

// hslToRGB converts HSL color space to RGB.
// h: hue (0-360), s: saturation (0-1), l: lightness (0-1)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h /= 360.0

	var r1, g1, b1 float64
	if s == 0 {
		r1, g1, b1 = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q

		r1 = hueToRGB(p, q, h+1.0/3.0)
		g1 = hueToRGB(p, q, h)
		b1 = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(r1 * 255), uint8(g1 * 255), uint8(b1 * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
