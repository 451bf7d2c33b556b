package color

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventdeck/eventdeck-client/internal/domain"
)

func TestForUser_Stable(t *testing.T) {
	a := ForUser("42")
	assert.Equal(t, a, ForUser(domain.NewEntityID(42)))
	assert.NotEqual(t, a, ForUser("43"))
	assert.Regexp(t, `^#[0-9A-F]{6}$`, a.Hex())
}

func TestForSeverity(t *testing.T) {
	tests := []struct {
		sev  domain.Severity
		want string
	}{
		{domain.SeverityDanger, "#DC3545"},
		{domain.SeverityWarn, "#FFC107"},
		{domain.SeverityInfo, "#0DCAF0"},
		{domain.SeveritySecondary, "#6C757D"},
		{"bogus", "#6C757D"},
	}
	for _, tt := range tests {
		t.Run(string(tt.sev), func(t *testing.T) {
			assert.Equal(t, tt.want, ForSeverity(tt.sev).Hex())
		})
	}
}

func TestHSLToRGB_Gray(t *testing.T) {
	r, g, b := hslToRGB(120, 0, 0.5)
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}

func TestPainter(t *testing.T) {
	off := NewPainter(&bytes.Buffer{})
	assert.False(t, off.Enabled())
	assert.Equal(t, "alice", off.Paint(RGB{R: 1}, "alice"))

	on := Painter{enabled: true}
	assert.Equal(t, "\x1b[38;2;1;2;3malice\x1b[0m", on.Paint(RGB{R: 1, G: 2, B: 3}, "alice"))
	assert.Equal(t, "", on.Paint(RGB{R: 1}, ""))
}
