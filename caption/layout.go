package caption

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const (
	DefaultFontSize = 0.2
	DefaultMaxWidth = 2.5
)

// Layout wraps caption text to a width in world units. Glyph widths come
// from a bitmap face scaled so that its line height equals FontSize.
type Layout struct {
	FontSize float32   `yaml:"font_size" toml:"font_size"`
	MaxWidth float32   `yaml:"max_width" toml:"max_width"`
	Face     font.Face `yaml:"-" toml:"-"`
}

func DefaultLayout() Layout {
	return Layout{FontSize: DefaultFontSize, MaxWidth: DefaultMaxWidth}
}

func (l Layout) face() font.Face {
	if l.Face != nil {
		return l.Face
	}
	return basicfont.Face7x13
}

// Width measures s in world units.
func (l Layout) Width(s string) float32 {
	face := l.face()
	fontSize := l.FontSize
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	px := font.MeasureString(face, s).Round()
	lineHeight := face.Metrics().Height.Round()
	if lineHeight <= 0 {
		return 0
	}
	return float32(px) * fontSize / float32(lineHeight)
}

// Wrap breaks s at spaces so each line fits MaxWidth. A single word wider
// than MaxWidth gets a line of its own.
func (l Layout) Wrap(s string) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	maxWidth := l.MaxWidth
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		candidate := line + " " + w
		if l.Width(candidate) > maxWidth {
			lines = append(lines, line)
			line = w
			continue
		}
		line = candidate
	}
	return append(lines, line)
}
