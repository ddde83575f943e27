// Package render provides the facade through which all widget mutations are applied.
package render

import (
	"github.com/mattn/go-runewidth"

	"github.com/osa030/touchdeck/internal/domain/screen"
	"github.com/osa030/touchdeck/internal/domain/widget"
)

// Display is the render service. Widget setters are only valid between Lock and Unlock.
type Display interface {
	Lock()
	Unlock()
	SetText(id widget.ID, text string)
	SetValue(id widget.ID, value int)
	SetChecked(id widget.ID, checked bool)
	SetScrollPeriod(id widget.ID, periodMs int)
	ShowScreen(s screen.Screen)
}

// Measurer measures rendered text width in pixels.
type Measurer interface {
	TextWidth(text string) int
}

// RuneWidthMeasurer measures text as terminal cells times a fixed glyph width.
// Wide (CJK) runes count as two cells.
type RuneWidthMeasurer struct {
	CellPx int
}

// TextWidth returns the width of text in pixels.
func (m RuneWidthMeasurer) TextWidth(text string) int {
	return runewidth.StringWidth(text) * m.CellPx
}

// DefaultScrollSpeed is the title scroll speed in pixels per second.
const DefaultScrollSpeed = 90

// ScrollPeriod returns the time in milliseconds for text of widthPx to scroll
// past once at speedPx pixels per second.
func ScrollPeriod(widthPx, speedPx int) int {
	if widthPx <= 0 || speedPx <= 0 {
		return 0
	}
	return widthPx * 1000 / speedPx
}
