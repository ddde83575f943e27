// Package widget identifies the player screen widgets and their geometry.
package widget

// ID identifies a widget on the player screen.
type ID string

const (
	None             ID = ""
	PlayerScreen     ID = "player_screen"
	Title            ID = "title_label"
	ProgressBar      ID = "progress_bar"
	Elapsed          ID = "time_label"
	Total            ID = "time_total_label"
	PrevButton       ID = "prev_button"
	PlayButton       ID = "play_button"
	PauseButton      ID = "pause_button"
	StopButton       ID = "stop_button"
	NextButton       ID = "next_button"
	AutoPlayCheckbox ID = "autoplay_checkbox"
	ContinueCheckbox ID = "continue_checkbox"
	StatsLabel       ID = "cpu_label"
)

// PlayerWidgets lists every widget that belongs to the player screen.
var PlayerWidgets = []ID{
	PlayerScreen,
	Title,
	ProgressBar,
	Elapsed,
	Total,
	PrevButton,
	PlayButton,
	PauseButton,
	StopButton,
	NextButton,
	AutoPlayCheckbox,
	ContinueCheckbox,
	StatsLabel,
}

// IsPlayerWidget reports whether id belongs to the player screen.
func IsPlayerWidget(id ID) bool {
	for _, w := range PlayerWidgets {
		if w == id {
			return true
		}
	}
	return false
}

// Rect is a widget rectangle in screen pixels.
type Rect struct {
	X, Y int
	W, H int
}

// Contains reports whether (x, y) lies inside the rectangle grown by slop pixels on every side.
func (r Rect) Contains(x, y, slop int) bool {
	return x >= r.X-slop && x < r.X+r.W+slop &&
		y >= r.Y-slop && y < r.Y+r.H+slop
}

// Layout maps widgets to their rectangles.
type Layout map[ID]Rect

const (
	buttonSize    = 100
	buttonSpacing = 25
	buttonY       = 260
	labelHeight   = 60
	timeWidth     = 150
)

// DefaultLayout returns the player screen layout for a display of the given size.
func DefaultLayout(width, height int) Layout {
	buttons := []ID{PrevButton, PlayButton, PauseButton, StopButton, NextButton}
	total := buttonSize*len(buttons) + buttonSpacing*(len(buttons)-1)
	startX := (width - total) / 2

	l := Layout{
		PlayerScreen:     {X: 0, Y: 0, W: width, H: height},
		Title:            {X: 20, Y: 30, W: width - 40, H: labelHeight},
		ProgressBar:      {X: 40, Y: 120, W: width - 80, H: 40},
		Elapsed:          {X: 40, Y: 180, W: timeWidth, H: labelHeight},
		Total:            {X: width - 40 - timeWidth, Y: 180, W: timeWidth, H: labelHeight},
		AutoPlayCheckbox: {X: 40, Y: height - 60, W: 200, H: 40},
		ContinueCheckbox: {X: (width - 300) / 2, Y: height - 60, W: 300, H: 40},
		StatsLabel:       {X: width - 145, Y: height - 35, W: 140, H: 30},
	}
	for i, id := range buttons {
		l[id] = Rect{X: startX + i*(buttonSize+buttonSpacing), Y: buttonY, W: buttonSize, H: buttonSize}
	}
	return l
}
