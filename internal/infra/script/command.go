// Package script turns text commands and timed YAML scripts into console events.
package script

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/osa030/touchdeck/internal/app/console"
	"github.com/osa030/touchdeck/internal/domain/input"
	"github.com/osa030/touchdeck/internal/domain/screen"
	"github.com/osa030/touchdeck/internal/domain/widget"
	"github.com/osa030/touchdeck/internal/infra/clock"
)

// Errors
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("invalid arguments")
)

// Usage lists the accepted commands.
const Usage = `play | pause | resume | stop | next | prev
seek PERCENT                 seek to 0..100
autoplay on|off              toggle Auto-Play
continue on|off              toggle Continue Playback
load TRACK                   select a track as the file manager does
nav player|file_manager|wifi_config
swipe left|right|up|down
click WIDGET [X Y]           e.g. click play, click progress_bar 292 130
press X | move X | release X pointer on the progress bar
drag FROM TO                 drag the progress bar between two percents`

// Parser converts command lines into console events.
type Parser struct {
	layout widget.Layout
	clock  clock.Clock
}

// NewParser creates a parser. Coordinates default to the widget centers of layout.
func NewParser(layout widget.Layout, c clock.Clock) *Parser {
	if c == nil {
		c = clock.NewMonotonic()
	}
	return &Parser{layout: layout, clock: c}
}

// Parse parses one command line. A blank line or a comment yields no events.
func (p *Parser) Parse(line string) ([]console.Event, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil, nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "play", "pause", "resume", "stop", "next", "prev":
		if len(args) != 0 {
			return nil, errors.Wrapf(ErrUsage, "%s takes no arguments", name)
		}
		return one(console.CommandEvent{Command: console.Command(name)}), nil

	case "seek":
		pct, err := percentArg(name, args)
		if err != nil {
			return nil, err
		}
		return one(console.CommandEvent{Command: console.CommandSeek, Arg: pct}), nil

	case "autoplay", "continue":
		if len(args) != 1 {
			return nil, errors.Wrapf(ErrUsage, "%s on|off", name)
		}
		on, err := onOff(args[0])
		if err != nil {
			return nil, err
		}
		arg := 0
		if on {
			arg = 1
		}
		return one(console.CommandEvent{Command: console.Command(name), Arg: arg}), nil

	case "load":
		if len(args) == 0 {
			return nil, errors.Wrap(ErrUsage, "load TRACK")
		}
		// track ids may contain spaces
		id := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
		return one(console.TrackSelectedEvent{TrackID: id}), nil

	case "nav":
		if len(args) != 1 {
			return nil, errors.Wrap(ErrUsage, "nav SCREEN")
		}
		s, ok := screen.Parse(args[0])
		if !ok {
			return nil, errors.Wrapf(ErrUsage, "unknown screen %q", args[0])
		}
		return one(console.NavigateEvent{Screen: s}), nil

	case "swipe":
		if len(args) != 1 {
			return nil, errors.Wrap(ErrUsage, "swipe DIR")
		}
		dir, ok := input.ParseDirection(args[0])
		if !ok {
			return nil, errors.Wrapf(ErrUsage, "unknown direction %q", args[0])
		}
		return one(p.input(input.Event{Kind: input.Gesture, Dir: dir})), nil

	case "click":
		return p.click(args)

	case "press", "move", "release":
		if len(args) != 1 {
			return nil, errors.Wrapf(ErrUsage, "%s X", name)
		}
		x, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, errors.Wrapf(ErrUsage, "x %q", args[0])
		}
		kind := map[string]input.Kind{"press": input.PointerDown, "move": input.PointerMove, "release": input.PointerUp}[name]
		return one(p.barEvent(kind, x)), nil

	case "drag":
		return p.drag(args)
	}
	return nil, errors.Wrapf(ErrUnknownCommand, "%q", name)
}

func (p *Parser) click(args []string) ([]console.Event, error) {
	if len(args) != 1 && len(args) != 3 {
		return nil, errors.Wrap(ErrUsage, "click WIDGET [X Y]")
	}
	id, ok := p.widget(args[0])
	if !ok {
		return nil, errors.Wrapf(ErrUsage, "unknown widget %q", args[0])
	}
	pt := center(p.layout[id])
	if len(args) == 3 {
		x, errX := strconv.Atoi(args[1])
		y, errY := strconv.Atoi(args[2])
		if errX != nil || errY != nil {
			return nil, errors.Wrapf(ErrUsage, "coordinates %q %q", args[1], args[2])
		}
		pt = input.Point{X: x, Y: y}
	}
	return one(p.input(input.Event{Kind: input.Click, Target: id, Point: pt})), nil
}

// drag expands into press, move and release on the progress bar followed by the click
// the input driver reports for a press and release on the same widget.
func (p *Parser) drag(args []string) ([]console.Event, error) {
	if len(args) != 2 {
		return nil, errors.Wrap(ErrUsage, "drag FROM TO")
	}
	from, err := percentArg("drag", args[:1])
	if err != nil {
		return nil, err
	}
	to, err := percentArg("drag", args[1:])
	if err != nil {
		return nil, err
	}

	bar := p.layout[widget.ProgressBar]
	x := func(pct int) int { return bar.X + bar.W*pct/100 }
	mid := (from + to) / 2

	return []console.Event{
		p.barEvent(input.PointerDown, x(from)),
		p.barEvent(input.PointerMove, x(mid)),
		p.barEvent(input.PointerMove, x(to)),
		p.barEvent(input.PointerUp, x(to)),
		p.barEvent(input.Click, x(to)),
	}, nil
}

func (p *Parser) barEvent(kind input.Kind, x int) console.Event {
	y := center(p.layout[widget.ProgressBar]).Y
	return p.input(input.Event{Kind: kind, Target: widget.ProgressBar, Point: input.Point{X: x, Y: y}})
}

func (p *Parser) input(ev input.Event) console.Event {
	ev.Timestamp = p.clock.NowMicros()
	return console.InputEvent{Input: ev}
}

// widget resolves a widget id, accepting the short forms "play" and "autoplay".
func (p *Parser) widget(name string) (widget.ID, bool) {
	for _, id := range []widget.ID{widget.ID(name), widget.ID(name + "_button"), widget.ID(name + "_checkbox")} {
		if _, ok := p.layout[id]; ok {
			return id, true
		}
	}
	return widget.None, false
}

func center(r widget.Rect) input.Point {
	return input.Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

func percentArg(name string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.Wrapf(ErrUsage, "%s PERCENT", name)
	}
	pct, err := strconv.Atoi(strings.TrimSuffix(args[0], "%"))
	if err != nil || pct < 0 || pct > 100 {
		return 0, errors.Wrapf(ErrUsage, "%s: percent %q out of 0..100", name, args[0])
	}
	return pct, nil
}

func onOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, errors.Wrapf(ErrUsage, "expected on|off, got %q", s)
}

func one(ev console.Event) []console.Event {
	return []console.Event{ev}
}
