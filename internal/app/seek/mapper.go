// Package seek maps pointer positions on a horizontal control to transport percentages.
package seek

import (
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// ErrInvalidGeometry is returned for controls without a positive width.
var ErrInvalidGeometry = errors.New("invalid control geometry")

// Geometry is the horizontal extent of a control.
type Geometry struct {
	OriginX int
	Width   int
}

// Validate checks that the control can be mapped.
func (g Geometry) Validate() error {
	if g.Width <= 0 {
		return errors.Wrapf(ErrInvalidGeometry, "width=%d", g.Width)
	}
	return nil
}

// Percent maps pointerX to a percentage in [0, 100] of the control width.
// Integer division truncates toward zero.
func Percent(pointerX int, g Geometry) (int, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	offset := lo.Clamp(pointerX-g.OriginX, 0, g.Width)
	return offset * 100 / g.Width, nil
}
