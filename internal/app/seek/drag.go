package seek

// Drag coalesces the samples of a drag gesture into a single seek.
// Intermediate samples only move the preview; Release yields the final value.
type Drag struct {
	active  bool
	percent int
	samples int
}

// Begin starts a drag at percent.
func (d *Drag) Begin(percent int) {
	d.active = true
	d.percent = percent
	d.samples = 1
}

// Move records a new sample. Returns false when no drag is active.
func (d *Drag) Move(percent int) bool {
	if !d.active {
		return false
	}
	d.percent = percent
	d.samples++
	return true
}

// Release ends the drag and returns the last sampled percent.
// ok is false when no drag was active.
func (d *Drag) Release() (percent int, ok bool) {
	if !d.active {
		return 0, false
	}
	d.active = false
	return d.percent, true
}

// Cancel abandons the drag without yielding a value.
func (d *Drag) Cancel() {
	d.active = false
	d.samples = 0
}

// Active reports whether a drag is in progress.
func (d *Drag) Active() bool {
	return d.active
}

// Preview returns the percent of the latest sample.
func (d *Drag) Preview() int {
	return d.percent
}

// Samples returns the number of samples coalesced by the current or last drag.
func (d *Drag) Samples() int {
	return d.samples
}
