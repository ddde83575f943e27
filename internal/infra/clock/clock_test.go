package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManual(t *testing.T) {
	c := NewManual(0)
	assert.Equal(t, int64(0), c.NowMicros())

	c.Advance(300 * time.Millisecond)
	assert.Equal(t, int64(300_000), c.NowMicros())

	c.Set(100_000)
	assert.Equal(t, int64(300_000), c.NowMicros(), "manual clock never goes backwards")

	c.Advance(-time.Second)
	assert.Equal(t, int64(300_000), c.NowMicros())
}

func TestMonotonic(t *testing.T) {
	c := NewMonotonic()
	a := c.NowMicros()
	time.Sleep(2 * time.Millisecond)
	b := c.NowMicros()
	assert.GreaterOrEqual(t, a, int64(0))
	assert.Greater(t, b, a)
}
