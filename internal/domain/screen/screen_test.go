package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContext_Set(t *testing.T) {
	ctx := NewContext()
	assert.Equal(t, Player, ctx.Active())

	prev, changed := ctx.Set(FileManager)
	assert.Equal(t, Player, prev)
	assert.True(t, changed)
	assert.True(t, ctx.Is(FileManager))

	prev, changed = ctx.Set(FileManager)
	assert.Equal(t, FileManager, prev)
	assert.False(t, changed, "setting the active screen again is not a change")

	assert.Equal(t, uint64(1), ctx.Switches())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Screen
		wantOK bool
	}{
		{name: "player", input: "player", want: Player, wantOK: true},
		{name: "file manager alias", input: "files", want: FileManager, wantOK: true},
		{name: "wifi", input: "wifi_config", want: WifiConfig, wantOK: true},
		{name: "unknown", input: "settings", want: Player, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
