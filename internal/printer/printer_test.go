package printer

import (
	"bytes"
	"testing"

	"github.com/danielpatrickdp/adaptive-ensemble/internal/draw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	t.Run("returns error with title", func(t *testing.T) {
		var out, errOut bytes.Buffer
		p := New(&out, &errOut, false)
		err := p.Error("Test Error", "This is a test error", nil)
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
		assert.Contains(t, errOut.String(), "This is a test error")
		assert.Empty(t, out.String())
	})

	t.Run("numbers multiple suggestions", func(t *testing.T) {
		var errOut bytes.Buffer
		p := New(&bytes.Buffer{}, &errOut, false)
		err := p.Error("Test Error", "Explanation", []string{"First option", "Second option"})
		require.Error(t, err)
		assert.Contains(t, errOut.String(), "Either:")
		assert.Contains(t, errOut.String(), "  2. Second option")
	})
}

func TestPlainOutput(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, &out, false)

	p.Success("saved\n")
	p.Warning("stale\n")
	p.Step("fetching\n")

	assert.Equal(t, "✓ saved\n⚠️  stale\n→ fetching\n", out.String())
	assert.Equal(t, "hit", p.Hit(true))
	assert.Equal(t, "miss", p.Hit(false))
	assert.Equal(t, "big_odd", p.Category(draw.BigOdd))
}

func TestColorOutput(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, &out, true)
	p.Success("ok")
	assert.Contains(t, out.String(), "\x1b[")
}
