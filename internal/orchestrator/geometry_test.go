package orchestrator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowGeometryContains(t *testing.T) {
	g := WindowGeometry{OriginX: 100, OriginY: 200, Width: 300, Height: 400}

	assert.True(t, g.contains(0, 0))
	assert.True(t, g.contains(299, 399))
	assert.False(t, g.contains(300, 0), "width is exclusive")
	assert.False(t, g.contains(0, 400), "height is exclusive")
	assert.False(t, g.contains(-1, 0))
	assert.False(t, g.contains(math.NaN(), 0))
	assert.False(t, g.contains(math.Inf(1), 0))
}

func TestWindowGeometryToScreen(t *testing.T) {
	g := WindowGeometry{OriginX: 100, OriginY: 200, Width: 300, Height: 400}
	x, y := g.toScreen(10, 20)
	assert.Equal(t, 110.0, x)
	assert.Equal(t, 220.0, y)
}
