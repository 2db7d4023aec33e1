package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lordwindy/samrena/pkg/xunsafe/layout"
)

func TestAlign(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 8, layout.RoundUp(8, 8))
	assert.Equal(t, 16, layout.RoundUp(9, 8))
	assert.Equal(t, 16, layout.RoundUp(15, 8))
	assert.Equal(t, 16, layout.RoundUp(16, 8))
	assert.Equal(t, 0, layout.RoundUp(0, 4096))
	assert.Equal(t, 4096, layout.RoundUp(1, 4096))

	assert.Equal(t, 8, layout.RoundDown(8, 8))
	assert.Equal(t, 8, layout.RoundDown(15, 8))
	assert.Equal(t, 16, layout.RoundDown(16, 8))

	assert.Equal(t, 0, layout.Padding(8, 8))
	assert.Equal(t, 7, layout.Padding(9, 8))
	assert.Equal(t, 1, layout.Padding(15, 8))
	assert.Equal(t, 0, layout.Padding(16, 8))
}

func TestIsPow2(t *testing.T) {
	t.Parallel()

	for _, v := range []int{1, 2, 4, 8, 16, 64, 256, 1 << 20} {
		assert.True(t, layout.IsPow2(v), "%d", v)
	}

	for _, v := range []int{0, -1, 3, 6, 12, 100, 1<<20 + 1} {
		assert.False(t, layout.IsPow2(v), "%d", v)
	}
}

func TestOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, layout.Layout{Size: 8, Align: 8}, layout.Of[int64]())
	assert.Equal(t, layout.Layout{Size: 1, Align: 1}, layout.Of[byte]())
	assert.Equal(t, 16, layout.Size[[2]int64]())
	assert.Equal(t, 64, layout.Bits[int64]())
}
