package vmem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lordwindy/samrena/pkg/vmem"
)

func TestReserve(t *testing.T) {
	t.Parallel()

	m, err := vmem.Reserve(1)
	require.NoError(t, err)
	defer func() { _ = m.Release() }()

	assert.Equal(t, vmem.Granularity(), m.Len())
	assert.Equal(t, m.Len(), len(m.Bytes()))
}

func TestReserveInvalid(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, -1} {
		_, err := vmem.Reserve(size)
		assert.ErrorIs(t, err, vmem.ErrInvalidSize)
	}
}

func TestCommitAndWrite(t *testing.T) {
	t.Parallel()

	page := vmem.PageSize()

	m, err := vmem.Reserve(4 * page)
	require.NoError(t, err)
	defer func() { _ = m.Release() }()

	require.NoError(t, m.Commit(0, 2*page))

	buf := m.Bytes()
	for i := 0; i < 2*page; i++ {
		buf[i] = byte(i)
	}
	for i := 0; i < 2*page; i++ {
		require.Equal(t, byte(i), buf[i])
	}

	// Extend the committed range and touch the new pages.
	require.NoError(t, m.Commit(2*page, page))
	buf[2*page] = 0xAB
	assert.Equal(t, byte(0xAB), buf[2*page])
}

func TestCommitBounds(t *testing.T) {
	t.Parallel()

	page := vmem.PageSize()

	m, err := vmem.Reserve(2 * page)
	require.NoError(t, err)
	defer func() { _ = m.Release() }()

	assert.ErrorIs(t, m.Commit(0, 0), vmem.ErrInvalidSize)
	assert.ErrorIs(t, m.Commit(-page, page), vmem.ErrInvalidSize)
	assert.ErrorIs(t, m.Commit(0, m.Len()+page), vmem.ErrInvalidSize)
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	page := vmem.PageSize()

	m, err := vmem.Reserve(page)
	require.NoError(t, err)
	defer func() { _ = m.Release() }()

	require.NoError(t, m.Commit(0, page))

	buf := m.Bytes()
	buf[0] = 0xFF
	require.NoError(t, m.Discard(0, page))

	// The range stays committed: writing again must not fault.
	buf[0] = 0x01
	assert.Equal(t, byte(0x01), buf[0])
}

func TestDiscardZeroes(t *testing.T) {
	t.Parallel()

	if !vmem.DiscardZeroes() {
		t.Skip("platform does not guarantee zeroed pages after discard")
	}

	page := vmem.PageSize()

	m, err := vmem.Reserve(page)
	require.NoError(t, err)
	defer func() { _ = m.Release() }()

	require.NoError(t, m.Commit(0, page))

	buf := m.Bytes()
	for i := range buf[:page] {
		buf[i] = 0xFF
	}
	require.NoError(t, m.Discard(0, page))

	for i := range buf[:page] {
		require.Zero(t, buf[i])
	}
}

func TestRelease(t *testing.T) {
	t.Parallel()

	m, err := vmem.Reserve(vmem.PageSize())
	require.NoError(t, err)

	require.NoError(t, m.Release())
	assert.NoError(t, m.Release()) // idempotent

	assert.ErrorIs(t, m.Commit(0, vmem.PageSize()), vmem.ErrReleased)

	var nilMapping *vmem.Mapping
	assert.NoError(t, nilMapping.Release())
}
