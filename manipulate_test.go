package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(t *testing.T, vals ...uint64) *Vector {
	t.Helper()
	v, err := New(4, 8, 0)
	require.NoError(t, err)
	for _, n := range vals {
		require.NoError(t, v.Push(u64(n)))
	}
	return v
}

func contents(t *testing.T, v *Vector) []uint64 {
	t.Helper()
	out := make([]uint64, v.Size())
	for i := range out {
		got, err := v.GetAt(i)
		require.NoError(t, err)
		out[i] = fromU64(got)
	}
	return out
}

func TestSwap(t *testing.T) {
	v := fill(t, 1, 2, 3, 4)

	require.NoError(t, v.Swap(0, 3))
	assert.Equal(t, []uint64{4, 2, 3, 1}, contents(t, v))

	require.NoError(t, v.Swap(1, 1))
	assert.Equal(t, []uint64{4, 2, 3, 1}, contents(t, v))

	assert.ErrorIs(t, v.Swap(0, 4), ErrIndexOutOfBound)
	assert.ErrorIs(t, v.Swap(-1, 0), ErrIndexOutOfBound)
}

func TestSwapRange(t *testing.T) {
	t.Run("equal blocks exchange", func(t *testing.T) {
		v := fill(t, 1, 2, 3, 4, 5, 6)
		require.NoError(t, v.SwapRange(0, 1, 4))
		assert.Equal(t, []uint64{5, 6, 3, 4, 1, 2}, contents(t, v))
	})

	t.Run("overlap rejected", func(t *testing.T) {
		v := fill(t, 1, 2, 3, 4, 5, 6)
		assert.ErrorIs(t, v.SwapRange(0, 2, 2), ErrIndexOutOfBound)
	})

	t.Run("second block past the end", func(t *testing.T) {
		v := fill(t, 1, 2, 3, 4, 5, 6)
		assert.ErrorIs(t, v.SwapRange(0, 2, 4), ErrIndexOutOfBound)
	})
}

func TestRotate(t *testing.T) {
	t.Run("left", func(t *testing.T) {
		v := fill(t, 1, 2, 3, 4, 5)
		require.NoError(t, v.RotateLeft(2))
		assert.Equal(t, []uint64{3, 4, 5, 1, 2}, contents(t, v))
	})

	t.Run("right", func(t *testing.T) {
		v := fill(t, 1, 2, 3, 4, 5)
		require.NoError(t, v.RotateRight(2))
		assert.Equal(t, []uint64{4, 5, 1, 2, 3}, contents(t, v))
	})

	t.Run("inverse operations", func(t *testing.T) {
		v := fill(t, 1, 2, 3, 4, 5)
		require.NoError(t, v.RotateLeft(3))
		require.NoError(t, v.RotateRight(3))
		assert.Equal(t, []uint64{1, 2, 3, 4, 5}, contents(t, v))
	})

	t.Run("full and zero rotation are no-ops", func(t *testing.T) {
		v := fill(t, 1, 2, 3)
		require.NoError(t, v.RotateLeft(0))
		require.NoError(t, v.RotateLeft(3))
		assert.Equal(t, []uint64{1, 2, 3}, contents(t, v))
	})

	t.Run("rotation beyond size", func(t *testing.T) {
		v := fill(t, 1, 2, 3)
		assert.ErrorIs(t, v.RotateLeft(4), ErrIndexOutOfBound)
	})
}

func TestApply(t *testing.T) {
	double := func(item []byte) {
		n := fromU64(item)
		copy(item, u64(n*2))
	}

	t.Run("every element", func(t *testing.T) {
		v := fill(t, 1, 2, 3)
		require.NoError(t, v.Apply(double))
		assert.Equal(t, []uint64{2, 4, 6}, contents(t, v))
	})

	t.Run("range inclusive", func(t *testing.T) {
		v := fill(t, 1, 2, 3, 4, 5)
		require.NoError(t, v.ApplyRange(double, 1, 3))
		assert.Equal(t, []uint64{1, 4, 6, 8, 5}, contents(t, v))
	})

	t.Run("reversed bounds accepted", func(t *testing.T) {
		v := fill(t, 1, 2, 3, 4, 5)
		require.NoError(t, v.ApplyRange(double, 3, 1))
		assert.Equal(t, []uint64{1, 4, 6, 8, 5}, contents(t, v))
	})

	t.Run("range out of bounds", func(t *testing.T) {
		v := fill(t, 1, 2, 3)
		assert.ErrorIs(t, v.ApplyRange(double, 0, 3), ErrIndexOutOfBound)
	})

	t.Run("nil function is a no-op", func(t *testing.T) {
		v := fill(t, 1, 2, 3)
		require.NoError(t, v.Apply(nil))
		assert.Equal(t, []uint64{1, 2, 3}, contents(t, v))
	})
}

func TestApplyIf(t *testing.T) {
	double := func(item []byte) {
		n := fromU64(item)
		copy(item, u64(n*2))
	}
	greater := func(a, b []byte) bool {
		return fromU64(a) > fromU64(b)
	}

	t.Run("predicate selects elements", func(t *testing.T) {
		v := fill(t, 5, 1, 7, 2)
		ref := fill(t, 3, 3, 3, 3)
		require.NoError(t, v.ApplyIf(ref, double, greater))
		assert.Equal(t, []uint64{10, 1, 14, 2}, contents(t, v))
	})

	t.Run("reference vector may be larger", func(t *testing.T) {
		v := fill(t, 5, 1)
		ref := fill(t, 3, 3, 3)
		require.NoError(t, v.ApplyIf(ref, double, greater))
		assert.Equal(t, []uint64{10, 1}, contents(t, v))
	})

	t.Run("reference vector too small", func(t *testing.T) {
		v := fill(t, 5, 1, 7)
		ref := fill(t, 3)
		assert.ErrorIs(t, v.ApplyIf(ref, double, greater), ErrVectorTooSmall)
	})

	t.Run("destroyed reference vector", func(t *testing.T) {
		v := fill(t, 5)
		ref := fill(t, 3)
		require.NoError(t, ref.Destroy())
		assert.ErrorIs(t, v.ApplyIf(ref, double, greater), ErrVectorUndefined)
	})
}
