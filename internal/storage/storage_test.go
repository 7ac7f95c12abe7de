package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pzaino/vector/internal/resource"
)

func newStore(t *testing.T, capacity int, fixed bool, strategy Strategy) *Store {
	t.Helper()
	s, err := New(capacity, fixed, strategy, resource.NewGovernor(0, nil), nil)
	require.NoError(t, err)
	return s
}

func slot(b byte) []byte { return []byte{b} }

func contents(s *Store) []byte {
	out := make([]byte, 0, s.Size())
	for _, sl := range s.Occupied() {
		out = append(out, sl[0])
	}
	return out
}

func TestInsertBothEnds(t *testing.T) {
	for name, strategy := range map[string]Strategy{"in-place": InPlace, "reentrant": Reentrant} {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, 4, false, strategy)

			require.NoError(t, s.Insert(0, slot(3)))         // append into empty
			require.NoError(t, s.Insert(0, slot(2)))         // front
			require.NoError(t, s.Insert(0, slot(1)))         // front
			require.NoError(t, s.Insert(s.Size(), slot(5)))  // back
			require.NoError(t, s.Insert(3, slot(4)))         // middle shift

			assert.Equal(t, []byte{1, 2, 3, 4, 5}, contents(s))
			assert.Equal(t, 5, s.Size())
			assert.GreaterOrEqual(t, s.Cap(), 5)
			assert.False(t, s.Corrupted())
		})
	}
}

func TestGrowBothSides(t *testing.T) {
	s := newStore(t, 4, false, InPlace)

	for i := 0; i < 20; i++ {
		require.NoError(t, s.Insert(s.Size(), slot(byte(i))))
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, s.Insert(0, slot(byte(100+i))))
	}
	assert.Equal(t, 40, s.Size())
	assert.GreaterOrEqual(t, s.Cap(), 40)
	assert.Equal(t, byte(119), contents(s)[0])
	assert.Equal(t, byte(19), contents(s)[39])
}

func TestGrowDeniedLeavesStoreUnchanged(t *testing.T) {
	gov := resource.NewGovernor(4*24+8, nil) // room for initial array, not a doubling
	s, err := New(4, false, InPlace, gov, nil)
	require.NoError(t, err)

	require.NoError(t, s.Insert(0, slot(1)))
	require.NoError(t, s.Insert(1, slot(2)))

	// Fill the right side, then force a growth that the budget denies.
	for s.Insert(s.Size(), slot(9)) == nil {
	}
	size, cap0 := s.Size(), s.Cap()

	err = s.Insert(s.Size(), slot(9))
	require.ErrorIs(t, err, resource.ErrBudgetExceeded)
	assert.Equal(t, size, s.Size())
	assert.Equal(t, cap0, s.Cap())
	assert.False(t, s.Corrupted())
}

func TestExtract(t *testing.T) {
	for name, strategy := range map[string]Strategy{"in-place": InPlace, "reentrant": Reentrant} {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, 8, false, strategy)
			for i := 1; i <= 5; i++ {
				require.NoError(t, s.Insert(s.Size(), slot(byte(i))))
			}

			assert.Equal(t, byte(3), s.Extract(2)[0]) // middle
			assert.Equal(t, byte(1), s.Extract(0)[0]) // front
			assert.Equal(t, byte(5), s.Extract(2)[0]) // back
			assert.Equal(t, []byte{2, 4}, contents(s))
		})
	}
}

func TestDeleteRange(t *testing.T) {
	for name, strategy := range map[string]Strategy{"in-place": InPlace, "reentrant": Reentrant} {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, 8, false, strategy)
			for i := 0; i < 8; i++ {
				require.NoError(t, s.Insert(s.Size(), slot(byte(i))))
			}

			var released []byte
			s.DeleteRange(2, 4, func(b []byte) { released = append(released, b[0]) })

			assert.Equal(t, []byte{2, 3, 4, 5}, released)
			assert.Equal(t, []byte{0, 1, 6, 7}, contents(s))
		})
	}
}

func TestShrinkKeepsFloor(t *testing.T) {
	s := newStore(t, 4, false, InPlace)
	for i := 0; i < 64; i++ {
		require.NoError(t, s.Insert(s.Size(), slot(byte(i))))
	}
	grown := s.Cap()
	require.Greater(t, grown, 4)

	for s.Size() > 0 {
		old := s.Size()
		s.Extract(s.Size() - 1)
		require.NoError(t, s.ShrinkCheck(old, Right))
	}
	assert.GreaterOrEqual(t, s.Cap(), s.InitCap())
	assert.Less(t, s.Cap(), grown)
}

func TestShrinkOddInitialCapacity(t *testing.T) {
	// Per-side floors truncate for odd capacities; the total must still
	// never fall below the initial capacity.
	s := newStore(t, 5, false, InPlace)
	for i := 0; i < 8; i++ {
		require.NoError(t, s.Insert(0, slot(byte(i))))
	}
	for s.Size() > 0 {
		old := s.Size()
		s.Extract(s.Size() - 1)
		require.NoError(t, s.ShrinkCheck(old, Right))
		require.GreaterOrEqual(t, s.Cap(), 5)

		if s.Size() == 0 {
			break
		}
		old = s.Size()
		s.Extract(0)
		require.NoError(t, s.ShrinkCheck(old, Left))
		require.GreaterOrEqual(t, s.Cap(), 5)
	}
	assert.GreaterOrEqual(t, s.Cap(), s.InitCap())
}

func TestShrinkToFit(t *testing.T) {
	s := newStore(t, 4, false, InPlace)
	for i := 0; i < 40; i++ {
		require.NoError(t, s.Insert(s.Size(), slot(byte(i))))
	}
	before := contents(s)

	require.NoError(t, s.ShrinkToFit())
	assert.Equal(t, 42, s.Cap())
	assert.Equal(t, before, contents(s))

	for i := 0; i < 39; i++ {
		s.Extract(s.Size() - 1)
	}
	require.NoError(t, s.ShrinkToFit())
	assert.Equal(t, s.InitCap(), s.Cap())
}

func TestFixedStoreNeverResizes(t *testing.T) {
	s := newStore(t, 4, true, InPlace)
	for i := 0; i < 4; i++ {
		require.NoError(t, s.Insert(s.Size(), slot(byte(i))))
	}
	assert.ErrorIs(t, s.Insert(s.Size(), slot(9)), ErrNoRoom)
	assert.Equal(t, 4, s.Cap())

	// Front removal then front insert must reuse the drifted slack.
	s.Extract(0)
	require.NoError(t, s.Insert(0, slot(9)))
	assert.Equal(t, []byte{9, 1, 2, 3}, contents(s))
	assert.Equal(t, 4, s.Cap())
}

func TestRotate(t *testing.T) {
	s := newStore(t, 8, false, InPlace)
	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Insert(s.Size(), slot(byte(i))))
	}

	s.RotateLeft(2)
	assert.Equal(t, []byte{3, 4, 5, 1, 2}, contents(s))

	s.RotateRight(2)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, contents(s))
}

func TestAppendSlots(t *testing.T) {
	s := newStore(t, 4, false, InPlace)
	require.NoError(t, s.Insert(s.Size(), slot(1)))

	batch := [][]byte{slot(2), slot(3), slot(4), slot(5), slot(6), slot(7)}
	require.NoError(t, s.AppendSlots(batch))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7}, contents(s))
}

func TestAppendReclaimsLeftSlack(t *testing.T) {
	for name, strategy := range map[string]Strategy{"in-place": InPlace, "reentrant": Reentrant} {
		t.Run(name, func(t *testing.T) {
			// A centered store must absorb a full capacity of appends by
			// reclaiming the untouched left slack, not by growing.
			s := newStore(t, 8, false, strategy)
			for i := 0; i < 8; i++ {
				require.NoError(t, s.Insert(s.Size(), slot(byte(i))))
				require.Equal(t, 8, s.Cap())
			}
			assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7}, contents(s))

			s2 := newStore(t, 8, false, strategy)
			require.NoError(t, s2.Insert(s2.Size(), slot(9)))
			require.NoError(t, s2.AppendSlots([][]byte{slot(1), slot(2), slot(3), slot(4), slot(5), slot(6), slot(7)}))
			assert.Equal(t, 8, s2.Cap())
			assert.Equal(t, []byte{9, 1, 2, 3, 4, 5, 6, 7}, contents(s2))
		})
	}
}

func TestClearRecenters(t *testing.T) {
	s := newStore(t, 8, false, InPlace)
	for i := 0; i < 6; i++ {
		require.NoError(t, s.Insert(s.Size(), slot(byte(i))))
	}

	n := 0
	s.Clear(func([]byte) { n++ })
	assert.Equal(t, 6, n)
	assert.Equal(t, 0, s.Size())
	assert.Equal(t, 8, s.Cap())

	// Both sides must have slack again after clearing.
	require.NoError(t, s.Insert(0, slot(1)))
	require.NoError(t, s.Insert(0, slot(2)))
	assert.Equal(t, []byte{2, 1}, contents(s))
}
