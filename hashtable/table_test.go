package hashtable

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantHasher(int) uint64 { return 7 }

func TestTable_InsertSearch(t *testing.T) {
	tbl := New[int, string](WithHasher(IntHasher))

	require.NoError(t, tbl.Insert(1, "one"))
	require.NoError(t, tbl.Insert(2, "two"))

	v, err := tbl.Search(1)
	require.NoError(t, err)
	assert.Equal(t, "one", v)

	v, ok := tbl.TryGet(2)
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	assert.Equal(t, 2, tbl.Len())
	assert.False(t, tbl.IsEmpty())
}

func TestTable_OverwriteKeepsSize(t *testing.T) {
	tbl := New[string, int](WithHasher(StringHasher))

	require.NoError(t, tbl.Insert("alice", 1))
	require.NoError(t, tbl.Insert("alice", 2))

	assert.Equal(t, 1, tbl.Len())
	v, err := tbl.Search("alice")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestTable_Miss(t *testing.T) {
	tbl := New[int, string](WithHasher(IntHasher))
	require.NoError(t, tbl.Insert(1, "one"))

	_, err := tbl.Search(42)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	_, ok := tbl.TryGet(42)
	assert.False(t, ok)
	assert.False(t, tbl.ContainsKey(42))
	assert.False(t, tbl.Delete(42))
	assert.Equal(t, 1, tbl.Len())
}

func TestTable_InvalidKey(t *testing.T) {
	t.Run("NilPointer", func(t *testing.T) {
		tbl := New[*int, string]()

		assert.ErrorIs(t, tbl.Insert(nil, "x"), ErrInvalidKey)
		_, err := tbl.Search(nil)
		assert.ErrorIs(t, err, ErrInvalidKey)
		assert.False(t, tbl.ContainsKey(nil))
		assert.False(t, tbl.Delete(nil))
		assert.True(t, tbl.IsEmpty())

		k := new(int)
		require.NoError(t, tbl.Insert(k, "x"))
		assert.True(t, tbl.ContainsKey(k))
	})

	t.Run("NilInterface", func(t *testing.T) {
		tbl := New[any, int]()
		assert.ErrorIs(t, tbl.Insert(nil, 1), ErrInvalidKey)
		require.NoError(t, tbl.Insert("k", 1))
	})

	t.Run("CustomValidator", func(t *testing.T) {
		tbl := New[string, int](
			WithHasher(StringHasher),
			WithKeyValidator(func(k string) bool { return k != "" }),
		)
		assert.ErrorIs(t, tbl.Insert("", 1), ErrInvalidKey)
		assert.False(t, tbl.ContainsKey(""))
		require.NoError(t, tbl.Insert("bob", 1))
	})
}

func TestTable_ResizeAtThreshold(t *testing.T) {
	tbl := New[int, string](WithInitialCapacity[int](16), WithHasher(IntHasher))

	for k := 1; k <= 12; k++ {
		require.NoError(t, tbl.Insert(k, fmt.Sprint(k)))
	}
	assert.Equal(t, 16, tbl.Capacity(), "12/16 reaches the threshold but does not grow yet")

	require.NoError(t, tbl.Insert(13, "13"))
	assert.Equal(t, 32, tbl.Capacity())
	for k := 1; k <= 13; k++ {
		v, err := tbl.Search(k)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(k), v)
	}

	for k := 14; k <= 20; k++ {
		require.NoError(t, tbl.Insert(k, fmt.Sprint(k)))
	}
	assert.Equal(t, 32, tbl.Capacity())
	assert.Equal(t, 20, tbl.Len())
	assert.Equal(t, 1, tbl.Stats().Resizes)
}

func TestTable_ResizeRoundTrip(t *testing.T) {
	tbl := New[int, int](WithInitialCapacity[int](2), WithHasher(IntHasher))

	const n = 5000
	for k := range n {
		require.NoError(t, tbl.Insert(k, k))
	}
	// Overwrite every third key after growth.
	for k := 0; k < n; k += 3 {
		require.NoError(t, tbl.Insert(k, -k))
	}

	assert.Equal(t, n, tbl.Len())
	assert.Less(t, tbl.LoadFactor(), LoadFactorThreshold+1e-9)
	for k := range n {
		want := k
		if k%3 == 0 {
			want = -k
		}
		v, ok := tbl.TryGet(k)
		require.True(t, ok, "key %d lost across resize", k)
		assert.Equal(t, want, v)
	}
}

func TestTable_LoadFactorInvariant(t *testing.T) {
	tbl := New[int, struct{}](WithInitialCapacity[int](4), WithHasher(IntHasher))

	for k := range 1000 {
		before := tbl.Capacity()
		require.NoError(t, tbl.Insert(k, struct{}{}))
		if tbl.Capacity() == before {
			assert.Less(t, float64(tbl.Len()-1)/float64(tbl.Capacity()), LoadFactorThreshold)
		}
	}
}

func TestTable_ChainOrderAndDelete(t *testing.T) {
	tbl := New[int, string](WithHasher(constantHasher))

	for k := 1; k <= 4; k++ {
		require.NoError(t, tbl.Insert(k, fmt.Sprint(k)))
	}

	// All keys collide, so the chain is most-recently-inserted first.
	assert.Equal(t, []string{"4", "3", "2", "1"}, tbl.Values())

	// Head, middle and tail removal.
	assert.True(t, tbl.Delete(4))
	assert.True(t, tbl.Delete(2))
	assert.True(t, tbl.Delete(1))
	assert.Equal(t, []Entry[int, string]{{Key: 3, Value: "3"}}, tbl.Entries())
	assert.Equal(t, 1, tbl.Stats().LongestChain)

	// Overwrite does not move a key to the head.
	require.NoError(t, tbl.Insert(5, "5"))
	require.NoError(t, tbl.Insert(3, "three"))
	assert.Equal(t, []string{"5", "three"}, tbl.Values())
}

func TestTable_SizeMatchesDistinctKeys(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	tbl := New[int, int](WithInitialCapacity[int](1), WithHasher(IntHasher))
	ref := make(map[int]int)

	for i := range 10000 {
		k := rng.IntN(500)
		if rng.IntN(3) == 0 {
			_, had := ref[k]
			assert.Equal(t, had, tbl.Delete(k))
			delete(ref, k)
		} else {
			require.NoError(t, tbl.Insert(k, i))
			ref[k] = i
		}
		require.Equal(t, len(ref), tbl.Len())
	}

	for k, want := range ref {
		got, err := tbl.Search(k)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Len(t, tbl.Entries(), len(ref))
}

func TestTable_Clear(t *testing.T) {
	tbl := New[int, int](WithInitialCapacity[int](4), WithHasher(IntHasher))
	for k := range 10 {
		require.NoError(t, tbl.Insert(k, k))
	}
	capacity := tbl.Capacity()

	tbl.Clear()

	assert.Empty(t, tbl.Values())
	assert.Equal(t, 0, tbl.Len())
	assert.True(t, tbl.IsEmpty())
	assert.Equal(t, capacity, tbl.Capacity())
	assert.False(t, tbl.ContainsKey(3))
}

func TestTable_AllStopsEarly(t *testing.T) {
	tbl := New[int, int](WithHasher(IntHasher))
	for k := range 10 {
		require.NoError(t, tbl.Insert(k, k))
	}

	seen := 0
	for range tbl.All() {
		seen++
		if seen == 3 {
			break
		}
	}
	assert.Equal(t, 3, seen)
}

func TestTable_Stats(t *testing.T) {
	tbl := New[int, int](WithInitialCapacity[int](8), WithHasher(constantHasher))
	for k := range 5 {
		require.NoError(t, tbl.Insert(k, k))
	}

	s := tbl.Stats()
	assert.Equal(t, 5, s.Size)
	assert.Equal(t, 8, s.Capacity)
	assert.Equal(t, 1, s.UsedBuckets)
	assert.Equal(t, 5, s.LongestChain)
	assert.InDelta(t, 5.0/8.0, s.LoadFactor, 1e-9)
}

func TestNew_CapacityFloor(t *testing.T) {
	tbl := New[int, int](WithInitialCapacity[int](0), WithHasher(IntHasher))
	assert.Equal(t, 1, tbl.Capacity())

	require.NoError(t, tbl.Insert(1, 1))
	require.NoError(t, tbl.Insert(2, 2))
	assert.Equal(t, 2, tbl.Capacity())
	assert.True(t, tbl.ContainsKey(1))
	assert.True(t, tbl.ContainsKey(2))
}
