package cell

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCell_EmptyLoad(t *testing.T) {
	c := New[int]()
	v, ok := c.Load()
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestCell_OverwriteOnWrite(t *testing.T) {
	c := New[int]()

	c.Store(1)
	c.Store(2)
	c.Store(3)

	v, ok := c.Load()
	assert.True(t, ok)
	assert.Equal(t, 3, v, "reader should only see the latest value")

	// no new store: reader keeps the last value
	v, ok = c.Load()
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	c.Store(4)
	v, _ = c.Load()
	assert.Equal(t, 4, v)
}

type pair struct {
	a, b int
}

func TestCell_ConcurrentReaderSeesConsistentValues(t *testing.T) {
	c := New[pair]()
	const n = 100000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= n; i++ {
			c.Store(pair{a: i, b: -i})
		}
	}()

	last := 0
	for last < n {
		v, ok := c.Load()
		if !ok {
			continue
		}
		if v.a != -v.b {
			t.Fatalf("torn read: %+v", v)
		}
		if v.a < last {
			t.Fatalf("value went backwards: %d after %d", v.a, last)
		}
		last = v.a
	}
	wg.Wait()
}

func TestCell_StoreDoesNotAllocate(t *testing.T) {
	c := New[[4]float32]()
	v := [4]float32{0.1, 0.2, 0.3, 0.4}
	allocs := testing.AllocsPerRun(100, func() {
		c.Store(v)
		c.Load()
	})
	assert.Zero(t, allocs)
}
