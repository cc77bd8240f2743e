package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_StartsAtZero(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())

	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current(), "Current must not advance the clock")
}

func TestClock_ConcurrentStampsAreUnique(t *testing.T) {
	c := NewClock()
	const workers, perWorker = 20, 50

	var wg sync.WaitGroup
	stamps := make(chan int64, workers*perWorker)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				stamps <- c.Next()
			}
		}()
	}
	wg.Wait()
	close(stamps)

	seen := make(map[int64]bool, workers*perWorker)
	for s := range stamps {
		assert.False(t, seen[s], "stamp %d issued twice", s)
		seen[s] = true
	}
	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, int64(workers*perWorker), c.Current())
}
