package enginepool

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReserveAndReleaseWithinCapacity(t *testing.T) {
	l := NewLimiter(1024, 2048, 4)
	r := l.Reserve(1, 512, 2)
	require.NotNil(t, r)
	r.Release()
}

func TestOverReservationPanics(t *testing.T) {
	l := NewLimiter(1024, 2048, 4)
	require.Panics(t, func() {
		l.Reserve(1, 10_000_000, 2)
	})
}

func TestReserveBlocksUntilReleased(t *testing.T) {
	l := NewLimiter(100, 150, 2)
	r1 := l.Reserve(1, 100, 1)

	done := make(chan struct{})
	go func() {
		r2 := l.Reserve(2, 100, 1)
		r2.Release()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second reservation should have blocked")
	case <-time.After(50 * time.Millisecond):
	}

	r1.Release()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second reservation never unblocked after release")
	}
}

func TestGrowMemoryRefusesPastInstanceCeiling(t *testing.T) {
	l := NewLimiter(1000, 500, 4)
	require.True(t, l.GrowMemory(400, 400))
	require.False(t, l.GrowMemory(900, 400))
}

func TestNoDeadlockUnderConcurrentReservations(t *testing.T) {
	l := NewLimiter(10, 5, 10)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			r := l.Reserve(id, 5, 5)
			time.Sleep(time.Millisecond)
			r.Release()
		}(int64(i + 1))
	}
	wg.Wait()
}
