package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock_StaysPut(t *testing.T) {
	at := time.Date(2024, 5, 3, 8, 0, 0, 0, time.UTC)
	clock := NewFixedClock(at)

	assert.Equal(t, at, clock.Now())
	assert.Equal(t, at, clock.Now())
}

func TestFixedClock_SetAndAdvance(t *testing.T) {
	clock := NewFixedClockAt("2024-05-03")
	assert.Equal(t, time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC), clock.Now())

	clock.Advance(24 * time.Hour)
	assert.Equal(t, 4, clock.Now().Day())

	at := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	clock.Set(at)
	assert.Equal(t, at, clock.Now())
}

func TestFixedClockAt_PanicsOnBadDate(t *testing.T) {
	assert.Panics(t, func() { NewFixedClockAt("yesterday") })
}

func TestFixedClock_ThreadSafe(t *testing.T) {
	clock := NewFixedClockAt("2024-05-03")
	start := clock.Now()

	var wg sync.WaitGroup
	wg.Add(50)
	for i := 0; i < 50; i++ {
		go func() {
			defer wg.Done()
			clock.Advance(time.Second)
			_ = clock.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, start.Add(50*time.Second), clock.Now())
}

func TestSequentialIDs(t *testing.T) {
	ids := NewSequentialIDs("")
	assert.Equal(t, "run-0001", ids.Generate())
	assert.Equal(t, "run-0002", ids.Generate())

	custom := NewSequentialIDs("pass")
	assert.Equal(t, "pass-0001", custom.Generate())
}
