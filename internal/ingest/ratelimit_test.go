package ingest

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdmitFirstCallAlwaysAdmits(t *testing.T) {
	rl := NewRateLimiter(60*time.Second, 1)
	assert.True(t, rl.Admit("unseen", time.Now()))
}

func TestAdmitRejectsAtCeiling(t *testing.T) {
	rl := NewRateLimiter(60*time.Second, 2)
	t0 := time.Unix(1000, 0)

	results := []bool{
		rl.Admit("d1", t0),
		rl.Admit("d1", t0.Add(1*time.Second)),
		rl.Admit("d1", t0.Add(2*time.Second)),
	}
	assert.Equal(t, []bool{true, true, false}, results)
}

func TestAdmitAgainAfterOldestAgesOut(t *testing.T) {
	rl := NewRateLimiter(60*time.Second, 2)
	t0 := time.Unix(1000, 0)

	assert.True(t, rl.Admit("d1", t0))
	assert.True(t, rl.Admit("d1", t0.Add(10*time.Second)))
	assert.False(t, rl.Admit("d1", t0.Add(30*time.Second)))

	// t0 falls out of the window after 60s; one slot frees up.
	assert.True(t, rl.Admit("d1", t0.Add(61*time.Second)))
	assert.False(t, rl.Admit("d1", t0.Add(62*time.Second)))
}

func TestAdmitIsolatesDevices(t *testing.T) {
	rl := NewRateLimiter(60*time.Second, 1)
	now := time.Unix(1000, 0)

	assert.True(t, rl.Admit("d1", now))
	assert.False(t, rl.Admit("d1", now))
	assert.True(t, rl.Admit("d2", now))
}

func TestSweepDropsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(60*time.Second, 5)
	t0 := time.Unix(1000, 0)

	rl.Admit("idle", t0)
	rl.Admit("active", t0)
	rl.Admit("active", t0.Add(90*time.Second))

	removed := rl.Sweep(t0.Add(2 * time.Minute))
	assert.Equal(t, 1, removed)

	// Swept device starts over with a fresh bucket.
	assert.True(t, rl.Admit("idle", t0.Add(2*time.Minute)))
}

func TestAdmitConcurrentDevices(t *testing.T) {
	rl := NewRateLimiter(60*time.Second, 10)
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			deviceID := fmt.Sprintf("device-%d", i%10)
			for j := 0; j < 20; j++ {
				rl.Admit(deviceID, now.Add(time.Duration(j)*time.Millisecond))
			}
		}(i)
	}
	wg.Wait()

	// Every device saw 100 attempts with a ceiling of 10; the next
	// attempt inside the window must be rejected.
	for i := 0; i < 10; i++ {
		assert.False(t, rl.Admit(fmt.Sprintf("device-%d", i), now.Add(time.Second)))
	}
}
