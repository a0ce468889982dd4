package ingest

import (
	"hash/fnv"
	"log"
	"sync"
	"time"
)

const rateLimiterShards = 32

type rateShard struct {
	mu      sync.Mutex
	buckets map[string][]int64
}

// RateLimiter provides per-device sliding-window admission control.
// State is in-memory only and lost on restart; it exists to bound
// short-term abuse, not to be durable. Buckets are sharded by hashed
// device id so devices contend only within their shard.
type RateLimiter struct {
	window time.Duration
	max    int
	shards [rateLimiterShards]rateShard
}

func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	rl := &RateLimiter{window: window, max: max}
	for i := range rl.shards {
		rl.shards[i].buckets = make(map[string][]int64)
	}
	return rl
}

func shardIndex(deviceID string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(deviceID))
	return int(h.Sum32() % uint32(n))
}

// Admit reports whether a reading from the device may proceed at time
// now, recording the admission if so. Timestamps older than the window
// are evicted from the front of the device's sequence before counting;
// they are inserted in increasing order, so eviction is a prefix trim.
func (rl *RateLimiter) Admit(deviceID string, now time.Time) bool {
	s := &rl.shards[shardIndex(deviceID, rateLimiterShards)]
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-rl.window).UnixNano()
	bucket := s.buckets[deviceID]

	i := 0
	for i < len(bucket) && bucket[i] < cutoff {
		i++
	}
	bucket = bucket[i:]

	if len(bucket) >= rl.max {
		s.buckets[deviceID] = bucket
		return false
	}

	s.buckets[deviceID] = append(bucket, now.UnixNano())
	return true
}

// Sweep drops device buckets whose admissions have all aged out of the
// window and compacts the rest, bounding the key set and the backing
// arrays trimmed off by Admit. Returns the number of devices removed.
func (rl *RateLimiter) Sweep(now time.Time) int {
	cutoff := now.Add(-rl.window).UnixNano()
	removed := 0

	for i := range rl.shards {
		s := &rl.shards[i]
		s.mu.Lock()
		for deviceID, bucket := range s.buckets {
			j := 0
			for j < len(bucket) && bucket[j] < cutoff {
				j++
			}
			if j == len(bucket) {
				delete(s.buckets, deviceID)
				removed++
				continue
			}
			if j > 0 {
				compacted := make([]int64, len(bucket)-j)
				copy(compacted, bucket[j:])
				s.buckets[deviceID] = compacted
			}
		}
		s.mu.Unlock()
	}

	return removed
}

// StartSweeper launches a background goroutine that sweeps idle device
// buckets once per window.
func (rl *RateLimiter) StartSweeper() {
	go func() {
		ticker := time.NewTicker(rl.window)
		defer ticker.Stop()

		for t := range ticker.C {
			if n := rl.Sweep(t); n > 0 {
				log.Printf("rate limiter sweep removed %d idle device buckets", n)
			}
		}
	}()
}
