package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckUnknownKeyNotBlocked(t *testing.T) {
	l := New()
	assert.False(t, l.Check("10.0.0.1", 5, 5*time.Minute))
}

func TestBlockedAtMaxAttempts(t *testing.T) {
	l := New()
	key := "login:alice@example.com"

	for i := 0; i < 4; i++ {
		l.RecordAttempt(key)
		assert.False(t, l.Check(key, 5, 5*time.Minute))
	}
	l.RecordAttempt(key)
	assert.True(t, l.Check(key, 5, 5*time.Minute))
}

func TestRecordSuccessClears(t *testing.T) {
	l := New()
	key := "login:10.0.0.1"

	for i := 0; i < 5; i++ {
		l.RecordAttempt(key)
	}
	require.True(t, l.Check(key, 5, 5*time.Minute))

	l.RecordSuccess(key)
	assert.False(t, l.Check(key, 5, 5*time.Minute))
	assert.Equal(t, 0, l.AttemptCount(key))
}

func TestResetAttemptsClears(t *testing.T) {
	l := New()
	key := "login:bob@example.com"

	for i := 0; i < 5; i++ {
		l.RecordAttempt(key)
	}
	l.ResetAttempts(key)
	assert.False(t, l.Check(key, 5, 5*time.Minute))
}

func TestWindowExpiryUnblocks(t *testing.T) {
	current := time.Now()
	l := New(withClock(func() time.Time { return current }))
	key := "login:carol@example.com"

	for i := 0; i < 5; i++ {
		l.RecordAttempt(key)
	}
	require.True(t, l.Check(key, 5, 5*time.Minute))

	// Attempts age out of the window without being cleared.
	current = current.Add(6 * time.Minute)
	assert.False(t, l.Check(key, 5, 5*time.Minute))
	assert.Equal(t, 5, l.AttemptCount(key))
}

func TestKeysIndependent(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		l.RecordAttempt("login:10.0.0.1")
	}
	assert.True(t, l.Check("login:10.0.0.1", 5, 5*time.Minute))
	assert.False(t, l.Check("login:10.0.0.2", 5, 5*time.Minute))
}

// N concurrent writers to one key must not lose a single increment.
func TestConcurrentRecordAttemptNoLostUpdates(t *testing.T) {
	l := New()
	key := "login:shared"
	const n = 1000

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			l.RecordAttempt(key)
		}()
	}
	wg.Wait()

	assert.Equal(t, n, l.AttemptCount(key))
	assert.True(t, l.Check(key, n, time.Hour))
	assert.False(t, l.Check(key, n+1, time.Hour))
}

func TestConcurrentMixedAcrossKeys(t *testing.T) {
	l := New()
	const keys = 50
	const perKey = 20

	var wg sync.WaitGroup
	for k := 0; k < keys; k++ {
		key := fmt.Sprintf("login:10.0.0.%d", k)
		for i := 0; i < perKey; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				l.RecordAttempt(key)
				l.Check(key, perKey, time.Hour)
			}()
		}
	}
	wg.Wait()

	for k := 0; k < keys; k++ {
		key := fmt.Sprintf("login:10.0.0.%d", k)
		assert.Equal(t, perKey, l.AttemptCount(key))
	}
}

func TestSweepDropsStaleKeys(t *testing.T) {
	current := time.Now()
	l := New(withClock(func() time.Time { return current }), WithRetention(time.Hour))

	l.RecordAttempt("stale")
	current = current.Add(2 * time.Hour)
	l.RecordAttempt("fresh")

	l.sweep()

	assert.Equal(t, 0, l.AttemptCount("stale"))
	assert.Equal(t, 1, l.AttemptCount("fresh"))
}

func TestStartStop(t *testing.T) {
	l := New(WithSweepInterval(10 * time.Millisecond))
	l.Start()
	l.RecordAttempt("k")
	time.Sleep(30 * time.Millisecond)
	l.Stop()
	l.Stop() // idempotent

	// Recent attempts survive the sweep.
	assert.Equal(t, 1, l.AttemptCount("k"))
}
