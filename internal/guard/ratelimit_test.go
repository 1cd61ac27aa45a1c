package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("user-1"), "call %d should be allowed", i)
	}
	assert.False(t, rl.Allow("user-1"), "fourth call should be throttled")
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	assert.True(t, rl.Allow("user-1"))
	assert.False(t, rl.Allow("user-1"))
	assert.True(t, rl.Allow("user-2"))
}

func TestRateLimiterWindowExpires(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	assert.True(t, rl.Allow("user-1"))
	assert.False(t, rl.Allow("user-1"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.Allow("user-1"), "window should have expired")
}
