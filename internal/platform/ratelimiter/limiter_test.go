package ratelimiter

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowBurstThenRefill(t *testing.T) {
	t.Parallel()

	l := New(1, 2, time.Minute)
	require.NotNil(t, l)

	now := time.Unix(1_700_000_000, 0)
	assert.True(t, l.Allow("ip:1", now))
	assert.True(t, l.Allow("ip:1", now))
	assert.False(t, l.Allow("ip:1", now))

	// Другой ключ со своим бакетом
	assert.True(t, l.Allow("ip:2", now))

	assert.True(t, l.Allow("ip:1", now.Add(time.Second)))
}

func TestNilLimiterAllowsEverything(t *testing.T) {
	t.Parallel()

	l := New(0, 10, 0)
	assert.Nil(t, l)
	assert.True(t, l.Allow("k", time.Now()))
	assert.Zero(t, l.Len())
}

func TestIdleKeysAreEvicted(t *testing.T) {
	t.Parallel()

	l := New(100, 100, time.Second)
	start := time.Unix(1_700_000_000, 0)
	l.Allow("old", start)

	later := start.Add(time.Hour)
	for i := 0; i < sweepEvery; i++ {
		l.Allow("fresh", later)
	}
	assert.Equal(t, 1, l.Len())
}

func TestClientKey(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.7:5123"
	assert.Equal(t, "ip:10.0.0.7", ClientKey(r))

	r.RemoteAddr = "garbage"
	assert.Equal(t, "ip:garbage", ClientKey(r))

	r.RemoteAddr = ""
	assert.Equal(t, "ip:unknown", ClientKey(r))
}
