package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time           { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, perMinute int) (*MemoryRateLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewMemoryRateLimiter(GenerationConfig(perMinute))
	rl.now = clock.now
	t.Cleanup(rl.Close)
	return rl, clock
}

func TestAllowWithinLimit(t *testing.T) {
	rl, _ := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		allowed, info := rl.Allow("10.0.0.1")
		require.True(t, allowed, "request %d", i)
		assert.Equal(t, 2-i, info.Remaining)
	}

	allowed, info := rl.Allow("10.0.0.1")
	assert.False(t, allowed)
	assert.True(t, info.Banned)
	assert.Equal(t, time.Minute, info.RetryAfter)
}

func TestAllowTracksClientsSeparately(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)

	allowed, _ := rl.Allow("a")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("a")
	assert.False(t, allowed)

	allowed, _ = rl.Allow("b")
	assert.True(t, allowed)
}

func TestAllowResetsAfterBan(t *testing.T) {
	rl, clock := newTestLimiter(t, 1)

	rl.Allow("a")
	allowed, _ := rl.Allow("a")
	require.False(t, allowed)

	clock.advance(30 * time.Second)
	allowed, info := rl.Allow("a")
	assert.False(t, allowed)
	assert.Equal(t, 30*time.Second, info.RetryAfter)

	clock.advance(31 * time.Second)
	allowed, _ = rl.Allow("a")
	assert.True(t, allowed)
}

func TestAllowResetsAfterWindow(t *testing.T) {
	rl, clock := newTestLimiter(t, 2)

	rl.Allow("a")
	rl.Allow("a")
	clock.advance(61 * time.Second)

	allowed, info := rl.Allow("a")
	assert.True(t, allowed)
	assert.Equal(t, 1, info.Remaining)
}

func TestCleanupRemovesExpired(t *testing.T) {
	rl, clock := newTestLimiter(t, 5)

	rl.Allow("a")
	clock.advance(2 * time.Minute)
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.attempts)
}

func TestGenerationConfigFloor(t *testing.T) {
	assert.Equal(t, 1, GenerationConfig(0).MaxAttempts)
	assert.Equal(t, 30, GenerationConfig(30).MaxAttempts)
}

func TestCloseIsIdempotent(t *testing.T) {
	rl := NewMemoryRateLimiter(GenerationConfig(1))
	rl.Close()
	rl.Close()
}

func TestGetClientIPIgnoresForwardingHeaders(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	r.RemoteAddr = "9.9.9.9:1234"
	r.Header.Set("X-Forwarded-For", "1.1.1.1")
	r.Header.Set("X-Real-IP", "3.3.3.3")
	assert.Equal(t, "9.9.9.9", GetClientIP(r))

	r.RemoteAddr = "9.9.9.9"
	assert.Equal(t, "9.9.9.9", GetClientIP(r))
}

func TestIPResolverClientIP(t *testing.T) {
	resolver, err := NewIPResolver([]string{"10.0.0.0/8", "192.168.1.5"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{name: "untrusted peer spoofing", remote: "9.9.9.9:1", headers: map[string]string{"X-Forwarded-For": "1.1.1.1"}, want: "9.9.9.9"},
		{name: "untrusted peer real ip", remote: "9.9.9.9:1", headers: map[string]string{"X-Real-IP": "3.3.3.3"}, want: "9.9.9.9"},
		{name: "trusted proxy", remote: "10.0.0.2:1", headers: map[string]string{"X-Forwarded-For": "1.1.1.1"}, want: "1.1.1.1"},
		{name: "client prepended fake hop", remote: "10.0.0.2:1", headers: map[string]string{"X-Forwarded-For": "6.6.6.6, 1.1.1.1"}, want: "1.1.1.1"},
		{name: "proxy chain", remote: "10.0.0.2:1", headers: map[string]string{"X-Forwarded-For": "1.1.1.1, 192.168.1.5, 10.1.1.1"}, want: "1.1.1.1"},
		{name: "all hops trusted", remote: "10.0.0.2:1", headers: map[string]string{"X-Forwarded-For": "10.3.3.3"}, want: "10.3.3.3"},
		{name: "garbage hop", remote: "10.0.0.2:1", headers: map[string]string{"X-Forwarded-For": "rotate-me"}, want: "10.0.0.2"},
		{name: "trusted real ip", remote: "192.168.1.5:1", headers: map[string]string{"X-Real-IP": "3.3.3.3"}, want: "3.3.3.3"},
		{name: "trusted no headers", remote: "10.0.0.2:1", want: "10.0.0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, resolver.ClientIP(r))
		})
	}
}

func TestIPResolverEmptyTrustsNobody(t *testing.T) {
	resolver, err := NewIPResolver(nil)
	require.NoError(t, err)

	r := httptest.NewRequest("POST", "/", nil)
	r.RemoteAddr = "127.0.0.1:80"
	r.Header.Set("X-Forwarded-For", "1.1.1.1")
	assert.Equal(t, "127.0.0.1", resolver.ClientIP(r))

	var nilResolver *IPResolver
	assert.Equal(t, "127.0.0.1", nilResolver.ClientIP(r))
}

func TestNewIPResolverRejectsInvalid(t *testing.T) {
	_, err := NewIPResolver([]string{"not-an-ip"})
	assert.Error(t, err)
	_, err = NewIPResolver([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}
