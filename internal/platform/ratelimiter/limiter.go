package ratelimiter

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultIdleTTL = 10 * time.Minute
	// Раз в столько проверок вычищаем простаивающие ключи
	sweepEvery = 512
)

// KeyLimiter token bucket на каждый ключ (IP клиента, чат бота)
type KeyLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu     sync.Mutex
	bucket map[string]*bucket
	checks uint64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New возвращает nil при неположительных rps или burst; nil-лимитер пропускает всё
func New(rps float64, burst int, idleTTL time.Duration) *KeyLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	return &KeyLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		bucket:  make(map[string]*bucket),
	}
}

// Allow списывает один токен ключа на момент now
func (l *KeyLimiter) Allow(key string, now time.Time) bool {
	if l == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bucket[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.bucket[key] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)

	l.checks++
	if l.checks%sweepEvery == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.bucket {
			if v.lastSeen.Before(cutoff) {
				delete(l.bucket, k)
			}
		}
	}

	return allowed
}

// Len число отслеживаемых ключей
func (l *KeyLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.bucket)
}

// ClientKey ключ лимита для HTTP запроса: хост из RemoteAddr
func ClientKey(r *http.Request) string {
	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return "ip:unknown"
	}
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return "ip:" + remote
	}
	if host == "" {
		return "ip:unknown"
	}
	return "ip:" + host
}
