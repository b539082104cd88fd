package service

import (
	"context"
	"sync"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
)

// idempotencyCache помнит результаты по Idempotency-Key до перезапуска процесса.
// Конкурентный дубликат ждёт первый вызов, пока не отменён его собственный ctx.
type idempotencyCache struct {
	mu      sync.Mutex
	entries map[string]*idempotencyEntry
}

type idempotencyEntry struct {
	done  chan struct{}
	value interface{}
	err   error
}

func newIdempotencyCache() *idempotencyCache {
	return &idempotencyCache{entries: make(map[string]*idempotencyEntry)}
}

// idempotent выполняет fn один раз на ключ. Если keep вернул false (ни одна
// транзакция не ушла), запись удаляется и клиент может повторить запрос.
func idempotent[T any](ctx context.Context, c *idempotencyCache, workflow, key string, keep func(T) bool, fn func() (T, error)) (T, error) {
	if key == "" {
		return fn()
	}
	full := workflow + "/" + key

	c.mu.Lock()
	if e, ok := c.entries[full]; ok {
		c.mu.Unlock()
		select {
		case <-e.done:
			value, _ := e.value.(T)
			return value, e.err
		case <-ctx.Done():
			// Первый вызов продолжается; отказываемся только от ожидания
			var zero T
			return zero, apperr.New(apperr.KindNetwork, "await in-flight "+workflow, ctx.Err())
		}
	}
	e := &idempotencyEntry{done: make(chan struct{})}
	c.entries[full] = e
	c.mu.Unlock()

	defer close(e.done)

	value, err := fn()
	e.value, e.err = value, err

	if !keep(value) {
		c.mu.Lock()
		delete(c.entries, full)
		c.mu.Unlock()
	}
	return value, err
}
