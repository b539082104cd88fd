package ledger

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// AccountLocks критическая секция на аккаунт: получение nonce, подпись и отправка
// для одного аккаунта не должны пересекаться между воркфлоу.
type AccountLocks struct {
	mu    sync.Mutex
	locks map[common.Address]chan struct{}
}

func NewAccountLocks() *AccountLocks {
	return &AccountLocks{
		locks: make(map[common.Address]chan struct{}),
	}
}

// Lock захватывает блокировку аккаунта или возвращает ошибку контекста
func (l *AccountLocks) Lock(ctx context.Context, account common.Address) (func(), error) {
	sem := l.semaphore(account)

	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-sem })
	}, nil
}

func (l *AccountLocks) semaphore(account common.Address) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	sem, ok := l.locks[account]
	if !ok {
		sem = make(chan struct{}, 1)
		l.locks[account] = sem
	}
	return sem
}
