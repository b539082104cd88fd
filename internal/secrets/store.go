package secrets

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound секрет отсутствует в хранилище
var ErrNotFound = errors.New("secret not found")

// Store источник секретов, из которого читается ключ подписи
type Store interface {
	Get(ctx context.Context, key string) (string, error)
}

// ChainStore опрашивает хранилища по порядку и возвращает первый найденный секрет
type ChainStore struct {
	stores []Store
}

var _ Store = (*ChainStore)(nil)

var errNoStores = errors.New("secret store chain is empty")

// NewChainStore собирает цепочку; nil-элементы пропускаются
func NewChainStore(stores ...Store) (*ChainStore, error) {
	chain := &ChainStore{}
	for _, s := range stores {
		if s != nil {
			chain.stores = append(chain.stores, s)
		}
	}
	if len(chain.stores) == 0 {
		return nil, errNoStores
	}
	return chain, nil
}

func (c *ChainStore) Get(ctx context.Context, key string) (string, error) {
	var errs []error
	for i, s := range c.stores {
		value, err := s.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		errs = append(errs, fmt.Errorf("store %d: %w", i, err))
	}
	return "", errors.Join(errs...)
}
