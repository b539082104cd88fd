package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// EnvStore читает секреты из переменных окружения.
// Ключ "account/signer" превращается в ACCOUNT_SIGNER.
type EnvStore struct {
	lookup func(string) (string, bool)
}

var _ Store = (*EnvStore)(nil)

func NewEnvStore() *EnvStore {
	return &EnvStore{lookup: os.LookupEnv}
}

func (s *EnvStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := EnvName(key)
	if name == "" {
		return "", errors.New("secret key is empty")
	}

	value, ok := s.lookup(name)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("env secret %s: %w", name, ErrNotFound)
	}
	return strings.TrimSpace(value), nil
}

// EnvName имя переменной окружения для ключа секрета
func EnvName(key string) string {
	key = strings.TrimSpace(key)
	replacer := strings.NewReplacer("/", "_", "-", "_", ".", "_")
	return strings.ToUpper(replacer.Replace(key))
}
