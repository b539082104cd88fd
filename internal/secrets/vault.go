package secrets

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/hashicorp/vault/api"
)

const (
	DefaultVaultMount = "secret"
	// vaultValueField поле KV-записи, в котором лежит секрет
	vaultValueField = "value"
)

type VaultConfig struct {
	Address string
	Token   string
	// Mount точка монтирования KV v2
	Mount string
	// Prefix общий префикс ключей внутри mount
	Prefix string
}

// VaultStore читает секреты из KV v2 движка Vault
type VaultStore struct {
	logical *api.Logical
	mount   string
	prefix  string
}

var _ Store = (*VaultStore)(nil)

func NewVaultStore(cfg VaultConfig) (*VaultStore, error) {
	if cfg.Token == "" {
		return nil, errors.New("vault token is empty")
	}
	if cfg.Mount == "" {
		cfg.Mount = DefaultVaultMount
	}

	vaultCfg := api.DefaultConfig()
	if cfg.Address != "" {
		vaultCfg.Address = cfg.Address
	}

	client, err := api.NewClient(vaultCfg)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	return &VaultStore{
		logical: client.Logical(),
		mount:   strings.Trim(cfg.Mount, "/"),
		prefix:  strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (s *VaultStore) Get(ctx context.Context, key string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("secret key is empty")
	}

	secretPath := path.Join(s.mount, "data", s.prefix, key)
	secret, err := s.logical.ReadWithContext(ctx, secretPath)
	if err != nil {
		return "", fmt.Errorf("read vault secret %q: %w", secretPath, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("vault secret %q: %w", secretPath, ErrNotFound)
	}

	// KV v2 кладёт поля записи в data.data; удалённая версия даёт data=null
	fields, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("vault secret %q: %w", secretPath, ErrNotFound)
	}
	value, ok := fields[vaultValueField].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("vault secret %q has no %q field: %w", secretPath, vaultValueField, ErrNotFound)
	}

	return strings.TrimSpace(value), nil
}
