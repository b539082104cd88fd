package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/Freeeeeet/tutorchain/internal/secrets"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer поставщик учётных данных: умеет только подписывать.
// Ключ наружу не отдаётся.
type Signer interface {
	Address() common.Address
	SignTransaction(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// KeySigner подписывает транзакции ECDSA ключом secp256k1
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

var _ Signer = (*KeySigner)(nil)

// NewKeySigner разбирает hex-ключ (с префиксом 0x или без)
func NewKeySigner(hexKey string) (*KeySigner, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, apperr.New(apperr.KindInvalidCredential, "parse signing key", errors.New("key is empty"))
	}

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		// Текст ошибки go-ethereum не содержит сам ключ
		return nil, apperr.New(apperr.KindInvalidCredential, "parse signing key", err)
	}

	return &KeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// LoadSigner читает ключ из хранилища секретов
func LoadSigner(ctx context.Context, store secrets.Store, ref string) (*KeySigner, error) {
	raw, err := store.Get(ctx, ref)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidCredential, "load signing key", fmt.Errorf("secret %q: %w", ref, err))
	}
	return NewKeySigner(raw)
}

func (s *KeySigner) Address() common.Address {
	return s.address
}

// SignTransaction локальная операция, сеть не нужна
func (s *KeySigner) SignTransaction(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, apperr.Validation("sign transaction", "chain id must be positive")
	}

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidCredential, "sign transaction", err)
	}
	return signed, nil
}
