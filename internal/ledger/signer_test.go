package ledger

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/Freeeeeet/tutorchain/internal/secrets"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Тестовый ключ из документации hardhat, средств на нём нет
const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestNewKeySignerDerivesAddress(t *testing.T) {
	t.Parallel()

	s, err := NewKeySigner("0x" + testKey)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), s.Address())
}

func TestNewKeySignerRejectsMalformedKey(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"", "zz", "0x1234"} {
		_, err := NewKeySigner(key)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ErrInvalidCredential)
	}
}

func TestSignTransactionRecoversSender(t *testing.T) {
	t.Parallel()

	s, err := NewKeySigner(testKey)
	require.NoError(t, err)

	chainID := big.NewInt(656476)
	tx := types.NewTx(&types.LegacyTx{Nonce: 4, Gas: 200000, GasPrice: big.NewInt(50)})

	signed, err := s.SignTransaction(tx, chainID)
	require.NoError(t, err)

	sender, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), sender)
	assert.Equal(t, uint64(4), signed.Nonce())

	_, err = s.SignTransaction(tx, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestLoadSignerFromFileStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "signer"), []byte(testKey+"\n"), 0o600))
	store := secrets.NewKeyFileStore(dir)

	s, err := LoadSigner(context.Background(), store, "signer")
	require.NoError(t, err)

	key, err := crypto.HexToECDSA(testKey)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), s.Address())

	_, err = LoadSigner(context.Background(), store, "missing")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredential)
	assert.ErrorIs(t, err, secrets.ErrNotFound)
}

func TestAccountLocksSerializeSameAccount(t *testing.T) {
	t.Parallel()

	locks := NewAccountLocks()
	account := common.HexToAddress("0x01")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locks.Lock(context.Background(), account)
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestAccountLocksRespectContext(t *testing.T) {
	t.Parallel()

	locks := NewAccountLocks()
	account := common.HexToAddress("0x02")

	unlock, err := locks.Lock(context.Background(), account)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = locks.Lock(ctx, account)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Другой аккаунт не блокируется
	other, err := locks.Lock(context.Background(), common.HexToAddress("0x03"))
	require.NoError(t, err)
	other()

	unlock()
	unlock()
	again, err := locks.Lock(context.Background(), account)
	require.NoError(t, err)
	again()
}
