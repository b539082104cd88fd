// Package ledgertest содержит in-memory леджер для тестов оркестратора
package ledgertest

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/Freeeeeet/tutorchain/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainID идентификатор сети фейкового леджера
var ChainID = big.NewInt(1337)

// Ledger ведёт nonce по аккаунтам и отклоняет транзакции с неверным nonce,
// как это делает txpool узла.
type Ledger struct {
	mu        sync.Mutex
	nonces    map[common.Address]uint64
	submitted []*types.Transaction
	seen      map[uint64]map[common.Address]int
	failures  map[string]error
	receipts  map[common.Hash]*types.Receipt
	signer    types.Signer

	// SequenceDelay задержка внутри SequenceNumber, чтобы спровоцировать гонки
	SequenceDelay time.Duration
	// CallFn обрабатывает read-only вызовы
	CallFn func(contract common.Address, data []byte) ([]byte, error)
	// SequenceCalls число вызовов SequenceNumber
	SequenceCalls int
}

var _ ledger.Client = (*Ledger)(nil)

func New() *Ledger {
	return &Ledger{
		nonces:   make(map[common.Address]uint64),
		seen:     make(map[uint64]map[common.Address]int),
		failures: make(map[string]error),
		receipts: make(map[common.Hash]*types.Receipt),
		signer:   types.LatestSignerForChainID(ChainID),
	}
}

// FailSelector заставляет отправку транзакций с данным селектором падать с err
func (l *Ledger) FailSelector(selector []byte, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[string(selector)] = err
}

// Submitted возвращает копию отправленных транзакций
func (l *Ledger) Submitted() []*types.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*types.Transaction, len(l.submitted))
	copy(out, l.submitted)
	return out
}

// SubmittedWithSelector число принятых транзакций с данным селектором
func (l *Ledger) SubmittedWithSelector(selector []byte) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, tx := range l.submitted {
		if len(tx.Data()) >= 4 && bytes.Equal(tx.Data()[:4], selector) {
			n++
		}
	}
	return n
}

// DuplicateNonces число случаев, когда один nonce одного аккаунта был отправлен повторно
func (l *Ledger) DuplicateNonces() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	dups := 0
	for _, byAccount := range l.seen {
		for _, n := range byAccount {
			if n > 1 {
				dups += n - 1
			}
		}
	}
	return dups
}

// SetReceipt задаёт квитанцию для хэша
func (l *Ledger) SetReceipt(hash common.Hash, receipt *types.Receipt) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.receipts[hash] = receipt
}

func (l *Ledger) SequenceNumber(ctx context.Context, account common.Address) (uint64, error) {
	l.mu.Lock()
	l.SequenceCalls++
	nonce := l.nonces[account]
	delay := l.SequenceDelay
	l.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return 0, apperr.New(apperr.KindNetwork, "get sequence number", ctx.Err())
		}
	}
	return nonce, nil
}

func (l *Ledger) SubmitTransaction(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	if err := ctx.Err(); err != nil {
		return common.Hash{}, apperr.New(apperr.KindNetwork, "submit transaction", err)
	}

	sender, err := types.Sender(l.signer, tx)
	if err != nil {
		return common.Hash{}, apperr.New(apperr.KindRejected, "submit transaction", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.seen[tx.Nonce()] == nil {
		l.seen[tx.Nonce()] = make(map[common.Address]int)
	}
	l.seen[tx.Nonce()][sender]++

	if len(tx.Data()) >= 4 {
		if ferr, ok := l.failures[string(tx.Data()[:4])]; ok {
			return common.Hash{}, ferr
		}
	}

	expected := l.nonces[sender]
	if tx.Nonce() != expected {
		return common.Hash{}, apperr.New(apperr.KindRejected, "submit transaction",
			fmt.Errorf("nonce too low: next nonce %d, tx nonce %d", expected, tx.Nonce()))
	}

	l.nonces[sender] = expected + 1
	l.submitted = append(l.submitted, tx)
	return tx.Hash(), nil
}

func (l *Ledger) CallReadOnly(ctx context.Context, contract common.Address, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.New(apperr.KindNetwork, "call read-only", err)
	}
	if l.CallFn == nil {
		return nil, apperr.New(apperr.KindContractRevert, "call read-only", fmt.Errorf("execution reverted"))
	}
	return l.CallFn(contract, data)
}

func (l *Ledger) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (l *Ledger) ChainID(context.Context) (*big.Int, error) {
	return new(big.Int).Set(ChainID), nil
}

func (l *Ledger) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	receipt, ok := l.receipts[hash]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "get receipt", fmt.Errorf("receipt for %s not found", hash.Hex()))
	}
	return receipt, nil
}
