package ledger

import (
	"context"
	"math/big"
	"time"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Client транспорт к узлу леджера. Доменных сущностей не хранит.
//
// SequenceNumber и SubmitTransaction нельзя вызывать конкурентно для одного
// аккаунта без внешней блокировки (см. AccountLocks).
type Client interface {
	SequenceNumber(ctx context.Context, account common.Address) (uint64, error)
	SubmitTransaction(ctx context.Context, tx *types.Transaction) (common.Hash, error)
	CallReadOnly(ctx context.Context, contract common.Address, data []byte) ([]byte, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Backend подмножество ethclient.Client, которым пользуется адаптер
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

var _ Backend = (*ethclient.Client)(nil)

// Options параметры адаптера
type Options struct {
	// CallTimeout применяется к каждому сетевому вызову; 0 означает без таймаута
	CallTimeout time.Duration
	// ReadRetries число повторов read-only вызовов при сетевых ошибках
	ReadRetries uint64
	// RetryBase начальная задержка экспоненциального backoff
	RetryBase time.Duration
}

// EthClient адаптер поверх go-ethereum
type EthClient struct {
	backend Backend
	closer  func()
	opts    Options
	logger  *zap.Logger
}

var _ Client = (*EthClient)(nil)

// Dial подключается к JSON-RPC узлу
func Dial(ctx context.Context, rpcURL string, opts Options, logger *zap.Logger) (*EthClient, error) {
	rpcClient, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, apperr.New(apperr.KindNetwork, "dial ledger node", err)
	}

	c := NewEthClient(rpcClient, opts, logger)
	c.closer = rpcClient.Close
	return c, nil
}

// NewEthClient создаёт адаптер поверх готового backend
func NewEthClient(backend Backend, opts Options, logger *zap.Logger) *EthClient {
	if opts.RetryBase <= 0 {
		opts.RetryBase = 200 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EthClient{
		backend: backend,
		opts:    opts,
		logger:  logger,
	}
}

// Close закрывает соединение с узлом
func (c *EthClient) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// SequenceNumber возвращает следующий неиспользованный nonce аккаунта
func (c *EthClient) SequenceNumber(ctx context.Context, account common.Address) (uint64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	nonce, err := c.backend.PendingNonceAt(ctx, account)
	if err != nil {
		return 0, classify("get sequence number", err)
	}
	return nonce, nil
}

// SubmitTransaction отправляет подписанную транзакцию и сразу возвращает её хэш.
// Повторов нет: повторная отправка payable транзакции может списать оплату дважды.
func (c *EthClient) SubmitTransaction(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.backend.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, classify("submit transaction", err)
	}
	return tx.Hash(), nil
}

// CallReadOnly выполняет eth_call против текущего состояния
func (c *EthClient) CallReadOnly(ctx context.Context, contract common.Address, data []byte) ([]byte, error) {
	var out []byte
	err := c.retryRead(ctx, "call read-only", func(ctx context.Context) error {
		var err error
		out, err = c.backend.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EthClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	var price *big.Int
	err := c.retryRead(ctx, "suggest gas price", func(ctx context.Context) error {
		var err error
		price, err = c.backend.SuggestGasPrice(ctx)
		return err
	})
	return price, err
}

func (c *EthClient) ChainID(ctx context.Context) (*big.Int, error) {
	var id *big.Int
	err := c.retryRead(ctx, "get chain id", func(ctx context.Context) error {
		var err error
		id, err = c.backend.ChainID(ctx)
		return err
	})
	return id, err
}

// TransactionReceipt возвращает квитанцию; not_found пока транзакция не включена в блок
func (c *EthClient) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	receipt, err := c.backend.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, classify("get receipt", err)
	}
	return receipt, nil
}

// retryRead повторяет только сетевые ошибки; revert и прочие отказы возвращаются сразу
func (c *EthClient) retryRead(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(c.opts.ReadRetries, retry.NewExponential(c.opts.RetryBase))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		callCtx, cancel := c.withTimeout(ctx)
		defer cancel()

		err := classify(op, fn(callCtx))
		if err == nil {
			return nil
		}
		if apperr.KindOf(err) == apperr.KindNetwork && ctx.Err() == nil {
			c.logger.Warn("Read-only ledger call failed, retrying",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *EthClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.CallTimeout > 0 {
		return context.WithTimeout(ctx, c.opts.CallTimeout)
	}
	return ctx, func() {}
}
