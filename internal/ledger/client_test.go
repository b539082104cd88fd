package ledger

import (
	"context"
	"errors"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *mockBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	args := m.Called(ctx, msg, blockNumber)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

func (m *mockBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	price, _ := args.Get(0).(*big.Int)
	return price, args.Error(1)
}

func (m *mockBackend) ChainID(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	id, _ := args.Get(0).(*big.Int)
	return id, args.Error(1)
}

func (m *mockBackend) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	args := m.Called(ctx, hash)
	r, _ := args.Get(0).(*types.Receipt)
	return r, args.Error(1)
}

// jsonRPCError повторяет форму ошибки, которую возвращает rpc клиент go-ethereum
type jsonRPCError struct {
	code int
	msg  string
}

func (e *jsonRPCError) Error() string  { return e.msg }
func (e *jsonRPCError) ErrorCode() int { return e.code }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

var contractAddr = common.HexToAddress("0x00000000000000000000000000000000000000c1")

func newTestClient(backend Backend, retries uint64) *EthClient {
	return NewEthClient(backend, Options{ReadRetries: retries, RetryBase: time.Millisecond}, nil)
}

func TestSubmitTransactionClassifiesErrors(t *testing.T) {
	t.Parallel()

	tx := types.NewTx(&types.LegacyTx{Nonce: 1, Gas: 21000, GasPrice: big.NewInt(1)})

	testCases := []struct {
		name string
		err  error
		want *apperr.Error
	}{
		{name: "nonce too low", err: &jsonRPCError{code: -32000, msg: "nonce too low"}, want: apperr.ErrRejected},
		{name: "underpriced", err: &jsonRPCError{code: -32000, msg: "transaction underpriced"}, want: apperr.ErrRejected},
		{name: "revert", err: &jsonRPCError{code: 3, msg: "execution reverted: not owner"}, want: apperr.ErrContractRevert},
		{name: "timeout", err: timeoutErr{}, want: apperr.ErrNetwork},
		{name: "deadline", err: context.DeadlineExceeded, want: apperr.ErrNetwork},
		{name: "plain rejection", err: errors.New("insufficient funds for gas * price + value"), want: apperr.ErrRejected},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			backend := &mockBackend{}
			backend.On("SendTransaction", mock.Anything, tx).Return(tc.err).Once()

			_, err := newTestClient(backend, 3).SubmitTransaction(context.Background(), tx)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			backend.AssertNumberOfCalls(t, "SendTransaction", 1)
		})
	}
}

func TestSubmitTransactionReturnsHash(t *testing.T) {
	t.Parallel()

	tx := types.NewTx(&types.LegacyTx{Nonce: 3, Gas: 21000, GasPrice: big.NewInt(1)})
	backend := &mockBackend{}
	backend.On("SendTransaction", mock.Anything, tx).Return(nil)

	hash, err := newTestClient(backend, 0).SubmitTransaction(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), hash)
}

func TestCallReadOnlyRetriesNetworkErrors(t *testing.T) {
	t.Parallel()

	backend := &mockBackend{}
	backend.On("CallContract", mock.Anything, mock.Anything, mock.Anything).Return(nil, timeoutErr{}).Twice()
	backend.On("CallContract", mock.Anything, mock.Anything, mock.Anything).Return([]byte{0x01}, nil).Once()

	out, err := newTestClient(backend, 3).CallReadOnly(context.Background(), contractAddr, []byte{0xaa})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, out)
	backend.AssertNumberOfCalls(t, "CallContract", 3)
}

func TestCallReadOnlyDoesNotRetryRevert(t *testing.T) {
	t.Parallel()

	backend := &mockBackend{}
	backend.On("CallContract", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &jsonRPCError{code: 3, msg: "execution reverted"})

	_, err := newTestClient(backend, 3).CallReadOnly(context.Background(), contractAddr, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrContractRevert)
	backend.AssertNumberOfCalls(t, "CallContract", 1)
}

func TestCallReadOnlyGivesUpAfterRetries(t *testing.T) {
	t.Parallel()

	backend := &mockBackend{}
	backend.On("CallContract", mock.Anything, mock.Anything, mock.Anything).Return(nil, timeoutErr{})

	_, err := newTestClient(backend, 2).CallReadOnly(context.Background(), contractAddr, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNetwork)
	backend.AssertNumberOfCalls(t, "CallContract", 3)
}

func TestCallReadOnlyTargetsContract(t *testing.T) {
	t.Parallel()

	backend := &mockBackend{}
	backend.On("CallContract", mock.Anything, mock.MatchedBy(func(msg ethereum.CallMsg) bool {
		return msg.To != nil && *msg.To == contractAddr && len(msg.Data) == 1
	}), (*big.Int)(nil)).Return([]byte{}, nil)

	_, err := newTestClient(backend, 0).CallReadOnly(context.Background(), contractAddr, []byte{0x05})
	require.NoError(t, err)
	backend.AssertExpectations(t)
}

func TestTransactionReceiptPendingIsNotFound(t *testing.T) {
	t.Parallel()

	backend := &mockBackend{}
	backend.On("TransactionReceipt", mock.Anything, common.Hash{0x01}).Return(nil, ethereum.NotFound)

	_, err := newTestClient(backend, 0).TransactionReceipt(context.Background(), common.Hash{0x01})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCallTimeoutApplied(t *testing.T) {
	t.Parallel()

	backend := &mockBackend{}
	backend.On("PendingNonceAt", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), contractAddr).Return(uint64(9), nil)

	c := NewEthClient(backend, Options{CallTimeout: time.Second}, nil)
	nonce, err := c.SequenceNumber(context.Background(), contractAddr)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), nonce)
}
