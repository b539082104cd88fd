package ledger

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/rpc"
)

// classify переводит ошибку go-ethereum в таксономию apperr
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperr.New(apperr.KindNetwork, op, err)
	case errors.Is(err, ethereum.NotFound):
		return apperr.New(apperr.KindNotFound, op, err)
	}

	// Узел ответил JSON-RPC ошибкой: транзакция или вызов отклонены
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		if isRevert(err.Error()) {
			return apperr.New(apperr.KindContractRevert, op, err)
		}
		return apperr.New(apperr.KindRejected, op, err)
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return apperr.New(apperr.KindNetwork, op, err)
	}

	if isRevert(err.Error()) {
		return apperr.New(apperr.KindContractRevert, op, err)
	}
	if isRejection(err.Error()) {
		return apperr.New(apperr.KindRejected, op, err)
	}

	return apperr.New(apperr.KindNetwork, op, err)
}

func isRevert(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "execution reverted")
}

// Сообщения txpool, которые узел возвращает на отклонённую транзакцию
var rejectionMarkers = []string{
	"nonce too low",
	"nonce too high",
	"replacement transaction underpriced",
	"transaction underpriced",
	"insufficient funds",
	"intrinsic gas too low",
	"exceeds block gas limit",
	"already known",
	"invalid sender",
}

func isRejection(msg string) bool {
	msg = strings.ToLower(msg)
	for _, marker := range rejectionMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
