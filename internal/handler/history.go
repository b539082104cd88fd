package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/Freeeeeet/tutorchain/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	defaultResultsLimit = 20
	maxResultsLimit     = 100
)

var errJournalDisabled = errors.New("transaction journal is disabled")

// TxHistory чтение журнала транзакций
type TxHistory interface {
	GetByHash(ctx context.Context, hash string) (*model.TxRecord, error)
	ListByWorkflow(ctx context.Context, workflowID string) ([]*model.TxRecord, error)
}

// QuizHistory чтение результатов квизов
type QuizHistory interface {
	ListByLearner(ctx context.Context, learner string, limit int) ([]*model.QuizResult, error)
}

type Option func(*Handler)

// WithTxHistory включает маршруты журнала транзакций
func WithTxHistory(history TxHistory) Option {
	return func(h *Handler) { h.txHistory = history }
}

// WithQuizHistory включает маршрут результатов квизов
func WithQuizHistory(history QuizHistory) Option {
	return func(h *Handler) { h.quizHistory = history }
}

type workflowResponse struct {
	WorkflowID   string            `json:"workflow_id"`
	Transactions []*model.TxRecord `json:"transactions"`
}

func (h *Handler) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	const op = "get workflow"

	if h.txHistory == nil {
		h.writeError(w, r, apperr.New(apperr.KindUnavailable, op, errJournalDisabled))
		return
	}

	id := r.PathValue("id")
	records, err := h.txHistory.ListByWorkflow(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(records) == 0 {
		h.writeError(w, r, apperr.New(apperr.KindNotFound, op, fmt.Errorf("workflow %s not found", id)))
		return
	}

	h.writeJSON(w, http.StatusOK, workflowResponse{WorkflowID: id, Transactions: records})
}

func (h *Handler) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	if h.txHistory == nil {
		h.writeError(w, r, apperr.New(apperr.KindUnavailable, "get transaction", errJournalDisabled))
		return
	}

	raw := r.PathValue("hash")
	b, err := hexutil.Decode(raw)
	if err != nil || len(b) != common.HashLength {
		h.writeError(w, r, apperr.Validation("get transaction", "%q is not a transaction hash", raw))
		return
	}

	rec, err := h.txHistory.GetByHash(r.Context(), common.BytesToHash(b).Hex())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleQuizResults(w http.ResponseWriter, r *http.Request) {
	const op = "list quiz results"

	if h.quizHistory == nil {
		h.writeError(w, r, apperr.New(apperr.KindUnavailable, op, errJournalDisabled))
		return
	}

	address := r.PathValue("address")
	if !common.IsHexAddress(address) {
		h.writeError(w, r, apperr.Validation(op, "%q is not a valid address", address))
		return
	}

	limit := defaultResultsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxResultsLimit {
			h.writeError(w, r, apperr.Validation(op, "limit must be between 1 and %d", maxResultsLimit))
			return
		}
		limit = n
	}

	results, err := h.quizHistory.ListByLearner(r.Context(), common.HexToAddress(address).Hex(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if results == nil {
		results = []*model.QuizResult{}
	}
	h.writeJSON(w, http.StatusOK, results)
}
