package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/Freeeeeet/tutorchain/internal/model"
	"go.uber.org/zap"
)

type errorBody struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// workflowErrorResponse итог воркфлоу, который не завершился полностью
type workflowErrorResponse struct {
	Error  errorBody   `json:"error"`
	Result interface{} `json:"result"`
}

// statusFor HTTP статус для вида ошибки
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindEncoding:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindRejected, apperr.KindContractRevert:
		return http.StatusUnprocessableEntity
	case apperr.KindNetwork:
		return http.StatusBadGateway
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	case apperr.KindPartiallyCompleted:
		return http.StatusMultiStatus
	default:
		return http.StatusInternalServerError
	}
}

func bodyFor(err error) errorBody {
	return errorBody{Kind: apperr.KindOf(err), Message: err.Error()}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := bodyFor(err)
	status := statusFor(body.Kind)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("kind", string(body.Kind)),
			zap.Error(err),
		)
	}
	h.writeJSON(w, status, errorResponse{Error: body})
}

// writeWorkflow 200 для done, 207 для partially_completed, статус ошибки шага для failed.
// Тело всегда содержит полный итог.
func (h *Handler) writeWorkflow(w http.ResponseWriter, r *http.Request, state model.WorkflowState, result interface{}, err error) {
	if err == nil {
		h.writeJSON(w, http.StatusOK, result)
		return
	}
	if result == nil {
		h.writeError(w, r, err)
		return
	}

	status := statusFor(apperr.KindOf(err))
	if state == model.WorkflowStatePartiallyCompleted {
		status = http.StatusMultiStatus
	}

	body := bodyFor(err)
	// Для частичного успеха вид ошибки показываем как partially_completed,
	// причина остаётся в сообщении
	if state == model.WorkflowStatePartiallyCompleted || errors.Is(err, apperr.ErrPartiallyCompleted) {
		body.Kind = apperr.KindPartiallyCompleted
	}

	h.writeJSON(w, status, workflowErrorResponse{Error: body, Result: result})
}
