package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/Freeeeeet/tutorchain/internal/model"
	"github.com/Freeeeeet/tutorchain/internal/platform/ratelimiter"
	"github.com/Freeeeeet/tutorchain/internal/service"
	"go.uber.org/zap"
)

const (
	maxBodyBytes          = 1 << 20
	idempotencyKeyHeader  = "Idempotency-Key"
	defaultAPIDifficulty  = "medium"
	registrationSucceeded = "Registration successful!"
)

type Handler struct {
	orchestrator *service.Orchestrator
	matching     *service.MatchingService
	quiz         *service.QuizService
	limiter      *ratelimiter.KeyLimiter
	metrics      http.Handler
	txHistory    TxHistory
	quizHistory  QuizHistory
	logger       *zap.Logger
	now          func() time.Time
}

func New(
	orchestrator *service.Orchestrator,
	matching *service.MatchingService,
	quiz *service.QuizService,
	limiter *ratelimiter.KeyLimiter,
	metrics http.Handler,
	logger *zap.Logger,
	opts ...Option,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		orchestrator: orchestrator,
		matching:     matching,
		quiz:         quiz,
		limiter:      limiter,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes регистрирует все маршруты
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.handleHealth)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}

	// Формы
	mux.HandleFunc("POST /register", h.limited(h.handleRegister))
	mux.HandleFunc("POST /match", h.limited(h.handleMatch))
	mux.HandleFunc("POST /create_session", h.limited(h.handleCreateSessionForm))
	mux.HandleFunc("GET /quiz", h.handleQuizSubjects)
	mux.HandleFunc("POST /quiz", h.limited(h.handleQuizForm))
	mux.HandleFunc("POST /submit_quiz", h.limited(h.handleSubmitQuiz))

	// JSON API
	mux.HandleFunc("GET /api/sessions", h.handleListSessions)
	mux.HandleFunc("POST /api/sessions", h.limited(h.handleCreateSessionAPI))
	mux.HandleFunc("GET /api/sessions/{id}", h.handleGetSession)
	mux.HandleFunc("POST /api/sessions/{id}/complete", h.limited(h.handleCompleteSession))
	mux.HandleFunc("POST /api/quiz/generate", h.limited(h.handleGenerateQuiz))
	mux.HandleFunc("GET /api/scores/{address}", h.handleScore)
	mux.HandleFunc("GET /api/balances/{address}", h.handleBalance)
	mux.HandleFunc("GET /api/quiz/results/{address}", h.handleQuizResults)
	mux.HandleFunc("GET /api/workflows/{id}", h.handleGetWorkflow)
	mux.HandleFunc("GET /api/transactions/{hash}", h.handleGetTransaction)

	return h.logRequests(mux)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type registerResponse struct {
	Message     string            `json:"message"`
	Participant model.Participant `json:"participant"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.matching.Register(r.Context(), model.Participant{
		Role:         model.Role(strings.TrimSpace(r.PostFormValue("role"))),
		Address:      r.PostFormValue("address"),
		Subjects:     model.SplitSubjects(r.PostFormValue("subjects")),
		Availability: r.PostFormValue("availability"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, registerResponse{Message: registrationSucceeded, Participant: p})
}

type matchResponse struct {
	Tutor        string   `json:"tutor"`
	Subjects     []string `json:"subjects"`
	Availability string   `json:"availability"`
}

func (h *Handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}

	subjects := model.SplitSubjects(r.PostFormValue("subjects"))
	availability := r.PostFormValue("availability")

	tutor, err := h.matching.Match(r.Context(), subjects, availability)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, matchResponse{Tutor: tutor.Address, Subjects: subjects, Availability: availability})
}

type sessionTxResponse struct {
	TxHash string `json:"tx_hash"`
	*model.WorkflowResult
}

func (h *Handler) handleCreateSessionForm(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}

	payment, err := parsePayment(r.PostFormValue("payment"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.createSession(w, r, service.CreateSessionRequest{
		Tutor:          strings.TrimSpace(r.PostFormValue("tutor")),
		Subject:        strings.TrimSpace(r.PostFormValue("subject")),
		Payment:        payment,
		IdempotencyKey: r.Header.Get(idempotencyKeyHeader),
	})
}

type createSessionRequest struct {
	Tutor   string      `json:"tutor"`
	Subject string      `json:"subject"`
	Payment json.Number `json:"payment"`
}

func (h *Handler) handleCreateSessionAPI(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	payment, err := parsePayment(req.Payment.String())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.createSession(w, r, service.CreateSessionRequest{
		Tutor:          strings.TrimSpace(req.Tutor),
		Subject:        strings.TrimSpace(req.Subject),
		Payment:        payment,
		IdempotencyKey: r.Header.Get(idempotencyKeyHeader),
	})
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request, req service.CreateSessionRequest) {
	res, err := h.orchestrator.CreateSession(r.Context(), req)
	h.writeSessionResult(w, r, res, model.StepCreateSession, err)
}

func (h *Handler) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.orchestrator.CompleteSession(r.Context(), id, r.Header.Get(idempotencyKeyHeader))
	h.writeSessionResult(w, r, res, model.StepCompleteSession, err)
}

func (h *Handler) writeSessionResult(w http.ResponseWriter, r *http.Request, res *model.WorkflowResult, step string, err error) {
	if res == nil {
		h.writeError(w, r, err)
		return
	}
	h.writeWorkflow(w, r, res.State, sessionTxResponse{TxHash: res.TxHash(step), WorkflowResult: res}, err)
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.orchestrator.ListSessions(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sessions)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	s, err := h.orchestrator.GetSession(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}

type quizSubjectsResponse struct {
	Subjects []string `json:"subjects"`
}

type quizResponse struct {
	Subjects []string `json:"subjects,omitempty"`
	model.QuizQuestion
}

func (h *Handler) handleQuizSubjects(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, quizSubjectsResponse{Subjects: h.quiz.Subjects()})
}

func (h *Handler) handleQuizForm(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}

	q, err := h.quiz.GenerateQuestion(r.Context(), r.PostFormValue("subject"), r.PostFormValue("difficulty"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, quizResponse{Subjects: h.quiz.Subjects(), QuizQuestion: q})
}

type generateQuizRequest struct {
	Subject    string `json:"subject"`
	Difficulty string `json:"difficulty"`
}

// handleGenerateQuiz идёт через тот же путь с запасными вопросами, что и /quiz
func (h *Handler) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req generateQuizRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Difficulty) == "" {
		req.Difficulty = defaultAPIDifficulty
	}

	q, err := h.quiz.GenerateQuestion(r.Context(), req.Subject, req.Difficulty)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]model.QuizQuestion{"quiz": q})
}

func (h *Handler) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.orchestrator.GradeAndReward(r.Context(), service.GradeRequest{
		Subject:        r.PostFormValue("subject"),
		Question:       r.PostFormValue("question"),
		Answer:         r.PostFormValue("answer"),
		CorrectAnswer:  r.PostFormValue("correct_answer"),
		Learner:        strings.TrimSpace(r.PostFormValue("learner")),
		IdempotencyKey: r.Header.Get(idempotencyKeyHeader),
	})
	if out == nil {
		h.writeError(w, r, err)
		return
	}
	h.writeWorkflow(w, r, out.State, out, err)
}

type amountResponse struct {
	Address string   `json:"address"`
	Value   *big.Int `json:"value"`
}

func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	addr := r.PathValue("address")
	score, err := h.orchestrator.Score(r.Context(), addr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, amountResponse{Address: addr, Value: score})
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr := r.PathValue("address")
	balance, err := h.orchestrator.Balance(r.Context(), addr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, amountResponse{Address: addr, Value: balance})
}

// limited пропускает запрос через лимитер по IP клиента
func (h *Handler) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.limiter.Allow(ratelimiter.ClientKey(r), h.now()) {
			h.writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: errorBody{
				Kind:    apperr.KindUnavailable,
				Message: "rate limit exceeded",
			}})
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := h.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		h.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", h.now().Sub(start)),
		)
	})
}

func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return apperr.New(apperr.KindValidation, "parse form", err)
	}
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("decode request", "request body is empty")
		}
		return apperr.New(apperr.KindValidation, "decode request", err)
	}
	return nil
}

func parsePayment(raw string) (*big.Int, error) {
	raw = strings.TrimSpace(raw)
	payment, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, apperr.Validation("parse payment", "payment %q is not an integer", raw)
	}
	return payment, nil
}

func sessionID(r *http.Request) (uint64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.KindValidation, "parse session id", fmt.Errorf("%q is not a session id", raw))
	}
	return id, nil
}
