package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/Freeeeeet/tutorchain/internal/generator"
	"github.com/Freeeeeet/tutorchain/internal/ledger"
	"github.com/Freeeeeet/tutorchain/internal/ledger/ledgertest"
	"github.com/Freeeeeet/tutorchain/internal/model"
	"github.com/Freeeeeet/tutorchain/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const learnerAddr = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"

// memHistory журнал и результаты квизов в памяти
type memHistory struct {
	mu      sync.Mutex
	txs     []*model.TxRecord
	results []*model.QuizResult
}

func (m *memHistory) Record(_ context.Context, rec *model.TxRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.txs = append(m.txs, &cp)
	return nil
}

func (m *memHistory) GetByHash(_ context.Context, hash string) (*model.TxRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.txs) - 1; i >= 0; i-- {
		if m.txs[i].TxHash == hash {
			return m.txs[i], nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "get ledger transaction", fmt.Errorf("tx %s not found", hash))
}

func (m *memHistory) ListByWorkflow(_ context.Context, workflowID string) ([]*model.TxRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.TxRecord
	for _, rec := range m.txs {
		if rec.WorkflowID == workflowID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memHistory) Save(_ context.Context, res *model.QuizResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *res
	m.results = append(m.results, &cp)
	return nil
}

func (m *memHistory) ListByLearner(_ context.Context, learner string, limit int) ([]*model.QuizResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.QuizResult
	for i := len(m.results) - 1; i >= 0 && len(out) < limit; i-- {
		if m.results[i].Learner == learner {
			out = append(out, m.results[i])
		}
	}
	return out, nil
}

func newHistoryServer(t *testing.T, history *memHistory) *testServer {
	t.Helper()

	fake := ledgertest.New()
	signer, err := ledger.NewKeySigner(testKey)
	require.NoError(t, err)

	orch := service.NewOrchestrator(fake, signer, service.OrchestratorConfig{
		Contracts: testContracts,
		ChainID:   ledgertest.ChainID,
		GasPrice:  big.NewInt(1),
	}, nil, service.WithJournal(history), service.WithQuizResults(history))
	quiz := service.NewQuizService(nil, generator.DefaultBank(), nil, time.Second, nil)
	h := New(orch, service.NewMatchingService(nil, nil), quiz, nil, nil, nil,
		WithTxHistory(history), WithQuizHistory(history))

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return &testServer{fake: fake, srv: srv}
}

func (s *testServer) get(t *testing.T, path string, v interface{}) *http.Response {
	t.Helper()
	resp, err := s.srv.Client().Get(s.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp
}

func TestHistoryRoutesFollowQuizWorkflow(t *testing.T) {
	t.Parallel()

	history := &memHistory{}
	s := newHistoryServer(t, history)

	resp, body := s.postForm(t, "/submit_quiz", url.Values{
		"answer": {"paris"}, "question": {"What's the capital of France?"},
		"correct_answer": {"Paris"}, "subject": {"Geography"},
		"learner": {"0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	workflowID, _ := body["workflow_id"].(string)
	txHash, _ := body["tx_hash"].(string)
	require.NotEmpty(t, workflowID)
	require.NotEmpty(t, txHash)

	var wf workflowResponse
	resp = s.get(t, "/api/workflows/"+workflowID, &wf)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, workflowID, wf.WorkflowID)
	steps := map[string]bool{}
	for _, rec := range wf.Transactions {
		steps[rec.Step] = true
	}
	assert.True(t, steps[model.StepUpdateScore])
	assert.True(t, steps[model.StepRewardStudent])

	var rec model.TxRecord
	resp = s.get(t, "/api/transactions/"+txHash, &rec)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, workflowID, rec.WorkflowID)
	assert.Equal(t, model.StepUpdateScore, rec.Step)

	// Адрес в любом регистре находит результаты, сохранённые в checksum-виде
	var results []model.QuizResult
	resp = s.get(t, "/api/quiz/results/0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc", &results)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, results, 1)
	assert.Equal(t, learnerAddr, results[0].Learner)
	assert.Equal(t, workflowID, results[0].WorkflowID)
	assert.True(t, results[0].Correct)
}

func TestHistoryRoutesErrors(t *testing.T) {
	t.Parallel()

	s := newHistoryServer(t, &memHistory{})

	tests := []struct {
		name   string
		path   string
		status int
		kind   apperr.Kind
	}{
		{name: "unknown workflow", path: "/api/workflows/nope", status: http.StatusNotFound, kind: apperr.KindNotFound},
		{name: "unknown transaction", path: "/api/transactions/0x" + fmt.Sprintf("%064x", 7), status: http.StatusNotFound, kind: apperr.KindNotFound},
		{name: "malformed hash", path: "/api/transactions/0x1234", status: http.StatusBadRequest, kind: apperr.KindValidation},
		{name: "bad address", path: "/api/quiz/results/alice", status: http.StatusBadRequest, kind: apperr.KindValidation},
		{name: "limit too large", path: "/api/quiz/results/" + learnerAddr + "?limit=1000", status: http.StatusBadRequest, kind: apperr.KindValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var body map[string]interface{}
			resp := s.get(t, tc.path, &body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, string(tc.kind), errorKind(body))
		})
	}

	var results []model.QuizResult
	resp := s.get(t, "/api/quiz/results/"+learnerAddr, &results)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, results)
}

func TestHistoryRoutesWithoutJournal(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)

	for _, path := range []string{
		"/api/workflows/abc",
		"/api/transactions/0x" + fmt.Sprintf("%064x", 1),
		"/api/quiz/results/" + learnerAddr,
	} {
		var body map[string]interface{}
		resp := s.get(t, path, &body)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
		assert.Equal(t, string(apperr.KindUnavailable), errorKind(body), path)
	}
}
