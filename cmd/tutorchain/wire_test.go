package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/tutorchain/internal/generator"
	"github.com/Freeeeeet/tutorchain/internal/ledger"
	"github.com/Freeeeeet/tutorchain/internal/ledger/ledgertest"
	"github.com/Freeeeeet/tutorchain/internal/metrics"
	"github.com/Freeeeeet/tutorchain/internal/service"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testKey   = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	tutorAddr = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

type recordingSender struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, params.Text)
	return &models.Message{}, nil
}

func message(chatID int64, id int, text string) *models.Update {
	return &models.Update{Message: &models.Message{
		ID:   id,
		Chat: models.Chat{ID: chatID},
		From: &models.User{ID: chatID, FirstName: "Ann"},
		Text: text,
	}}
}

// newTestApplication собирает application так же, как wireApp, но поверх фейкового леджера
func newTestApplication(t *testing.T) (*application, *ledgertest.Ledger) {
	t.Helper()

	fake := ledgertest.New()
	signer, err := ledger.NewKeySigner(testKey)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	a := &application{
		logger:   zap.NewNop(),
		registry: registry,
		metrics:  m,
	}
	a.orchestrator = service.NewOrchestrator(fake, signer, service.OrchestratorConfig{
		Contracts: service.ContractAddresses{
			Session: common.HexToAddress("0xa1"),
			Score:   common.HexToAddress("0xa2"),
			Reward:  common.HexToAddress("0xa3"),
		},
		ChainID:  ledgertest.ChainID,
		GasPrice: big.NewInt(1),
	}, a.logger, service.WithMetrics(m))
	a.matching = service.NewMatchingService(service.NewRoster(), a.logger)
	a.quiz = service.NewQuizService(nil, generator.DefaultBank(), m, time.Second, a.logger)

	return a, fake
}

func TestHTTPAndBotShareAccountNonces(t *testing.T) {
	t.Parallel()

	a, fake := newTestApplication(t)
	srv := httptest.NewServer(a.httpHandler())
	t.Cleanup(srv.Close)
	bh := a.botHandlers()

	const perBoundary = 10
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < perBoundary; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			resp, err := srv.Client().Post(srv.URL+"/api/sessions", "application/json",
				bytes.NewBufferString(`{"tutor":"`+tutorAddr+`","subject":"Math","payment":5}`))
			if assert.NoError(t, err) {
				assert.Equal(t, http.StatusOK, resp.StatusCode)
				resp.Body.Close()
			}
		}()
		go func(chatID int64) {
			defer wg.Done()
			s := &recordingSender{}
			bh.HandleQuiz(ctx, s, message(chatID, 1, "/quiz Geography"))
			bh.HandleTextMessage(ctx, s, message(chatID, 2, "paris"))
		}(int64(100 + i))
	}
	wg.Wait()

	// Сессия одна транзакция, верный ответ две: счёт и награда
	assert.Len(t, fake.Submitted(), perBoundary+2*perBoundary)
	assert.Zero(t, fake.DuplicateNonces())
}

func TestHTTPAndBotShareRoster(t *testing.T) {
	t.Parallel()

	a, _ := newTestApplication(t)
	srv := httptest.NewServer(a.httpHandler())
	t.Cleanup(srv.Close)
	bh := a.botHandlers()

	s := &recordingSender{}
	bh.HandleRegister(context.Background(), s, message(7, 1, "/register tutor T-bot Chemistry Evenings"))

	resp, err := srv.Client().PostForm(srv.URL+"/match", url.Values{
		"subjects": {"Chemistry"}, "availability": {"Evenings"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Tutor string `json:"tutor"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "T-bot", body.Tutor)
}

func TestHTTPHandlerHidesHistoryWithoutJournal(t *testing.T) {
	t.Parallel()

	a, _ := newTestApplication(t)
	srv := httptest.NewServer(a.httpHandler())
	t.Cleanup(srv.Close)

	resp, err := srv.Client().Get(srv.URL + "/api/workflows/abc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
