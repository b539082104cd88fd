package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/Freeeeeet/tutorchain/internal/contracts"
	"github.com/Freeeeeet/tutorchain/internal/ledger"
	"github.com/Freeeeeet/tutorchain/internal/metrics"
	"github.com/Freeeeeet/tutorchain/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultGasLimit = 200_000
	// Сколько sessions(i) читаем параллельно
	sessionReadConcurrency = 8
	// Больше сессий списком не читаем; отдельные доступны через GetSession
	maxListedSessions = 10_000
	journalTimeout    = 5 * time.Second
)

// TxJournal журнал отправленных транзакций
type TxJournal interface {
	Record(ctx context.Context, rec *model.TxRecord) error
}

// QuizResultStore хранилище результатов квизов
type QuizResultStore interface {
	Save(ctx context.Context, res *model.QuizResult) error
}

// ContractAddresses адреса развёрнутых контрактов
type ContractAddresses struct {
	Session common.Address
	Score   common.Address
	// Reward нулевой, если наградной контракт не настроен
	Reward common.Address
}

type OrchestratorConfig struct {
	Contracts ContractAddresses
	GasLimit  uint64
	// GasPrice nil: берём цену, предложенную узлом
	GasPrice *big.Int
	// ChainID nil: запрашиваем у узла один раз
	ChainID *big.Int
}

// Orchestrator строит, подписывает, упорядочивает и отправляет транзакции
// и сводит их результаты в итог воркфлоу.
type Orchestrator struct {
	client  ledger.Client
	signer  ledger.Signer
	locks   *ledger.AccountLocks
	cfg     OrchestratorConfig
	journal TxJournal
	results QuizResultStore
	metrics *metrics.Metrics
	logger  *zap.Logger

	session contracts.SessionBinding
	score   contracts.ScoreBinding
	reward  contracts.RewardBinding

	idem *idempotencyCache

	chainMu sync.Mutex
	chainID *big.Int

	now func() time.Time
}

type OrchestratorOption func(*Orchestrator)

// WithJournal включает запись транзакций в журнал
func WithJournal(journal TxJournal) OrchestratorOption {
	return func(o *Orchestrator) { o.journal = journal }
}

// WithQuizResults включает сохранение результатов квизов
func WithQuizResults(store QuizResultStore) OrchestratorOption {
	return func(o *Orchestrator) { o.results = store }
}

func WithMetrics(m *metrics.Metrics) OrchestratorOption {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithAccountLocks позволяет разделить блокировки между несколькими оркестраторами
func WithAccountLocks(locks *ledger.AccountLocks) OrchestratorOption {
	return func(o *Orchestrator) { o.locks = locks }
}

func NewOrchestrator(
	client ledger.Client,
	signer ledger.Signer,
	cfg OrchestratorConfig,
	logger *zap.Logger,
	opts ...OrchestratorOption,
) *Orchestrator {
	if cfg.GasLimit == 0 {
		cfg.GasLimit = defaultGasLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &Orchestrator{
		client:  client,
		signer:  signer,
		locks:   ledger.NewAccountLocks(),
		cfg:     cfg,
		logger:  logger,
		session: contracts.Session(),
		score:   contracts.Score(),
		reward:  contracts.Reward(),
		idem:    newIdempotencyCache(),
		chainID: cfg.ChainID,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.rewardConfigured() && !o.reward.Verified {
		o.logger.Warn("Reward contract binding is unverified against the deployed contract",
			zap.String("reward_contract", cfg.Contracts.Reward.Hex()),
		)
	}

	return o
}

// Account адрес аккаунта, от имени которого подписываются транзакции
func (o *Orchestrator) Account() common.Address {
	return o.signer.Address()
}

// CreateSessionRequest параметры создания сессии
type CreateSessionRequest struct {
	Tutor   string
	Subject string
	// Payment в wei, переводится вместе с вызовом
	Payment        *big.Int
	IdempotencyKey string
}

func (r CreateSessionRequest) validate() error {
	const op = "create session"
	if !common.IsHexAddress(r.Tutor) {
		return apperr.Validation(op, "tutor %q is not a valid address", r.Tutor)
	}
	if strings.TrimSpace(r.Subject) == "" {
		return apperr.Validation(op, "subject is required")
	}
	if r.Payment == nil || r.Payment.Sign() < 0 {
		return apperr.Validation(op, "payment must be a non-negative integer")
	}
	return nil
}

// CreateSession воркфлоу Building → Signed → Submitted → Done.
// Автоматических повторов нет: повтор payable транзакции может задвоить оплату.
func (o *Orchestrator) CreateSession(ctx context.Context, req CreateSessionRequest) (*model.WorkflowResult, error) {
	return idempotent(ctx, o.idem, model.WorkflowCreateSession, req.IdempotencyKey, submittedAny, func() (*model.WorkflowResult, error) {
		run := o.newRun(model.WorkflowCreateSession)

		if err := req.validate(); err != nil {
			return o.fail(run, model.WorkflowStateBuilding, err)
		}

		data, err := o.session.PackCreateSession(common.HexToAddress(req.Tutor), req.Subject, req.Payment)
		if err != nil {
			return o.fail(run, model.WorkflowStateBuilding, err)
		}

		step, state, err := o.submitStep(ctx, run, model.StepCreateSession, o.cfg.Contracts.Session, req.Payment, data)
		run.result.Steps = append(run.result.Steps, step)
		if err != nil {
			return o.fail(run, state, err)
		}

		o.logger.Info("Session creation submitted",
			zap.String("workflow_id", run.result.WorkflowID),
			zap.String("tutor", req.Tutor),
			zap.String("subject", req.Subject),
			zap.String("payment", req.Payment.String()),
			zap.String("tx_hash", step.TxHash),
		)

		return o.finish(run, model.WorkflowStateDone, nil)
	})
}

// CompleteSession отмечает сессию завершённой
func (o *Orchestrator) CompleteSession(ctx context.Context, sessionID uint64, idempotencyKey string) (*model.WorkflowResult, error) {
	key := idempotencyKey
	if key != "" {
		key = fmt.Sprintf("%d/%s", sessionID, key)
	}

	return idempotent(ctx, o.idem, model.WorkflowCompleteSession, key, submittedAny, func() (*model.WorkflowResult, error) {
		run := o.newRun(model.WorkflowCompleteSession)

		data, err := o.session.PackCompleteSession(new(big.Int).SetUint64(sessionID))
		if err != nil {
			return o.fail(run, model.WorkflowStateBuilding, err)
		}

		step, state, err := o.submitStep(ctx, run, model.StepCompleteSession, o.cfg.Contracts.Session, nil, data)
		run.result.Steps = append(run.result.Steps, step)
		if err != nil {
			return o.fail(run, state, err)
		}

		o.logger.Info("Session completion submitted",
			zap.String("workflow_id", run.result.WorkflowID),
			zap.Uint64("session_id", sessionID),
			zap.String("tx_hash", step.TxHash),
		)

		return o.finish(run, model.WorkflowStateDone, nil)
	})
}

// GradeRequest ответ на вопрос квиза
type GradeRequest struct {
	Subject       string
	Question      string
	Answer        string
	CorrectAnswer string
	// Learner получатель награды; пустой означает аккаунт подписанта
	Learner        string
	IdempotencyKey string
}

// GradeAndReward воркфлоу Grading → ScoreSubmitted → (RewardSubmitted | Skipped) → Done.
//
// Ошибка updateScore даёт Failed без попытки награды, результат проверки
// возвращается с Recorded=false. Ошибка rewardStudent даёт PartiallyCompleted.
// Ошибка запроса баланса на состояние не влияет.
func (o *Orchestrator) GradeAndReward(ctx context.Context, req GradeRequest) (*model.GradeOutcome, error) {
	return idempotent(ctx, o.idem, model.WorkflowGradeAndReward, req.IdempotencyKey, gradeSubmittedAny, func() (*model.GradeOutcome, error) {
		return o.gradeAndReward(ctx, req)
	})
}

func (o *Orchestrator) gradeAndReward(ctx context.Context, req GradeRequest) (*model.GradeOutcome, error) {
	run := o.newRun(model.WorkflowGradeAndReward)
	out := &model.GradeOutcome{Subject: req.Subject}

	recipient := o.signer.Address()
	if req.Learner != "" {
		if !common.IsHexAddress(req.Learner) {
			res, err := o.fail(run, model.WorkflowStateGrading,
				apperr.Validation("grade and reward", "learner %q is not a valid address", req.Learner))
			out.WorkflowResult = *res
			return out, err
		}
		recipient = common.HexToAddress(req.Learner)
	}

	// Grading
	grade := Grade(req.Question, req.Answer, req.CorrectAnswer)
	out.Correct = grade.Correct
	out.Score = grade.Score
	out.Result = grade.Label()

	// ScoreSubmitted: отправляется при любом результате
	score := big.NewInt(int64(grade.Score))
	data, err := o.score.PackUpdateScore(score)
	if err != nil {
		res, ferr := o.fail(run, model.WorkflowStateGrading, err)
		out.WorkflowResult = *res
		o.saveQuizResult(ctx, req, recipient, out)
		return out, ferr
	}

	scoreStep, state, err := o.submitStep(ctx, run, model.StepUpdateScore, o.cfg.Contracts.Score, nil, data)
	run.result.Steps = append(run.result.Steps, scoreStep)
	if err != nil {
		run.result.Steps = append(run.result.Steps, skippedStep(model.StepRewardStudent))
		res, ferr := o.fail(run, state, err)
		out.WorkflowResult = *res
		o.saveQuizResult(ctx, req, recipient, out)
		return out, ferr
	}
	out.Recorded = true
	out.ScoreTxHash = scoreStep.TxHash
	o.transition(run, model.WorkflowStateScoreSubmitted)

	if grade.Score == 0 {
		run.result.Steps = append(run.result.Steps, skippedStep(model.StepRewardStudent))
		o.transition(run, model.WorkflowStateSkipped)
		res, ferr := o.finish(run, model.WorkflowStateDone, nil)
		out.WorkflowResult = *res
		o.saveQuizResult(ctx, req, recipient, out)
		return out, ferr
	}

	// RewardSubmitted
	rewardStep, rewardErr := o.rewardStep(ctx, run, recipient, score)
	run.result.Steps = append(run.result.Steps, rewardStep)
	if rewardErr != nil {
		res, ferr := o.finish(run, model.WorkflowStatePartiallyCompleted,
			apperr.New(apperr.KindPartiallyCompleted, "grade and reward", rewardErr))
		out.WorkflowResult = *res
		o.saveQuizResult(ctx, req, recipient, out)
		return out, ferr
	}
	out.RewardTxHash = rewardStep.TxHash
	o.transition(run, model.WorkflowStateRewardSubmitted)

	// Баланс только для отображения; ошибка не меняет итог
	balance, err := o.Balance(ctx, recipient.Hex())
	if err != nil {
		out.BalanceError = err.Error()
		o.logger.Warn("Token balance lookup failed after reward",
			zap.String("workflow_id", run.result.WorkflowID),
			zap.Error(err),
		)
	} else {
		out.TokenBalance = balance
	}

	res, ferr := o.finish(run, model.WorkflowStateDone, nil)
	out.WorkflowResult = *res
	o.saveQuizResult(ctx, req, recipient, out)
	return out, ferr
}

func (o *Orchestrator) rewardStep(ctx context.Context, run *workflowRun, recipient common.Address, score *big.Int) (model.StepResult, error) {
	if !o.rewardConfigured() {
		err := apperr.New(apperr.KindUnavailable, "reward student", errors.New("reward contract is not configured"))
		return failedStep(model.StepRewardStudent, nil, err), err
	}

	data, err := o.reward.PackRewardStudent(recipient, score)
	if err != nil {
		return failedStep(model.StepRewardStudent, nil, err), err
	}

	step, _, err := o.submitStep(ctx, run, model.StepRewardStudent, o.cfg.Contracts.Reward, nil, data)
	return step, err
}

// submitStep один шаг: nonce → подпись → отправка под блокировкой аккаунта.
// Возвращает состояние, на котором шаг остановился.
func (o *Orchestrator) submitStep(
	ctx context.Context,
	run *workflowRun,
	name string,
	to common.Address,
	value *big.Int,
	data []byte,
) (model.StepResult, model.WorkflowState, error) {
	account := o.signer.Address()

	chainID, err := o.resolveChainID(ctx)
	if err != nil {
		return failedStep(name, nil, err), model.WorkflowStateBuilding, err
	}
	gasPrice, err := o.gasPrice(ctx)
	if err != nil {
		return failedStep(name, nil, err), model.WorkflowStateBuilding, err
	}
	if value == nil {
		value = new(big.Int)
	}

	unlock, err := o.locks.Lock(ctx, account)
	if err != nil {
		err = apperr.New(apperr.KindNetwork, name, err)
		return failedStep(name, nil, err), model.WorkflowStateBuilding, err
	}
	defer unlock()

	nonce, err := o.client.SequenceNumber(ctx, account)
	o.metrics.LedgerCall("sequence_number", err)
	if err != nil {
		return failedStep(name, nil, err), model.WorkflowStateBuilding, err
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      o.cfg.GasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := o.signer.SignTransaction(tx, chainID)
	if err != nil {
		return failedStep(name, &nonce, err), model.WorkflowStateBuilding, err
	}
	o.transition(run, model.WorkflowStateSigned)

	payload, err := signed.MarshalBinary()
	if err != nil {
		err = apperr.New(apperr.KindEncoding, name, err)
		return failedStep(name, &nonce, err), model.WorkflowStateSigned, err
	}
	pending := model.PendingTransaction{
		SequenceNumber: nonce,
		SignedPayload:  payload,
		SubmittedAt:    o.now(),
	}

	// После подписи отправку не отменяем: транзакция может уже уйти в сеть
	hash, err := o.client.SubmitTransaction(context.WithoutCancel(ctx), signed)
	o.metrics.LedgerCall("submit_transaction", err)
	if err != nil {
		o.logger.Error("Ledger transaction submission failed",
			zap.String("workflow_id", run.result.WorkflowID),
			zap.String("step", name),
			zap.String("account", account.Hex()),
			zap.Uint64("nonce", nonce),
			zap.Error(err),
		)
		o.record(ctx, run, name, account, &nonce, "", model.TxStatusFailed, err)
		return failedStep(name, &nonce, err), model.WorkflowStateSubmitted, err
	}
	pending.Hash = hash.Hex()
	o.transition(run, model.WorkflowStateSubmitted)

	o.logger.Debug("Ledger transaction submitted",
		zap.String("workflow_id", run.result.WorkflowID),
		zap.String("step", name),
		zap.String("account", account.Hex()),
		zap.Uint64("nonce", pending.SequenceNumber),
		zap.String("tx_hash", pending.Hash),
		zap.Duration("submit_latency", o.now().Sub(pending.SubmittedAt)),
	)
	o.record(ctx, run, name, account, &nonce, pending.Hash, model.TxStatusSubmitted, nil)

	return model.StepResult{
		Name:   name,
		Status: model.StepStatusSubmitted,
		Nonce:  &nonce,
		TxHash: pending.Hash,
	}, model.WorkflowStateSubmitted, nil
}

// ListSessions читает sessionCount, затем каждую sessions(i)
func (o *Orchestrator) ListSessions(ctx context.Context) ([]model.Session, error) {
	data, err := o.session.PackSessionCount()
	if err != nil {
		return nil, err
	}
	raw, err := o.client.CallReadOnly(ctx, o.cfg.Contracts.Session, data)
	o.metrics.LedgerCall("session_count", err)
	if err != nil {
		return nil, fmt.Errorf("read session count: %w", err)
	}
	count, err := o.session.UnpackSessionCount(raw)
	if err != nil {
		return nil, err
	}
	if count.Sign() < 0 || !count.IsUint64() {
		return nil, apperr.New(apperr.KindEncoding, "read session count", fmt.Errorf("count %s out of range", count))
	}
	if count.Cmp(big.NewInt(maxListedSessions)) > 0 {
		return nil, apperr.New(apperr.KindUnavailable, "list sessions",
			fmt.Errorf("contract reports %s sessions, listing is limited to %d", count, maxListedSessions))
	}

	n := count.Uint64()
	sessions := make([]model.Session, n)
	if n == 0 {
		return sessions, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sessionReadConcurrency)
	for i := uint64(0); i < n; i++ {
		g.Go(func() error {
			s, err := o.GetSession(gctx, i)
			if err != nil {
				return err
			}
			sessions[i] = *s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// GetSession читает одну сессию по индексу
func (o *Orchestrator) GetSession(ctx context.Context, id uint64) (*model.Session, error) {
	data, err := o.session.PackSessions(new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	raw, err := o.client.CallReadOnly(ctx, o.cfg.Contracts.Session, data)
	o.metrics.LedgerCall("sessions", err)
	if err != nil {
		return nil, fmt.Errorf("read session %d: %w", id, err)
	}
	rec, err := o.session.UnpackSession(raw)
	if err != nil {
		return nil, err
	}

	return &model.Session{
		ID:        id,
		Tutor:     rec.Tutor.Hex(),
		Learner:   rec.Learner.Hex(),
		Subject:   rec.Subject,
		Payment:   rec.Payment,
		Completed: rec.Completed,
	}, nil
}

// Score текущий результат адреса в контракте
func (o *Orchestrator) Score(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, apperr.Validation("get score", "%q is not a valid address", address)
	}
	data, err := o.score.PackGetScore(common.HexToAddress(address))
	if err != nil {
		return nil, err
	}
	raw, err := o.client.CallReadOnly(ctx, o.cfg.Contracts.Score, data)
	o.metrics.LedgerCall("get_score", err)
	if err != nil {
		return nil, fmt.Errorf("read score: %w", err)
	}
	return o.score.UnpackGetScore(raw)
}

// Balance баланс токенов-наград адреса
func (o *Orchestrator) Balance(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, apperr.Validation("get balance", "%q is not a valid address", address)
	}
	if !o.rewardConfigured() {
		return nil, apperr.New(apperr.KindUnavailable, "get balance", errors.New("reward contract is not configured"))
	}
	data, err := o.reward.PackGetBalance(common.HexToAddress(address))
	if err != nil {
		return nil, err
	}
	raw, err := o.client.CallReadOnly(ctx, o.cfg.Contracts.Reward, data)
	o.metrics.LedgerCall("get_balance", err)
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}
	return o.reward.UnpackGetBalance(raw)
}

func (o *Orchestrator) rewardConfigured() bool {
	return o.cfg.Contracts.Reward != (common.Address{})
}

func (o *Orchestrator) resolveChainID(ctx context.Context) (*big.Int, error) {
	o.chainMu.Lock()
	defer o.chainMu.Unlock()

	if o.chainID != nil {
		return o.chainID, nil
	}
	id, err := o.client.ChainID(ctx)
	o.metrics.LedgerCall("chain_id", err)
	if err != nil {
		return nil, fmt.Errorf("resolve chain id: %w", err)
	}
	o.chainID = id
	return id, nil
}

func (o *Orchestrator) gasPrice(ctx context.Context) (*big.Int, error) {
	if o.cfg.GasPrice != nil {
		return o.cfg.GasPrice, nil
	}
	price, err := o.client.SuggestGasPrice(ctx)
	o.metrics.LedgerCall("suggest_gas_price", err)
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}
	return price, nil
}

// workflowRun состояние одного выполнения воркфлоу
type workflowRun struct {
	result model.WorkflowResult
	state  model.WorkflowState
}

func (o *Orchestrator) newRun(workflow string) *workflowRun {
	initial := model.WorkflowStateBuilding
	if workflow == model.WorkflowGradeAndReward {
		initial = model.WorkflowStateGrading
	}
	return &workflowRun{
		result: model.WorkflowResult{
			WorkflowID: uuid.NewString(),
			Workflow:   workflow,
			Steps:      []model.StepResult{},
		},
		state: initial,
	}
}

func (o *Orchestrator) transition(run *workflowRun, next model.WorkflowState) {
	o.logger.Debug("Workflow transition",
		zap.String("workflow_id", run.result.WorkflowID),
		zap.String("workflow", run.result.Workflow),
		zap.String("from", string(run.state)),
		zap.String("to", string(next)),
	)
	run.state = next
}

func (o *Orchestrator) fail(run *workflowRun, at model.WorkflowState, err error) (*model.WorkflowResult, error) {
	run.result.FailedAt = at
	return o.finish(run, model.WorkflowStateFailed, err)
}

func (o *Orchestrator) finish(run *workflowRun, state model.WorkflowState, err error) (*model.WorkflowResult, error) {
	o.transition(run, state)
	run.result.State = state
	run.result.Err = err
	o.metrics.WorkflowFinished(run.result.Workflow, string(state))

	fields := []zap.Field{
		zap.String("workflow_id", run.result.WorkflowID),
		zap.String("workflow", run.result.Workflow),
		zap.String("state", string(state)),
	}
	switch state {
	case model.WorkflowStateDone:
		o.logger.Info("Workflow completed", fields...)
	default:
		o.logger.Warn("Workflow did not complete", append(fields, zap.Error(err))...)
	}

	res := run.result
	return &res, err
}

func (o *Orchestrator) record(ctx context.Context, run *workflowRun, step string, account common.Address, nonce *uint64, hash string, status model.TxStatus, stepErr error) {
	if o.journal == nil {
		return
	}

	rec := &model.TxRecord{
		WorkflowID: run.result.WorkflowID,
		Workflow:   run.result.Workflow,
		Step:       step,
		Account:    account.Hex(),
		Nonce:      nonce,
		TxHash:     hash,
		Status:     status,
	}
	if stepErr != nil {
		rec.Error = stepErr.Error()
	}

	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()

	// Журнал вспомогательный: его ошибка не меняет итог воркфлоу
	if err := o.journal.Record(jctx, rec); err != nil {
		o.logger.Error("Failed to journal ledger transaction",
			zap.String("workflow_id", run.result.WorkflowID),
			zap.String("step", step),
			zap.String("tx_hash", hash),
			zap.Error(err),
		)
	}
}

func (o *Orchestrator) saveQuizResult(ctx context.Context, req GradeRequest, learner common.Address, out *model.GradeOutcome) {
	if o.results == nil {
		return
	}

	res := &model.QuizResult{
		WorkflowID:   out.WorkflowID,
		Learner:      learner.Hex(),
		Subject:      req.Subject,
		Question:     req.Question,
		Correct:      out.Correct,
		Score:        out.Score,
		State:        out.State,
		ScoreTxHash:  out.ScoreTxHash,
		RewardTxHash: out.RewardTxHash,
	}

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()

	if err := o.results.Save(sctx, res); err != nil {
		o.logger.Error("Failed to save quiz result",
			zap.String("workflow_id", out.WorkflowID),
			zap.Error(err),
		)
	}
}

func failedStep(name string, nonce *uint64, err error) model.StepResult {
	return model.StepResult{
		Name:      name,
		Status:    model.StepStatusFailed,
		Nonce:     nonce,
		ErrorKind: string(apperr.KindOf(err)),
		Error:     err.Error(),
	}
}

func skippedStep(name string) model.StepResult {
	return model.StepResult{Name: name, Status: model.StepStatusSkipped}
}

func submittedAny(res *model.WorkflowResult) bool {
	for _, s := range res.Steps {
		if s.Status == model.StepStatusSubmitted {
			return true
		}
	}
	return false
}

func gradeSubmittedAny(out *model.GradeOutcome) bool {
	return submittedAny(&out.WorkflowResult)
}
