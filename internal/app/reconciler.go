package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/Freeeeeet/tutorchain/internal/contracts"
	"github.com/Freeeeeet/tutorchain/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

const reconcileBatch = 100

// PendingJournal журнал, из которого берутся транзакции без квитанции
type PendingJournal interface {
	ListPending(ctx context.Context, limit int) ([]*model.TxRecord, error)
	UpdateStatus(ctx context.Context, hash string, status model.TxStatus, blockNumber *uint64) error
	MarkChecked(ctx context.Context, hash string) error
}

// ReceiptSource источник квитанций
type ReceiptSource interface {
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Reconciler периодически сверяет отправленные транзакции с квитанциями.
// Воркфлоу его не ждут: итог воркфлоу фиксируется по хэшу.
type Reconciler struct {
	journal  PendingJournal
	receipts ReceiptSource
	interval time.Duration
	// dropAfter возраст, после которого транзакция без квитанции помечается dropped; 0 отключает
	dropAfter time.Duration
	logger    *zap.Logger
	now       func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type ReconcilerOption func(*Reconciler)

// WithDropAfter помечает dropped транзакции, не попавшие в блок за d
func WithDropAfter(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) { r.dropAfter = d }
}

func NewReconciler(journal PendingJournal, receipts ReceiptSource, interval time.Duration, logger *zap.Logger, opts ...ReconcilerOption) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Reconciler{
		journal:  journal,
		receipts: receipts,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start запускает фоновую сверку
func (r *Reconciler) Start(ctx context.Context) {
	r.logger.Info("Starting receipt reconciler", zap.Duration("interval", r.interval))

	r.wg.Add(1)
	go r.run(ctx)
}

// Stop останавливает сверку и ждёт завершения текущего прохода
func (r *Reconciler) Stop() {
	r.stopOnce.Do(func() {
		r.logger.Info("Stopping receipt reconciler")
		close(r.stopChan)
	})
	r.wg.Wait()
}

func (r *Reconciler) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := r.ReconcileOnce(ctx); err != nil {
				r.logger.Error("Receipt reconciliation failed", zap.Error(err))
			}
		case <-r.stopChan:
			r.logger.Info("Receipt reconciler stopped")
			return
		case <-ctx.Done():
			r.logger.Info("Receipt reconciler cancelled")
			return
		}
	}
}

// ReconcileOnce один проход; возвращает число обновлённых записей
func (r *Reconciler) ReconcileOnce(ctx context.Context) (int, error) {
	pending, err := r.journal.ListPending(ctx, reconcileBatch)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, rec := range pending {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}

		receipt, err := r.receipts.TransactionReceipt(ctx, common.HexToHash(rec.TxHash))
		if errors.Is(err, apperr.ErrNotFound) {
			if r.expired(rec) {
				if r.markDropped(ctx, rec) {
					updated++
				}
				continue
			}
			r.markChecked(ctx, rec)
			continue
		}
		if err != nil {
			r.logger.Warn("Failed to fetch receipt",
				zap.String("tx_hash", rec.TxHash),
				zap.Error(err),
			)
			r.markChecked(ctx, rec)
			continue
		}

		status := model.TxStatusConfirmed
		if receipt.Status != types.ReceiptStatusSuccessful {
			status = model.TxStatusReverted
		}
		var block *uint64
		if receipt.BlockNumber != nil && receipt.BlockNumber.IsUint64() {
			n := receipt.BlockNumber.Uint64()
			block = &n
		}

		if err := r.journal.UpdateStatus(ctx, rec.TxHash, status, block); err != nil {
			r.logger.Error("Failed to update transaction status",
				zap.String("tx_hash", rec.TxHash),
				zap.Error(err),
			)
			continue
		}
		updated++

		fields := []zap.Field{
			zap.String("workflow_id", rec.WorkflowID),
			zap.String("step", rec.Step),
			zap.String("tx_hash", rec.TxHash),
			zap.String("status", string(status)),
		}
		if id, ok := createdSessionID(receipt); ok && rec.Step == model.StepCreateSession {
			fields = append(fields, zap.Uint64("session_id", id))
		}
		r.logger.Info("Ledger transaction reconciled", fields...)
	}

	return updated, nil
}

func (r *Reconciler) expired(rec *model.TxRecord) bool {
	return r.dropAfter > 0 && !rec.CreatedAt.IsZero() && r.now().Sub(rec.CreatedAt) > r.dropAfter
}

// markChecked сдвигает запись в конец очереди сверки
func (r *Reconciler) markChecked(ctx context.Context, rec *model.TxRecord) {
	if err := r.journal.MarkChecked(ctx, rec.TxHash); err != nil {
		r.logger.Warn("Failed to mark transaction checked", zap.String("tx_hash", rec.TxHash), zap.Error(err))
	}
}

func (r *Reconciler) markDropped(ctx context.Context, rec *model.TxRecord) bool {
	if err := r.journal.UpdateStatus(ctx, rec.TxHash, model.TxStatusDropped, nil); err != nil {
		r.logger.Error("Failed to mark transaction dropped", zap.String("tx_hash", rec.TxHash), zap.Error(err))
		return false
	}
	r.logger.Warn("Ledger transaction dropped without receipt",
		zap.String("workflow_id", rec.WorkflowID),
		zap.String("step", rec.Step),
		zap.String("tx_hash", rec.TxHash),
		zap.Duration("age", r.now().Sub(rec.CreatedAt)),
	)
	return true
}

// createdSessionID номер сессии из лога SessionCreated, если он есть в квитанции
func createdSessionID(receipt *types.Receipt) (uint64, bool) {
	session := contracts.Session()
	for _, l := range receipt.Logs {
		if l == nil {
			continue
		}
		ev, err := session.DecodeSessionCreated(*l)
		if err != nil || !ev.SessionID.IsUint64() {
			continue
		}
		return ev.SessionID.Uint64(), true
	}
	return 0, false
}
