package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/Freeeeeet/tutorchain/internal/model"
	"github.com/Freeeeeet/tutorchain/internal/repository/base"
)

// TransactionRepository журнал транзакций леджера
type TransactionRepository struct {
	*base.Repository
}

func NewTransactionRepository(db base.DB) *TransactionRepository {
	return &TransactionRepository{Repository: base.NewRepository(db)}
}

const txColumns = `id, workflow_id, workflow, step, account, nonce, tx_hash, status, error, block_number, created_at, updated_at, checked_at`

// Record добавляет запись о шаге воркфлоу
func (r *TransactionRepository) Record(ctx context.Context, rec *model.TxRecord) error {
	query := `
		INSERT INTO ledger_transactions (workflow_id, workflow, step, account, nonce, tx_hash, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		rec.WorkflowID,
		rec.Workflow,
		rec.Step,
		rec.Account,
		base.NullableInt64(rec.Nonce),
		base.NullString(rec.TxHash),
		rec.Status,
		base.NullString(rec.Error),
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		return fmt.Errorf("record ledger transaction: %w", err)
	}

	return nil
}

// GetByHash получает запись по хэшу транзакции
func (r *TransactionRepository) GetByHash(ctx context.Context, hash string) (*model.TxRecord, error) {
	query := `SELECT ` + txColumns + ` FROM ledger_transactions WHERE tx_hash = $1`

	rec, err := scanTx(r.QueryRow(ctx, query, hash))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, apperr.New(apperr.KindNotFound, "get ledger transaction", fmt.Errorf("tx %s not found", hash))
		}
		return nil, fmt.Errorf("get ledger transaction: %w", err)
	}

	return rec, nil
}

// ListPending отправленные транзакции без квитанции. Сначала ни разу не
// проверенные, затем давно проверенные, чтобы зависшие не закрывали окно.
func (r *TransactionRepository) ListPending(ctx context.Context, limit int) ([]*model.TxRecord, error) {
	query := `SELECT ` + txColumns + `
		FROM ledger_transactions
		WHERE status = $1 AND tx_hash IS NOT NULL
		ORDER BY checked_at NULLS FIRST, created_at
		LIMIT $2
	`

	rows, err := r.Query(ctx, query, model.TxStatusSubmitted, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending transactions: %w", err)
	}
	defer rows.Close()

	var records []*model.TxRecord
	for rows.Next() {
		rec, err := scanTx(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger transaction: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ListByWorkflow все шаги одного воркфлоу
func (r *TransactionRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*model.TxRecord, error) {
	query := `SELECT ` + txColumns + `
		FROM ledger_transactions
		WHERE workflow_id = $1
		ORDER BY id
	`

	rows, err := r.Query(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list workflow transactions: %w", err)
	}
	defer rows.Close()

	var records []*model.TxRecord
	for rows.Next() {
		rec, err := scanTx(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger transaction: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// UpdateStatus фиксирует результат квитанции
func (r *TransactionRepository) UpdateStatus(ctx context.Context, hash string, status model.TxStatus, blockNumber *uint64) error {
	query := `
		UPDATE ledger_transactions
		SET status = $2, block_number = $3, updated_at = NOW()
		WHERE tx_hash = $1
	`

	affected, err := r.ExecAffected(ctx, query, hash, status, base.NullableInt64(blockNumber))
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if affected == 0 {
		return apperr.New(apperr.KindNotFound, "update transaction status", fmt.Errorf("tx %s not found", hash))
	}

	return nil
}

// MarkChecked отмечает попытку сверки, после которой квитанции не нашлось
func (r *TransactionRepository) MarkChecked(ctx context.Context, hash string) error {
	query := `UPDATE ledger_transactions SET checked_at = NOW() WHERE tx_hash = $1`

	affected, err := r.ExecAffected(ctx, query, hash)
	if err != nil {
		return fmt.Errorf("mark transaction checked: %w", err)
	}
	if affected == 0 {
		return apperr.New(apperr.KindNotFound, "mark transaction checked", fmt.Errorf("tx %s not found", hash))
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTx(row rowScanner) (*model.TxRecord, error) {
	var (
		rec         model.TxRecord
		nonce       *int64
		blockNumber *int64
		txHash      *string
		txErr       *string
	)
	err := row.Scan(
		&rec.ID,
		&rec.WorkflowID,
		&rec.Workflow,
		&rec.Step,
		&rec.Account,
		&nonce,
		&txHash,
		&rec.Status,
		&txErr,
		&blockNumber,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.CheckedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Nonce = base.Uint64Ptr(nonce)
	rec.BlockNumber = base.Uint64Ptr(blockNumber)
	rec.TxHash = base.StringValue(txHash)
	rec.Error = base.StringValue(txErr)
	return &rec, nil
}
