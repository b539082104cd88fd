package model

import "time"

// PendingTransaction транзакция между подписью и получением хэша.
// Живёт только внутри шага оркестратора.
type PendingTransaction struct {
	SequenceNumber uint64
	SignedPayload  []byte
	SubmittedAt    time.Time
	Hash           string
}

type TxStatus string

const (
	TxStatusSubmitted TxStatus = "submitted" // Отправлена, хэш получен
	TxStatusFailed    TxStatus = "failed"    // Узел не принял
	TxStatusConfirmed TxStatus = "confirmed" // Квитанция со статусом 1
	TxStatusReverted  TxStatus = "reverted"  // Квитанция со статусом 0
	TxStatusDropped   TxStatus = "dropped"   // Квитанции так и не появилось
)

// TxRecord строка журнала транзакций
type TxRecord struct {
	ID          int64     `json:"id"`
	WorkflowID  string    `json:"workflow_id"`
	Workflow    string    `json:"workflow"`
	Step        string    `json:"step"`
	Account     string    `json:"account"`
	Nonce       *uint64   `json:"nonce,omitempty"`
	TxHash      string    `json:"tx_hash,omitempty"`
	Status      TxStatus  `json:"status"`
	Error       string    `json:"error,omitempty"`
	BlockNumber *uint64   `json:"block_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	// CheckedAt последняя безуспешная попытка найти квитанцию
	CheckedAt *time.Time `json:"checked_at,omitempty"`
}
