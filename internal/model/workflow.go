package model

import "math/big"

type WorkflowState string

const (
	WorkflowStateBuilding           WorkflowState = "building"
	WorkflowStateSigned             WorkflowState = "signed"
	WorkflowStateSubmitted          WorkflowState = "submitted"
	WorkflowStateGrading            WorkflowState = "grading"
	WorkflowStateScoreSubmitted     WorkflowState = "score_submitted"
	WorkflowStateRewardSubmitted    WorkflowState = "reward_submitted"
	WorkflowStateSkipped            WorkflowState = "skipped"
	WorkflowStateDone               WorkflowState = "done"
	WorkflowStateFailed             WorkflowState = "failed"
	WorkflowStatePartiallyCompleted WorkflowState = "partially_completed"
)

// Terminal финальное состояние воркфлоу
func (s WorkflowState) Terminal() bool {
	return s == WorkflowStateDone || s == WorkflowStateFailed || s == WorkflowStatePartiallyCompleted
}

const (
	WorkflowCreateSession   = "create_session"
	WorkflowCompleteSession = "complete_session"
	WorkflowGradeAndReward  = "grade_and_reward"

	StepCreateSession   = "create_session"
	StepCompleteSession = "complete_session"
	StepUpdateScore     = "update_score"
	StepRewardStudent   = "reward_student"
)

type StepStatus string

const (
	StepStatusSubmitted StepStatus = "submitted"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepResult итог одного шага, меняющего состояние леджера
type StepResult struct {
	Name      string     `json:"step"`
	Status    StepStatus `json:"status"`
	Nonce     *uint64    `json:"nonce,omitempty"`
	TxHash    string     `json:"tx_hash,omitempty"`
	ErrorKind string     `json:"error_kind,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// WorkflowResult итог воркфлоу. Частичный успех это отдельное состояние,
// не успех и не провал.
type WorkflowResult struct {
	WorkflowID string        `json:"workflow_id"`
	Workflow   string        `json:"workflow"`
	State      WorkflowState `json:"state"`
	// FailedAt состояние, в котором воркфлоу остановился при ошибке
	FailedAt WorkflowState `json:"failed_at,omitempty"`
	Steps    []StepResult  `json:"steps"`
	Err      error         `json:"-"`
}

// Step возвращает шаг по имени
func (r *WorkflowResult) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// TxHash хэш транзакции шага или пустая строка
func (r *WorkflowResult) TxHash(step string) string {
	s, ok := r.Step(step)
	if !ok {
		return ""
	}
	return s.TxHash
}

// GradeOutcome результат GradeAndReward
type GradeOutcome struct {
	WorkflowResult
	Subject string `json:"subject"`
	Result  string `json:"result"`
	Correct bool   `json:"correct"`
	Score   int    `json:"score"`
	// Recorded false, если запись результата в леджер не состоялась
	Recorded     bool     `json:"recorded"`
	ScoreTxHash  string   `json:"tx_hash,omitempty"`
	RewardTxHash string   `json:"reward_tx_hash,omitempty"`
	TokenBalance *big.Int `json:"token_balance,omitempty"`
	BalanceError string   `json:"balance_error,omitempty"`
}
