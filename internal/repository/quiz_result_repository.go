package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutorchain/internal/model"
	"github.com/Freeeeeet/tutorchain/internal/repository/base"
)

type QuizResultRepository struct {
	*base.Repository
}

func NewQuizResultRepository(db base.DB) *QuizResultRepository {
	return &QuizResultRepository{Repository: base.NewRepository(db)}
}

// Save сохраняет результат пройденного вопроса
func (r *QuizResultRepository) Save(ctx context.Context, res *model.QuizResult) error {
	query := `
		INSERT INTO quiz_results (workflow_id, learner, subject, question, correct, score, state, score_tx_hash, reward_tx_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		res.WorkflowID,
		res.Learner,
		res.Subject,
		res.Question,
		res.Correct,
		res.Score,
		res.State,
		base.NullString(res.ScoreTxHash),
		base.NullString(res.RewardTxHash),
	).Scan(&res.ID, &res.CreatedAt)

	if err != nil {
		return fmt.Errorf("save quiz result: %w", err)
	}

	return nil
}

// ListByLearner последние результаты ученика, новые первыми
func (r *QuizResultRepository) ListByLearner(ctx context.Context, learner string, limit int) ([]*model.QuizResult, error) {
	query := `
		SELECT id, workflow_id, learner, subject, question, correct, score, state, score_tx_hash, reward_tx_hash, created_at
		FROM quiz_results
		WHERE learner = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.Query(ctx, query, learner, limit)
	if err != nil {
		return nil, fmt.Errorf("list quiz results: %w", err)
	}
	defer rows.Close()

	var results []*model.QuizResult
	for rows.Next() {
		var (
			res          model.QuizResult
			scoreTxHash  *string
			rewardTxHash *string
		)
		err := rows.Scan(
			&res.ID,
			&res.WorkflowID,
			&res.Learner,
			&res.Subject,
			&res.Question,
			&res.Correct,
			&res.Score,
			&res.State,
			&scoreTxHash,
			&rewardTxHash,
			&res.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan quiz result: %w", err)
		}
		res.ScoreTxHash = base.StringValue(scoreTxHash)
		res.RewardTxHash = base.StringValue(rewardTxHash)
		results = append(results, &res)
	}

	return results, rows.Err()
}
