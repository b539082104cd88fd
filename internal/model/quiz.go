package model

import "time"

type QuestionSource string

const (
	QuestionSourceGenerated QuestionSource = "generated"
	QuestionSourceStatic    QuestionSource = "static"
)

// QuizQuestion вопрос квиза; не сохраняется, используется один раз
type QuizQuestion struct {
	Question string         `json:"question" yaml:"q"`
	Answer   string         `json:"answer" yaml:"a"`
	Subject  string         `json:"subject" yaml:"subject"`
	Source   QuestionSource `json:"source,omitempty" yaml:"-"`
}

// GradeResult результат проверки ответа
type GradeResult struct {
	Correct bool `json:"correct"`
	Score   int  `json:"score"`
}

// Label текст для пользователя
func (g GradeResult) Label() string {
	if g.Correct {
		return "Correct!"
	}
	return "Wrong!"
}

// QuizResult запись о пройденном вопросе в журнале
type QuizResult struct {
	ID           int64         `json:"id"`
	WorkflowID   string        `json:"workflow_id"`
	Learner      string        `json:"learner"`
	Subject      string        `json:"subject"`
	Question     string        `json:"question"`
	Correct      bool          `json:"correct"`
	Score        int           `json:"score"`
	State        WorkflowState `json:"state"`
	ScoreTxHash  string        `json:"score_tx_hash,omitempty"`
	RewardTxHash string        `json:"reward_tx_hash,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}
