package generator

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/Freeeeeet/tutorchain/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultQuestions []byte

// StaticBank запасные вопросы, сгруппированные по предмету
type StaticBank struct {
	bySubject map[string][]model.QuizQuestion
	subjects  []string
}

// DefaultBank банк из встроенного questions.yaml
func DefaultBank() *StaticBank {
	bank, err := ParseBank(defaultQuestions)
	if err != nil {
		panic(fmt.Sprintf("parse embedded questions: %v", err))
	}
	return bank
}

// ParseBank разбирает YAML со списком {subject, q, a}
func ParseBank(raw []byte) (*StaticBank, error) {
	var questions []model.QuizQuestion
	if err := yaml.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	bank := &StaticBank{bySubject: make(map[string][]model.QuizQuestion)}
	for i, q := range questions {
		if strings.TrimSpace(q.Subject) == "" || strings.TrimSpace(q.Question) == "" || strings.TrimSpace(q.Answer) == "" {
			return nil, fmt.Errorf("question %d: subject, q and a are required", i)
		}
		q.Source = model.QuestionSourceStatic
		if _, ok := bank.bySubject[q.Subject]; !ok {
			bank.subjects = append(bank.subjects, q.Subject)
		}
		bank.bySubject[q.Subject] = append(bank.bySubject[q.Subject], q)
	}
	sort.Strings(bank.subjects)

	return bank, nil
}

// Questions возвращает копию вопросов по предмету
func (b *StaticBank) Questions(subject string) []model.QuizQuestion {
	return append([]model.QuizQuestion(nil), b.bySubject[subject]...)
}

// Subjects предметы, для которых есть вопросы
func (b *StaticBank) Subjects() []string {
	return append([]string(nil), b.subjects...)
}
