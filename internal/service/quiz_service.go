package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/Freeeeeet/tutorchain/internal/metrics"
	"github.com/Freeeeeet/tutorchain/internal/model"
	"go.uber.org/zap"
)

const (
	defaultGenerationTimeout = 20 * time.Second

	questionMarker = "Question:"
	answerMarker   = "Answer:"
)

// TextGenerator внешний генератор текста
type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// QuestionBank статический набор вопросов по предметам
type QuestionBank interface {
	Questions(subject string) []model.QuizQuestion
	Subjects() []string
}

type QuizService struct {
	gen     TextGenerator
	bank    QuestionBank
	metrics *metrics.Metrics
	logger  *zap.Logger
	timeout time.Duration
	pick    func(n int) int
}

func NewQuizService(gen TextGenerator, bank QuestionBank, m *metrics.Metrics, timeout time.Duration, logger *zap.Logger) *QuizService {
	if timeout <= 0 {
		timeout = defaultGenerationTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizService{
		gen:     gen,
		bank:    bank,
		metrics: m,
		logger:  logger,
		timeout: timeout,
		pick:    rand.IntN,
	}
}

// GenerateQuestion просит генератор вопрос по предмету. При любой ошибке
// генерации или разбора отдаёт случайный вопрос из статического банка.
func (s *QuizService) GenerateQuestion(ctx context.Context, subject, difficulty string) (model.QuizQuestion, error) {
	const op = "generate question"

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return model.QuizQuestion{}, apperr.Validation(op, "subject is required")
	}

	q, err := s.generate(ctx, subject, difficulty)
	if err == nil {
		return q, nil
	}

	s.logger.Warn("Question generation failed, using static bank",
		zap.String("subject", subject),
		zap.Error(err),
	)

	fallback, ok := s.fallback(subject)
	if !ok {
		// Отмена вызывающим важнее отсутствия запасного вопроса
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.QuizQuestion{}, apperr.New(apperr.KindNetwork, op, ctxErr)
		}
		return model.QuizQuestion{}, apperr.New(apperr.KindUnavailable, op,
			fmt.Errorf("no fallback question for subject %q: %w", subject, err))
	}
	s.metrics.QuizFallback(subject)

	return fallback, nil
}

func (s *QuizService) generate(ctx context.Context, subject, difficulty string) (model.QuizQuestion, error) {
	if s.gen == nil {
		return model.QuizQuestion{}, apperr.New(apperr.KindUnavailable, "generate question", errors.New("generator is not configured"))
	}

	gctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.gen.Generate(gctx, systemPrompt(subject, difficulty), fmt.Sprintf("Generate a quiz question for %s", subject))
	if err != nil {
		return model.QuizQuestion{}, err
	}

	q, err := ParseQuestion(raw)
	if err != nil {
		return model.QuizQuestion{}, err
	}
	q.Subject = subject
	q.Source = model.QuestionSourceGenerated
	return q, nil
}

func (s *QuizService) fallback(subject string) (model.QuizQuestion, bool) {
	if s.bank == nil {
		return model.QuizQuestion{}, false
	}
	questions := s.bank.Questions(subject)
	if len(questions) == 0 {
		return model.QuizQuestion{}, false
	}
	q := questions[s.pick(len(questions))]
	q.Source = model.QuestionSourceStatic
	return q, true
}

// Subjects предметы, для которых гарантированно есть вопрос
func (s *QuizService) Subjects() []string {
	if s.bank == nil {
		return nil
	}
	return s.bank.Subjects()
}

func systemPrompt(subject, difficulty string) string {
	level := strings.TrimSpace(difficulty)
	if level == "" {
		level = "simple"
	}
	return fmt.Sprintf("You are a helpful tutor creating quiz questions. "+
		"Generate a %s quiz question for a student in the subject of %s. "+
		"Provide the question and the correct answer in the format: 'Question: [question] Answer: [answer]'",
		level, subject)
}

// ParseQuestion разбирает "Question: ... Answer: ...". Обе части обязательны и непусты.
func ParseQuestion(raw string) (model.QuizQuestion, error) {
	const op = "parse question"

	qi := strings.Index(raw, questionMarker)
	if qi < 0 {
		return model.QuizQuestion{}, apperr.New(apperr.KindEncoding, op, fmt.Errorf("missing %q marker", questionMarker))
	}
	rest := raw[qi+len(questionMarker):]

	ai := strings.Index(rest, answerMarker)
	if ai < 0 {
		return model.QuizQuestion{}, apperr.New(apperr.KindEncoding, op, fmt.Errorf("missing %q marker", answerMarker))
	}

	question := strings.TrimSpace(rest[:ai])
	answer := strings.Trim(strings.TrimSpace(rest[ai+len(answerMarker):]), "'\"")
	if question == "" || answer == "" {
		return model.QuizQuestion{}, apperr.New(apperr.KindEncoding, op, errors.New("empty question or answer"))
	}

	return model.QuizQuestion{Question: question, Answer: strings.TrimSpace(answer)}, nil
}

// Grade сравнивает ответы без учёта регистра
func Grade(_, submitted, correct string) model.GradeResult {
	if strings.EqualFold(submitted, correct) {
		return model.GradeResult{Correct: true, Score: 1}
	}
	return model.GradeResult{}
}
