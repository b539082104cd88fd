package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/Freeeeeet/tutorchain/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

type mapBank map[string][]model.QuizQuestion

func (b mapBank) Questions(subject string) []model.QuizQuestion { return b[subject] }

func (b mapBank) Subjects() []string {
	out := make([]string, 0, len(b))
	for s := range b {
		out = append(out, s)
	}
	return out
}

var testBank = mapBank{
	"Math": {
		{Subject: "Math", Question: "What's 2+2?", Answer: "4"},
		{Subject: "Math", Question: "What's 3*3?", Answer: "9"},
	},
}

func TestGrade(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		submitted string
		correct   string
		want      model.GradeResult
	}{
		{submitted: "paris", correct: "Paris", want: model.GradeResult{Correct: true, Score: 1}},
		{submitted: "PARIS", correct: "Paris", want: model.GradeResult{Correct: true, Score: 1}},
		{submitted: "pariss", correct: "Paris", want: model.GradeResult{Correct: false, Score: 0}},
		{submitted: "", correct: "Paris", want: model.GradeResult{}},
	}

	for _, tc := range testCases {
		t.Run(tc.submitted, func(t *testing.T) {
			assert.Equal(t, tc.want, Grade("What's the capital of France?", tc.submitted, tc.correct))
		})
	}
}

func TestParseQuestion(t *testing.T) {
	t.Parallel()

	q, err := ParseQuestion("Sure! Question: What's 5+5?\nAnswer: 10")
	require.NoError(t, err)
	assert.Equal(t, "What's 5+5?", q.Question)
	assert.Equal(t, "10", q.Answer)

	for _, raw := range []string{
		"What's 5+5? 10",
		"Question: What's 5+5?",
		"Question: Answer: 10",
		"Question: What's 5+5? Answer:  ",
	} {
		_, err := ParseQuestion(raw)
		assert.ErrorIs(t, err, apperr.ErrEncoding, raw)
	}
}

func TestGenerateQuestionUsesGenerator(t *testing.T) {
	t.Parallel()

	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(system string) bool {
		return assert.Contains(t, system, "hard quiz question") && assert.Contains(t, system, "subject of Math")
	}), "Generate a quiz question for Math").Return("Question: What's 7*6? Answer: 42", nil)

	s := NewQuizService(gen, testBank, nil, time.Second, nil)
	q, err := s.GenerateQuestion(context.Background(), "Math", "hard")
	require.NoError(t, err)
	assert.Equal(t, "What's 7*6?", q.Question)
	assert.Equal(t, "42", q.Answer)
	assert.Equal(t, model.QuestionSourceGenerated, q.Source)
	gen.AssertExpectations(t)
}

func TestGenerateQuestionFallsBackOnMissingAnswerMarker(t *testing.T) {
	t.Parallel()

	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("Question: What's 7*6?", nil)

	s := NewQuizService(gen, testBank, nil, time.Second, nil)
	s.pick = func(int) int { return 1 }

	q, err := s.GenerateQuestion(context.Background(), "Math", "")
	require.NoError(t, err)
	assert.Equal(t, testBank["Math"][1].Question, q.Question)
	assert.Equal(t, "9", q.Answer)
	assert.Equal(t, model.QuestionSourceStatic, q.Source)
}

func TestGenerateQuestionFallsBackOnUpstreamError(t *testing.T) {
	t.Parallel()

	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("", apperr.New(apperr.KindNetwork, "generate text", errors.New("dial tcp: timeout")))

	s := NewQuizService(gen, testBank, nil, time.Second, nil)
	q, err := s.GenerateQuestion(context.Background(), "Math", "")
	require.NoError(t, err)
	assert.Contains(t, []string{"What's 2+2?", "What's 3*3?"}, q.Question)
}

func TestGenerateQuestionWithoutGeneratorOrFallback(t *testing.T) {
	t.Parallel()

	s := NewQuizService(nil, testBank, nil, time.Second, nil)

	q, err := s.GenerateQuestion(context.Background(), "Math", "")
	require.NoError(t, err)
	assert.Equal(t, model.QuestionSourceStatic, q.Source)

	_, err = s.GenerateQuestion(context.Background(), "History", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrUnavailable)

	_, err = s.GenerateQuestion(context.Background(), " ", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
