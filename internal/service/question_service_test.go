package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/geoquiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/geoquiz-api/internal/pkg/errors"
)

func newQuestionService() (*QuestionService, *MockQuestionRepo, *MockStatsRepo) {
	questionRepo := new(MockQuestionRepo)
	statsRepo := new(MockStatsRepo)
	return NewQuestionService(questionRepo, statsRepo), questionRepo, statsRepo
}

func validQuestion() *entity.Question {
	return &entity.Question{
		Text:            "Как называется контейнер тайника?",
		Answers:         entity.StringArray{"Кеш", "Лог", "Вэйпоинт"},
		CorrectAnswer:   0,
		DifficultyLevel: 2,
		IsPublished:     true,
	}
}

func TestQuestionService_CreateValid(t *testing.T) {
	svc, questionRepo, _ := newQuestionService()
	question := validQuestion()

	questionRepo.On("Create", question).Return(nil).Once()

	err := svc.Create(question)

	assert.NoError(t, err)
	questionRepo.AssertExpectations(t)
}

func TestQuestionService_CreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(q *entity.Question)
	}{
		{
			name:   "пустой текст",
			mutate: func(q *entity.Question) { q.Text = "   " },
		},
		{
			name:   "меньше двух вариантов",
			mutate: func(q *entity.Question) { q.Answers = entity.StringArray{"Кеш"} },
		},
		{
			name:   "пустой вариант ответа",
			mutate: func(q *entity.Question) { q.Answers[1] = "  " },
		},
		{
			name:   "индекс правильного ответа за пределами",
			mutate: func(q *entity.Question) { q.CorrectAnswer = 3 },
		},
		{
			name:   "отрицательный индекс правильного ответа",
			mutate: func(q *entity.Question) { q.CorrectAnswer = -1 },
		},
		{
			name:   "нулевая сложность",
			mutate: func(q *entity.Question) { q.DifficultyLevel = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, questionRepo, _ := newQuestionService()
			question := validQuestion()
			tt.mutate(question)

			err := svc.Create(question)

			assert.ErrorIs(t, err, apperrors.ErrValidation)
			questionRepo.AssertNotCalled(t, "Create", mock.Anything)
		})
	}
}

func TestQuestionService_CreateBatch(t *testing.T) {
	svc, questionRepo, _ := newQuestionService()
	questions := []entity.Question{*validQuestion(), *validQuestion()}

	questionRepo.On("CreateBatch", questions).Return(nil).Once()

	err := svc.CreateBatch(questions)

	assert.NoError(t, err)
	questionRepo.AssertExpectations(t)
}

func TestQuestionService_CreateBatchRejectsWholeBatch(t *testing.T) {
	// Один невалидный вопрос в пакете — не сохраняется ничего
	svc, questionRepo, _ := newQuestionService()
	bad := *validQuestion()
	bad.CorrectAnswer = 99
	questions := []entity.Question{*validQuestion(), bad}

	err := svc.CreateBatch(questions)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "question 2")
	questionRepo.AssertNotCalled(t, "CreateBatch", mock.Anything)
}

func TestQuestionService_CreateBatchEmpty(t *testing.T) {
	svc, questionRepo, _ := newQuestionService()

	err := svc.CreateBatch(nil)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	questionRepo.AssertNotCalled(t, "CreateBatch", mock.Anything)
}

func TestQuestionService_UpdateUnknownQuestion(t *testing.T) {
	svc, questionRepo, _ := newQuestionService()
	question := validQuestion()
	question.ID = 7

	questionRepo.On("GetByID", uint(7)).Return(nil, apperrors.ErrNotFound).Once()

	err := svc.Update(question)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	questionRepo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestQuestionService_UpdateValid(t *testing.T) {
	svc, questionRepo, _ := newQuestionService()
	question := validQuestion()
	question.ID = 7

	questionRepo.On("GetByID", uint(7)).Return(validQuestion(), nil).Once()
	questionRepo.On("Update", question).Return(nil).Once()

	err := svc.Update(question)

	assert.NoError(t, err)
	questionRepo.AssertExpectations(t)
}

func TestQuestionService_DeleteUnknownQuestion(t *testing.T) {
	svc, questionRepo, _ := newQuestionService()

	questionRepo.On("GetByID", uint(404)).Return(nil, apperrors.ErrNotFound).Once()

	err := svc.Delete(404)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	questionRepo.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestQuestionService_AnswerDistribution(t *testing.T) {
	svc, questionRepo, statsRepo := newQuestionService()
	question := validQuestion()
	question.ID = 5

	distribution := []entity.QuestionAnswerStat{
		{QuestionID: 5, AnswerIndex: 0, SelectedCount: 12},
		{QuestionID: 5, AnswerIndex: 1, SelectedCount: 3},
	}
	questionRepo.On("GetByID", uint(5)).Return(question, nil).Once()
	statsRepo.On("GetAnswerDistribution", uint(5)).Return(distribution, nil).Once()

	stats, err := svc.AnswerDistribution(5)

	assert.NoError(t, err)
	assert.Equal(t, distribution, stats)
}

func TestQuestionService_AnswerDistributionRepoError(t *testing.T) {
	svc, questionRepo, statsRepo := newQuestionService()

	questionRepo.On("GetByID", uint(5)).Return(validQuestion(), nil).Once()
	statsRepo.On("GetAnswerDistribution", uint(5)).Return(nil, errors.New("db down")).Once()

	stats, err := svc.AnswerDistribution(5)

	assert.Error(t, err)
	assert.Nil(t, stats)
}
