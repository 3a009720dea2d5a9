package playlist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/geoquiz-api/internal/domain/entity"
	"github.com/yourusername/geoquiz-api/internal/domain/repository"
)

// MockQuestionRepo - мок для QuestionRepository
type MockQuestionRepo struct {
	mock.Mock
}

func (m *MockQuestionRepo) Create(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepo) CreateBatch(questions []entity.Question) error {
	args := m.Called(questions)
	return args.Error(0)
}

func (m *MockQuestionRepo) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) Update(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockQuestionRepo) GetPublishedByIDs(ids []uint) ([]entity.Question, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) FindCandidates(filter repository.CandidateFilter) ([]entity.Question, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) CountCandidates(filter repository.CandidateFilter) (int64, error) {
	args := m.Called(filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepo) GetRandomPublished(limit int, excludeIDs []uint) ([]entity.Question, error) {
	args := m.Called(limit, excludeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) IncrementAnswerStats(id uint, correct bool) error {
	args := m.Called(id, correct)
	return args.Error(0)
}

func diffQuestion(id uint, difficulty int, keywordIDs ...uint) entity.Question {
	q := question(id, keywordIDs...)
	q.DifficultyLevel = difficulty
	return q
}

func autoRuleSet() *entity.QuizRuleSet {
	rs := &entity.QuizRuleSet{
		Slug:                     "geo-basics",
		SelectionMode:            entity.SelectionModeAuto,
		OrderMode:                entity.OrderModeDifficultyAscending,
		PreventDuplicateKeywords: true,
		UseAllBroadThemes:        true,
		UseAllSpecificThemes:     true,
		UseAllCountries:          true,
		UseAllKeywords:           true,
	}
	rs.SetAllowedDifficulties([]int{1, 2})
	rs.SetQuestionsPerDifficulty(map[int]int{1: 2, 2: 1})
	return rs
}

// Квоты {1:2, 2:1}: две лёгких, затем одна средняя, лёгкие строго впереди
func TestGenerator_AutoQuotasAndOrdering(t *testing.T) {
	mockRepo := new(MockQuestionRepo)
	mockRepo.On("FindCandidates", repository.CandidateFilter{DifficultyLevel: 1}).
		Return([]entity.Question{
			diffQuestion(1, 1), diffQuestion(2, 1), diffQuestion(3, 1),
		}, nil)
	mockRepo.On("FindCandidates", repository.CandidateFilter{DifficultyLevel: 2}).
		Return([]entity.Question{diffQuestion(10, 2)}, nil)

	generator := NewGenerator(mockRepo)
	result, err := generator.Generate(autoRuleSet(), PlayerHistory{})

	assert.NoError(t, err)
	assert.Len(t, result.QuestionIDs, 3)
	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 0, result.Shortfall())
	assert.True(t, result.Perfect)

	// Первые две позиции — вопросы сложности 1, третья — сложности 2
	easy := map[uint]bool{1: true, 2: true, 3: true}
	assert.True(t, easy[result.QuestionIDs[0]])
	assert.True(t, easy[result.QuestionIDs[1]])
	assert.Equal(t, uint(10), result.QuestionIDs[2])
	mockRepo.AssertExpectations(t)
}

// Истощение пула — не ошибка: плейлист короче запрошенного
func TestGenerator_AutoPoolExhaustion(t *testing.T) {
	mockRepo := new(MockQuestionRepo)
	mockRepo.On("FindCandidates", repository.CandidateFilter{DifficultyLevel: 1}).
		Return([]entity.Question{diffQuestion(1, 1)}, nil)
	mockRepo.On("FindCandidates", repository.CandidateFilter{DifficultyLevel: 2}).
		Return([]entity.Question{}, nil)

	generator := NewGenerator(mockRepo)
	result, err := generator.Generate(autoRuleSet(), PlayerHistory{})

	assert.NoError(t, err)
	assert.Equal(t, []uint{1}, result.QuestionIDs)
	assert.Equal(t, 2, result.Shortfall())
}

// Использованные ключевые слова переносятся между бакетами:
// во втором бакете выбирается вопрос без дубля
func TestGenerator_AutoUsedKeywordsCrossBuckets(t *testing.T) {
	ruleSet := autoRuleSet()
	ruleSet.SetQuestionsPerDifficulty(map[int]int{1: 1, 2: 1})

	mockRepo := new(MockQuestionRepo)
	mockRepo.On("FindCandidates", repository.CandidateFilter{DifficultyLevel: 1}).
		Return([]entity.Question{diffQuestion(1, 1, 100)}, nil)
	mockRepo.On("FindCandidates", repository.CandidateFilter{DifficultyLevel: 2}).
		Return([]entity.Question{diffQuestion(2, 2, 100), diffQuestion(3, 2, 200)}, nil)

	generator := NewGenerator(mockRepo)
	result, err := generator.Generate(ruleSet, PlayerHistory{})

	assert.NoError(t, err)
	assert.Equal(t, []uint{1, 3}, result.QuestionIDs)
	assert.True(t, result.Perfect)
}

// full_shuffle содержит все вопросы без гарантий порядка
func TestGenerator_AutoFullShuffle(t *testing.T) {
	ruleSet := autoRuleSet()
	ruleSet.OrderMode = entity.OrderModeFullShuffle

	mockRepo := new(MockQuestionRepo)
	mockRepo.On("FindCandidates", repository.CandidateFilter{DifficultyLevel: 1}).
		Return([]entity.Question{diffQuestion(1, 1), diffQuestion(2, 1)}, nil)
	mockRepo.On("FindCandidates", repository.CandidateFilter{DifficultyLevel: 2}).
		Return([]entity.Question{diffQuestion(10, 2)}, nil)

	generator := NewGenerator(mockRepo)
	result, err := generator.Generate(ruleSet, PlayerHistory{})

	assert.NoError(t, err)
	assert.ElementsMatch(t, []uint{1, 2, 10}, result.QuestionIDs)
}

// Ошибка репозитория пробрасывается наружу
func TestGenerator_AutoRepositoryError(t *testing.T) {
	mockRepo := new(MockQuestionRepo)
	mockRepo.On("FindCandidates", mock.Anything).
		Return(nil, errors.New("database error"))

	generator := NewGenerator(mockRepo)
	_, err := generator.Generate(autoRuleSet(), PlayerHistory{})

	assert.Error(t, err)
}

// Allow-list фильтры попадают в CandidateFilter только при UseAll* = false
func TestGenerator_AutoBuildsFilterFromAllowLists(t *testing.T) {
	ruleSet := autoRuleSet()
	ruleSet.SetAllowedDifficulties([]int{1})
	ruleSet.SetQuestionsPerDifficulty(map[int]int{1: 1})
	ruleSet.UseAllCountries = false
	ruleSet.AllowedCountries = []entity.Country{{ID: 7}, {ID: 9}}

	mockRepo := new(MockQuestionRepo)
	mockRepo.On("FindCandidates", repository.CandidateFilter{
		DifficultyLevel: 1,
		CountryIDs:      []uint{7, 9},
	}).Return([]entity.Question{diffQuestion(1, 1)}, nil)

	generator := NewGenerator(mockRepo)
	result, err := generator.Generate(ruleSet, PlayerHistory{})

	assert.NoError(t, err)
	assert.Equal(t, []uint{1}, result.QuestionIDs)
	mockRepo.AssertExpectations(t)
}

// Manual-режим: все опубликованные вопросы списка попадают в плейлист,
// неотвеченные выдвигаются вперёд
func TestGenerator_ManualReRank(t *testing.T) {
	ruleSet := &entity.QuizRuleSet{
		Slug:                     "curated",
		SelectionMode:            entity.SelectionModeManual,
		PreventDuplicateKeywords: true,
		SelectedQuestions: []entity.Question{
			{ID: 1}, {ID: 2}, {ID: 3},
		},
	}

	mockRepo := new(MockQuestionRepo)
	mockRepo.On("GetPublishedByIDs", []uint{1, 2, 3}).
		Return([]entity.Question{question(1), question(2), question(3)}, nil)

	generator := NewGenerator(mockRepo)
	history := PlayerHistory{SeenQuestionIDs: map[uint]bool{1: true}}
	result, err := generator.Generate(ruleSet, history)

	assert.NoError(t, err)
	assert.Equal(t, []uint{2, 3, 1}, result.QuestionIDs, "отвеченный вопрос уходит в конец")
	assert.False(t, result.Perfect)
}

// Manual-режим: неопубликованные вопросы молча выпадают из плейлиста
func TestGenerator_ManualUnpublishedDropped(t *testing.T) {
	ruleSet := &entity.QuizRuleSet{
		Slug:          "curated",
		SelectionMode: entity.SelectionModeManual,
		SelectedQuestions: []entity.Question{
			{ID: 1}, {ID: 2}, {ID: 3},
		},
	}

	mockRepo := new(MockQuestionRepo)
	mockRepo.On("GetPublishedByIDs", []uint{1, 2, 3}).
		Return([]entity.Question{question(1), question(3)}, nil)

	generator := NewGenerator(mockRepo)
	result, err := generator.Generate(ruleSet, PlayerHistory{})

	assert.NoError(t, err)
	assert.Len(t, result.QuestionIDs, 2)
	assert.Equal(t, 1, result.Shortfall())
}
