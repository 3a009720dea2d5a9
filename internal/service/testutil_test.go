package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/geoquiz-api/internal/domain/entity"
	"github.com/yourusername/geoquiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/geoquiz-api/internal/pkg/errors"
)

// fakeCache — потокобезопасная in-memory реализация CacheRepository
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Set(key string, value interface{}, expiration time.Duration) error {
	return f.SetJSON(key, value, expiration)
}

func (f *fakeCache) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.data[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return string(data), nil
}

func (f *fakeCache) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeCache) Increment(key string) (int64, error) {
	return 0, nil
}

func (f *fakeCache) SetJSON(key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = data
	return nil
}

func (f *fakeCache) GetJSON(key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.data[key]
	if !ok {
		return apperrors.ErrNotFound
	}
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Exists(key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok, nil
}

func (f *fakeCache) ExpireAt(key string, expiration time.Time) error {
	return nil
}

func (f *fakeCache) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	f.data[key] = data
	return true, nil
}

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

// MockRuleSetRepo - мок для RuleSetRepository
type MockRuleSetRepo struct {
	mock.Mock
}

func (m *MockRuleSetRepo) Create(ruleSet *entity.QuizRuleSet) error {
	args := m.Called(ruleSet)
	return args.Error(0)
}

func (m *MockRuleSetRepo) GetByID(id uint) (*entity.QuizRuleSet, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizRuleSet), args.Error(1)
}

func (m *MockRuleSetRepo) GetBySlug(slug string) (*entity.QuizRuleSet, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizRuleSet), args.Error(1)
}

func (m *MockRuleSetRepo) List(onlyActive bool) ([]entity.QuizRuleSet, error) {
	args := m.Called(onlyActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuizRuleSet), args.Error(1)
}

func (m *MockRuleSetRepo) Update(ruleSet *entity.QuizRuleSet) error {
	args := m.Called(ruleSet)
	return args.Error(0)
}

func (m *MockRuleSetRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockRuleSetRepo) ReplaceSelectedQuestions(ruleSetID uint, questionIDs []uint) error {
	args := m.Called(ruleSetID, questionIDs)
	return args.Error(0)
}

func (m *MockRuleSetRepo) ReplaceAllowedKeywords(ruleSetID uint, keywordIDs []uint) error {
	args := m.Called(ruleSetID, keywordIDs)
	return args.Error(0)
}

func (m *MockRuleSetRepo) ReplaceAllowedCountries(ruleSetID uint, countryIDs []uint) error {
	args := m.Called(ruleSetID, countryIDs)
	return args.Error(0)
}

func (m *MockRuleSetRepo) ReplaceAllowedBroadThemes(ruleSetID uint, themeIDs []uint) error {
	args := m.Called(ruleSetID, themeIDs)
	return args.Error(0)
}

func (m *MockRuleSetRepo) ReplaceAllowedSpecificThemes(ruleSetID uint, themeIDs []uint) error {
	args := m.Called(ruleSetID, themeIDs)
	return args.Error(0)
}

// MockSessionRepo - мок для SessionRepository
type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) Create(session *entity.UserQuizSession) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockSessionRepo) GetByID(id uint) (*entity.UserQuizSession, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserQuizSession), args.Error(1)
}

func (m *MockSessionRepo) Update(session *entity.UserQuizSession) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockSessionRepo) ListByRuleSet(ruleSetID uint, limit int) ([]entity.UserQuizSession, error) {
	args := m.Called(ruleSetID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.UserQuizSession), args.Error(1)
}

func (m *MockSessionRepo) ListByPlayer(playerID string, limit int) ([]entity.UserQuizSession, error) {
	args := m.Called(playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.UserQuizSession), args.Error(1)
}

func (m *MockSessionRepo) ListInProgressByPlayer(playerID string) ([]entity.UserQuizSession, error) {
	args := m.Called(playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.UserQuizSession), args.Error(1)
}

func (m *MockSessionRepo) CountByRuleSet(ruleSetID uint) (int64, int64, int64, error) {
	args := m.Called(ruleSetID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Get(2).(int64), args.Error(3)
}

// MockStatsRepo - мок для StatsRepository
type MockStatsRepo struct {
	mock.Mock
}

func (m *MockStatsRepo) RecordAnswer(playerID string, questionID uint, selectedAnswer int, isCorrect bool) error {
	args := m.Called(playerID, questionID, selectedAnswer, isCorrect)
	return args.Error(0)
}

func (m *MockStatsRepo) AnsweredQuestionIDs(playerID string) ([]uint, error) {
	args := m.Called(playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockStatsRepo) AnsweredKeywordIDs(playerID string) ([]uint, error) {
	args := m.Called(playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockStatsRepo) GetPlayerStats(playerID string) ([]entity.UserQuestionStat, error) {
	args := m.Called(playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.UserQuestionStat), args.Error(1)
}

func (m *MockStatsRepo) GetAnswerDistribution(questionID uint) ([]entity.QuestionAnswerStat, error) {
	args := m.Called(questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuestionAnswerStat), args.Error(1)
}
