package service

import (
	"fmt"
	"strings"

	"github.com/yourusername/geoquiz-api/internal/domain/entity"
	"github.com/yourusername/geoquiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/geoquiz-api/internal/pkg/errors"
)

// QuestionService управляет банком вопросов
type QuestionService struct {
	questionRepo repository.QuestionRepository
	statsRepo    repository.StatsRepository
}

// NewQuestionService создает новый сервис вопросов
func NewQuestionService(
	questionRepo repository.QuestionRepository,
	statsRepo repository.StatsRepository,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		statsRepo:    statsRepo,
	}
}

// Create валидирует и сохраняет новый вопрос
func (s *QuestionService) Create(question *entity.Question) error {
	if err := s.validate(question); err != nil {
		return err
	}
	return s.questionRepo.Create(question)
}

// CreateBatch валидирует и сохраняет пакет вопросов одной транзакцией.
// Если хоть один вопрос невалиден, не сохраняется ничего.
func (s *QuestionService) CreateBatch(questions []entity.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: batch is empty", apperrors.ErrValidation)
	}
	for i := range questions {
		if err := s.validate(&questions[i]); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return s.questionRepo.CreateBatch(questions)
}

// GetByID возвращает вопрос по ID
func (s *QuestionService) GetByID(id uint) (*entity.Question, error) {
	return s.questionRepo.GetByID(id)
}

// Update валидирует и сохраняет изменения вопроса
func (s *QuestionService) Update(question *entity.Question) error {
	if _, err := s.questionRepo.GetByID(question.ID); err != nil {
		return err
	}
	if err := s.validate(question); err != nil {
		return err
	}
	return s.questionRepo.Update(question)
}

// Delete удаляет вопрос
func (s *QuestionService) Delete(id uint) error {
	if _, err := s.questionRepo.GetByID(id); err != nil {
		return err
	}
	return s.questionRepo.Delete(id)
}

// AnswerDistribution возвращает глобальные счётчики выбора вариантов
// ответа по вопросу
func (s *QuestionService) AnswerDistribution(questionID uint) ([]entity.QuestionAnswerStat, error) {
	if _, err := s.questionRepo.GetByID(questionID); err != nil {
		return nil, err
	}
	return s.statsRepo.GetAnswerDistribution(questionID)
}

// validate проверяет вопрос перед сохранением
func (s *QuestionService) validate(question *entity.Question) error {
	if strings.TrimSpace(question.Text) == "" {
		return fmt.Errorf("%w: text is required", apperrors.ErrValidation)
	}
	if len(question.Answers) < 2 {
		return fmt.Errorf("%w: at least two answers are required", apperrors.ErrValidation)
	}
	for i, answer := range question.Answers {
		if strings.TrimSpace(answer) == "" {
			return fmt.Errorf("%w: answer %d is empty", apperrors.ErrValidation, i+1)
		}
	}
	if !question.IsValidAnswer(question.CorrectAnswer) {
		return fmt.Errorf("%w: correct answer index %d is out of range", apperrors.ErrValidation, question.CorrectAnswer)
	}
	if question.DifficultyLevel <= 0 {
		return fmt.Errorf("%w: difficulty level must be positive", apperrors.ErrValidation)
	}
	return nil
}
