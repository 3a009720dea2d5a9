package repository

import (
	"github.com/yourusername/geoquiz-api/internal/domain/entity"
)

// CandidateFilter описывает фильтры подбора вопросов-кандидатов
// для одного уровня сложности
type CandidateFilter struct {
	DifficultyLevel  int
	BroadThemeIDs    []uint // пустой срез = без фильтра
	SpecificThemeIDs []uint
	CountryIDs       []uint
	KeywordIDs       []uint
}

// QuestionRepository определяет методы для работы с вопросами
type QuestionRepository interface {
	Create(question *entity.Question) error
	CreateBatch(questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	Update(question *entity.Question) error
	Delete(id uint) error

	// GetPublishedByIDs возвращает опубликованные вопросы по списку ID
	// (ключевые слова загружены)
	GetPublishedByIDs(ids []uint) ([]entity.Question, error)

	// FindCandidates возвращает опубликованные вопросы, подходящие под
	// фильтры уровня (ключевые слова загружены)
	FindCandidates(filter CandidateFilter) ([]entity.Question, error)
	CountCandidates(filter CandidateFilter) (int64, error)

	// GetRandomPublished возвращает случайные опубликованные вопросы
	// для legacy-режима без набора правил
	GetRandomPublished(limit int, excludeIDs []uint) ([]entity.Question, error)

	// IncrementAnswerStats атомарно обновляет агрегированную статистику вопроса
	IncrementAnswerStats(id uint, correct bool) error
}
