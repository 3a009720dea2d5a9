package repository

import (
	"github.com/yourusername/geoquiz-api/internal/domain/entity"
)

// RuleSetRepository определяет методы для работы с наборами правил квизов
type RuleSetRepository interface {
	Create(ruleSet *entity.QuizRuleSet) error
	GetByID(id uint) (*entity.QuizRuleSet, error)

	// GetBySlug возвращает набор правил со всеми связями
	// (allow-list'ы тем/стран/ключевых слов и выбранные вопросы)
	GetBySlug(slug string) (*entity.QuizRuleSet, error)

	List(onlyActive bool) ([]entity.QuizRuleSet, error)
	Update(ruleSet *entity.QuizRuleSet) error
	Delete(id uint) error

	// ReplaceSelectedQuestions заменяет явный список вопросов manual-режима
	ReplaceSelectedQuestions(ruleSetID uint, questionIDs []uint) error
	ReplaceAllowedKeywords(ruleSetID uint, keywordIDs []uint) error
	ReplaceAllowedCountries(ruleSetID uint, countryIDs []uint) error
	ReplaceAllowedBroadThemes(ruleSetID uint, themeIDs []uint) error
	ReplaceAllowedSpecificThemes(ruleSetID uint, themeIDs []uint) error
}
