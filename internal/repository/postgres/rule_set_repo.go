package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/yourusername/geoquiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/geoquiz-api/internal/pkg/errors"
)

// Код ошибки PostgreSQL для нарушения уникальности
const uniqueViolationCode = "23505"

// RuleSetRepo реализует repository.RuleSetRepository
type RuleSetRepo struct {
	db *gorm.DB
}

// NewRuleSetRepo создает новый репозиторий наборов правил
func NewRuleSetRepo(db *gorm.DB) *RuleSetRepo {
	return &RuleSetRepo{db: db}
}

// Create создает новый набор правил
func (r *RuleSetRepo) Create(ruleSet *entity.QuizRuleSet) error {
	err := r.db.Create(ruleSet).Error
	if isUniqueViolation(err) {
		return apperrors.ErrConflict
	}
	return err
}

// GetByID возвращает набор правил по ID со всеми связями
func (r *RuleSetRepo) GetByID(id uint) (*entity.QuizRuleSet, error) {
	var ruleSet entity.QuizRuleSet
	err := r.preloadAll().First(&ruleSet, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &ruleSet, nil
}

// GetBySlug возвращает набор правил по slug со всеми связями
func (r *RuleSetRepo) GetBySlug(slug string) (*entity.QuizRuleSet, error) {
	var ruleSet entity.QuizRuleSet
	err := r.preloadAll().Where("slug = ?", slug).First(&ruleSet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &ruleSet, nil
}

// List возвращает наборы правил (без тяжёлых связей)
func (r *RuleSetRepo) List(onlyActive bool) ([]entity.QuizRuleSet, error) {
	var ruleSets []entity.QuizRuleSet
	query := r.db.Order("id")
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&ruleSets).Error
	if err != nil {
		return nil, err
	}
	return ruleSets, nil
}

// Update обновляет набор правил
func (r *RuleSetRepo) Update(ruleSet *entity.QuizRuleSet) error {
	err := r.db.Save(ruleSet).Error
	if isUniqueViolation(err) {
		return apperrors.ErrConflict
	}
	return err
}

// Delete удаляет набор правил вместе со связями
func (r *RuleSetRepo) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.QuizRuleSet{ID: id}).Association("SelectedQuestions").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&entity.QuizRuleSet{ID: id}).Association("AllowedKeywords").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&entity.QuizRuleSet{ID: id}).Association("AllowedCountries").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&entity.QuizRuleSet{ID: id}).Association("AllowedBroadThemes").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&entity.QuizRuleSet{ID: id}).Association("AllowedSpecificThemes").Clear(); err != nil {
			return err
		}
		return tx.Delete(&entity.QuizRuleSet{}, id).Error
	})
}

// ReplaceSelectedQuestions заменяет явный список вопросов manual-режима
func (r *RuleSetRepo) ReplaceSelectedQuestions(ruleSetID uint, questionIDs []uint) error {
	questions := make([]entity.Question, len(questionIDs))
	for i, id := range questionIDs {
		questions[i] = entity.Question{ID: id}
	}
	return r.db.Model(&entity.QuizRuleSet{ID: ruleSetID}).
		Association("SelectedQuestions").Replace(questions)
}

// ReplaceAllowedKeywords заменяет allow-list ключевых слов
func (r *RuleSetRepo) ReplaceAllowedKeywords(ruleSetID uint, keywordIDs []uint) error {
	keywords := make([]entity.Keyword, len(keywordIDs))
	for i, id := range keywordIDs {
		keywords[i] = entity.Keyword{ID: id}
	}
	return r.db.Model(&entity.QuizRuleSet{ID: ruleSetID}).
		Association("AllowedKeywords").Replace(keywords)
}

// ReplaceAllowedCountries заменяет allow-list стран
func (r *RuleSetRepo) ReplaceAllowedCountries(ruleSetID uint, countryIDs []uint) error {
	countries := make([]entity.Country, len(countryIDs))
	for i, id := range countryIDs {
		countries[i] = entity.Country{ID: id}
	}
	return r.db.Model(&entity.QuizRuleSet{ID: ruleSetID}).
		Association("AllowedCountries").Replace(countries)
}

// ReplaceAllowedBroadThemes заменяет allow-list широких тем
func (r *RuleSetRepo) ReplaceAllowedBroadThemes(ruleSetID uint, themeIDs []uint) error {
	themes := make([]entity.BroadTheme, len(themeIDs))
	for i, id := range themeIDs {
		themes[i] = entity.BroadTheme{ID: id}
	}
	return r.db.Model(&entity.QuizRuleSet{ID: ruleSetID}).
		Association("AllowedBroadThemes").Replace(themes)
}

// ReplaceAllowedSpecificThemes заменяет allow-list подтем
func (r *RuleSetRepo) ReplaceAllowedSpecificThemes(ruleSetID uint, themeIDs []uint) error {
	themes := make([]entity.SpecificTheme, len(themeIDs))
	for i, id := range themeIDs {
		themes[i] = entity.SpecificTheme{ID: id}
	}
	return r.db.Model(&entity.QuizRuleSet{ID: ruleSetID}).
		Association("AllowedSpecificThemes").Replace(themes)
}

func (r *RuleSetRepo) preloadAll() *gorm.DB {
	return r.db.
		Preload("AllowedBroadThemes").
		Preload("AllowedSpecificThemes").
		Preload("AllowedCountries").
		Preload("AllowedKeywords").
		Preload("SelectedQuestions").
		Preload("SelectedQuestions.Keywords")
}

// isUniqueViolation проверяет, является ли ошибка нарушением
// ограничения уникальности PostgreSQL. GORM-драйвер работает поверх
// pgx, но при подключении через DSN lib/pq ошибки приходят в его типе,
// поэтому проверяем оба.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}
	return false
}
