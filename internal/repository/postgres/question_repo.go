package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/geoquiz-api/internal/domain/entity"
	"github.com/yourusername/geoquiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/geoquiz-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create создает новый вопрос
func (r *QuestionRepo) Create(question *entity.Question) error {
	return r.db.Create(question).Error
}

// CreateBatch создает пакет вопросов
func (r *QuestionRepo) CreateBatch(questions []entity.Question) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Устанавливаем кодировку UTF-8 внутри транзакции
		if err := tx.Exec("SET CLIENT_ENCODING TO 'UTF8'").Error; err != nil {
			return err
		}
		return tx.Create(&questions).Error
	})
}

// GetByID возвращает вопрос по ID с ключевыми словами
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.Preload("Keywords").First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// Update обновляет информацию о вопросе
func (r *QuestionRepo) Update(question *entity.Question) error {
	return r.db.Save(question).Error
}

// Delete удаляет вопрос
func (r *QuestionRepo) Delete(id uint) error {
	return r.db.Delete(&entity.Question{}, id).Error
}

// GetPublishedByIDs возвращает опубликованные вопросы по списку ID
func (r *QuestionRepo) GetPublishedByIDs(ids []uint) ([]entity.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var questions []entity.Question
	err := r.db.Preload("Keywords").
		Where("id IN ? AND is_published = ?", ids, true).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// FindCandidates возвращает опубликованные вопросы, подходящие под фильтры уровня.
// Фильтры по ключевым словам и странам идут через join-таблицы, поэтому
// нужен DISTINCT: вопрос с двумя подходящими ключевыми словами не должен
// попадать в выборку дважды.
func (r *QuestionRepo) FindCandidates(filter repository.CandidateFilter) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.candidateQuery(filter).
		Preload("Keywords").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// CountCandidates возвращает количество вопросов, подходящих под фильтры уровня
func (r *QuestionRepo) CountCandidates(filter repository.CandidateFilter) (int64, error) {
	var count int64
	err := r.candidateQuery(filter).Count(&count).Error
	return count, err
}

func (r *QuestionRepo) candidateQuery(filter repository.CandidateFilter) *gorm.DB {
	query := r.db.Model(&entity.Question{}).
		Where("questions.is_published = ?", true).
		Where("questions.difficulty_level = ?", filter.DifficultyLevel)

	if len(filter.BroadThemeIDs) > 0 {
		query = query.Where("questions.broad_theme_id IN ?", filter.BroadThemeIDs)
	}
	if len(filter.SpecificThemeIDs) > 0 {
		query = query.Where("questions.specific_theme_id IN ?", filter.SpecificThemeIDs)
	}
	if len(filter.CountryIDs) > 0 {
		query = query.
			Joins("JOIN question_countries qc ON qc.question_id = questions.id").
			Where("qc.country_id IN ?", filter.CountryIDs)
	}
	if len(filter.KeywordIDs) > 0 {
		query = query.
			Joins("JOIN question_keywords qk ON qk.question_id = questions.id").
			Where("qk.keyword_id IN ?", filter.KeywordIDs)
	}
	return query.Distinct("questions.*")
}

// GetRandomPublished возвращает случайные опубликованные вопросы
// для режима без набора правил
func (r *QuestionRepo) GetRandomPublished(limit int, excludeIDs []uint) ([]entity.Question, error) {
	var questions []entity.Question
	query := r.db.Preload("Keywords").Where("is_published = ?", true)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	err := query.Order("RANDOM()").Limit(limit).Find(&questions).Error
	return questions, err
}

// IncrementAnswerStats атомарно обновляет агрегированную статистику вопроса
func (r *QuestionRepo) IncrementAnswerStats(id uint, correct bool) error {
	updates := map[string]interface{}{
		"times_answered": gorm.Expr("times_answered + 1"),
	}
	if correct {
		updates["success_count"] = gorm.Expr("success_count + 1")
	}
	return r.db.Model(&entity.Question{}).Where("id = ?", id).Updates(updates).Error
}
