package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/geoquiz-api/internal/domain/entity"
)

// StatsRepo реализует repository.StatsRepository
type StatsRepo struct {
	db *gorm.DB
}

// NewStatsRepo создает новый репозиторий статистики ответов
func NewStatsRepo(db *gorm.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// RecordAnswer обновляет статистику игрок×вопрос и глобальный счётчик
// выбранного варианта. Конкурентные вставки одной пары разрешаются
// через обработку нарушения уникальности: проигравший insert повторяет
// update.
func (r *StatsRepo) RecordAnswer(playerID string, questionID uint, selectedAnswer int, isCorrect bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := r.upsertPlayerStat(tx, playerID, questionID, selectedAnswer, isCorrect); err != nil {
			return err
		}
		return r.upsertAnswerStat(tx, questionID, selectedAnswer)
	})
}

func (r *StatsRepo) upsertPlayerStat(tx *gorm.DB, playerID string, questionID uint, selectedAnswer int, isCorrect bool) error {
	now := time.Now()
	updates := map[string]interface{}{
		"times_answered":       gorm.Expr("times_answered + 1"),
		"last_selected_answer": selectedAnswer,
		"last_is_correct":      isCorrect,
		"last_answered_at":     now,
	}
	if isCorrect {
		updates["success_count"] = gorm.Expr("success_count + 1")
	}

	result := tx.Model(&entity.UserQuestionStat{}).
		Where("player_id = ? AND question_id = ?", playerID, questionID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	stat := entity.UserQuestionStat{
		PlayerID:           playerID,
		QuestionID:         questionID,
		TimesAnswered:      1,
		LastSelectedAnswer: selectedAnswer,
		LastIsCorrect:      isCorrect,
		LastAnsweredAt:     &now,
	}
	if isCorrect {
		stat.SuccessCount = 1
	}
	err := tx.Create(&stat).Error
	if isUniqueViolation(err) {
		// Конкурентная вставка успела раньше, повторяем update
		return tx.Model(&entity.UserQuestionStat{}).
			Where("player_id = ? AND question_id = ?", playerID, questionID).
			Updates(updates).Error
	}
	return err
}

func (r *StatsRepo) upsertAnswerStat(tx *gorm.DB, questionID uint, selectedAnswer int) error {
	result := tx.Model(&entity.QuestionAnswerStat{}).
		Where("question_id = ? AND answer_index = ?", questionID, selectedAnswer).
		Update("selected_count", gorm.Expr("selected_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	err := tx.Create(&entity.QuestionAnswerStat{
		QuestionID:    questionID,
		AnswerIndex:   selectedAnswer,
		SelectedCount: 1,
	}).Error
	if isUniqueViolation(err) {
		return tx.Model(&entity.QuestionAnswerStat{}).
			Where("question_id = ? AND answer_index = ?", questionID, selectedAnswer).
			Update("selected_count", gorm.Expr("selected_count + 1")).Error
	}
	return err
}

// AnsweredQuestionIDs возвращает ID всех когда-либо отвеченных игроком вопросов
func (r *StatsRepo) AnsweredQuestionIDs(playerID string) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entity.UserQuestionStat{}).
		Where("player_id = ?", playerID).
		Pluck("question_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// AnsweredKeywordIDs возвращает объединение ключевых слов всех
// когда-либо отвеченных игроком вопросов
func (r *StatsRepo) AnsweredKeywordIDs(playerID string) ([]uint, error) {
	var ids []uint
	err := r.db.
		Table("question_keywords qk").
		Joins("JOIN user_question_stats s ON s.question_id = qk.question_id").
		Where("s.player_id = ?", playerID).
		Distinct().
		Pluck("qk.keyword_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetPlayerStats возвращает статистику игрока по всем вопросам
func (r *StatsRepo) GetPlayerStats(playerID string) ([]entity.UserQuestionStat, error) {
	var stats []entity.UserQuestionStat
	err := r.db.Where("player_id = ?", playerID).Order("question_id").Find(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// GetAnswerDistribution возвращает распределение выборов по вариантам вопроса
func (r *StatsRepo) GetAnswerDistribution(questionID uint) ([]entity.QuestionAnswerStat, error) {
	var stats []entity.QuestionAnswerStat
	err := r.db.Where("question_id = ?", questionID).Order("answer_index").Find(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
