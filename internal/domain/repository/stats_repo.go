package repository

import (
	"github.com/yourusername/geoquiz-api/internal/domain/entity"
)

// StatsRepository определяет методы для статистики ответов
type StatsRepository interface {
	// RecordAnswer обновляет статистику игрок×вопрос и глобальный
	// счётчик выбранного варианта (upsert)
	RecordAnswer(playerID string, questionID uint, selectedAnswer int, isCorrect bool) error

	// AnsweredQuestionIDs возвращает ID всех когда-либо отвеченных
	// игроком вопросов (для генерации нового плейлиста)
	AnsweredQuestionIDs(playerID string) ([]uint, error)

	// AnsweredKeywordIDs возвращает объединение ключевых слов всех
	// когда-либо отвеченных игроком вопросов
	AnsweredKeywordIDs(playerID string) ([]uint, error)

	GetPlayerStats(playerID string) ([]entity.UserQuestionStat, error)
	GetAnswerDistribution(questionID uint) ([]entity.QuestionAnswerStat, error)
}
