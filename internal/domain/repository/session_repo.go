package repository

import (
	"github.com/yourusername/geoquiz-api/internal/domain/entity"
)

// SessionRepository определяет методы для работы с постоянными
// записями игровых сессий
type SessionRepository interface {
	Create(session *entity.UserQuizSession) error
	GetByID(id uint) (*entity.UserQuizSession, error)
	Update(session *entity.UserQuizSession) error

	// ListByRuleSet возвращает сессии набора правил (новые первыми)
	ListByRuleSet(ruleSetID uint, limit int) ([]entity.UserQuizSession, error)

	// ListByPlayer возвращает сессии игрока (новые первыми)
	ListByPlayer(playerID string, limit int) ([]entity.UserQuizSession, error)

	// ListInProgressByPlayer возвращает незавершённые сессии игрока
	// (набор правил загружен)
	ListInProgressByPlayer(playerID string) ([]entity.UserQuizSession, error)

	// CountByRuleSet возвращает количество сессий по статусам
	CountByRuleSet(ruleSetID uint) (total int64, completed int64, wins int64, err error)
}
