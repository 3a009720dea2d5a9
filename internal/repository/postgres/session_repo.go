package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/geoquiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/geoquiz-api/internal/pkg/errors"
)

// SessionRepo реализует repository.SessionRepository
type SessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo создает новый репозиторий игровых сессий
func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create создает новую запись сессии
func (r *SessionRepo) Create(session *entity.UserQuizSession) error {
	return r.db.Create(session).Error
}

// GetByID возвращает запись сессии по ID
func (r *SessionRepo) GetByID(id uint) (*entity.UserQuizSession, error) {
	var session entity.UserQuizSession
	err := r.db.First(&session, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Update обновляет запись сессии
func (r *SessionRepo) Update(session *entity.UserQuizSession) error {
	return r.db.Save(session).Error
}

// ListByRuleSet возвращает сессии набора правил (новые первыми)
func (r *SessionRepo) ListByRuleSet(ruleSetID uint, limit int) ([]entity.UserQuizSession, error) {
	var sessions []entity.UserQuizSession
	query := r.db.Where("rule_set_id = ?", ruleSetID).Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListByPlayer возвращает сессии игрока (новые первыми)
func (r *SessionRepo) ListByPlayer(playerID string, limit int) ([]entity.UserQuizSession, error) {
	var sessions []entity.UserQuizSession
	query := r.db.Where("player_id = ?", playerID).Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListInProgressByPlayer возвращает незавершённые сессии игрока
// с загруженным набором правил
func (r *SessionRepo) ListInProgressByPlayer(playerID string) ([]entity.UserQuizSession, error) {
	var sessions []entity.UserQuizSession
	err := r.db.Preload("RuleSet").
		Where("player_id = ? AND status = ?", playerID, entity.SessionStatusInProgress).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// CountByRuleSet возвращает количество сессий по статусам
func (r *SessionRepo) CountByRuleSet(ruleSetID uint) (total int64, completed int64, wins int64, err error) {
	base := r.db.Model(&entity.UserQuizSession{}).Where("rule_set_id = ?", ruleSetID)

	if err = base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, 0, err
	}
	if err = base.Session(&gorm.Session{}).
		Where("status = ?", entity.SessionStatusCompleted).
		Count(&completed).Error; err != nil {
		return 0, 0, 0, err
	}
	if err = base.Session(&gorm.Session{}).
		Where("status = ? AND is_win = ?", entity.SessionStatusCompleted, true).
		Count(&wins).Error; err != nil {
		return 0, 0, 0, err
	}
	return total, completed, wins, nil
}
