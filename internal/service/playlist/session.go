package playlist

import (
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/geoquiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/geoquiz-api/internal/pkg/errors"
)

// SessionState — горячее состояние одного прохождения квиза.
// Хранится в Redis под ключом (игрок, slug набора правил); сервер —
// единственный источник истины, клиентский history-токен служит лишь
// для повторной отправки при возврате назад.
type SessionState struct {
	Playlist       []uint       `json:"playlist"`
	Index          int          `json:"index"`
	Score          int          `json:"score"`
	CorrectCount   int          `json:"correct_count"`
	ComboStreak    int          `json:"combo_streak"`
	PerfectAwarded bool         `json:"perfect_awarded"`
	Breakdown      []ScoreEvent `json:"breakdown"`
	DBSessionID    uint         `json:"db_session_id"` // ID записи user_quiz_sessions
	StartedAt      time.Time    `json:"started_at"`
}

// IsCompleted сообщает, отвечены ли все вопросы плейлиста
func (s *SessionState) IsCompleted() bool {
	return s.Index >= len(s.Playlist)
}

// CurrentQuestionID возвращает ID вопроса на текущей позиции
func (s *SessionState) CurrentQuestionID() (uint, bool) {
	if s.IsCompleted() {
		return 0, false
	}
	return s.Playlist[s.Index], true
}

// AnsweredQuestionIDs возвращает ID уже отвеченных вопросов по порядку
func (s *SessionState) AnsweredQuestionIDs() []uint {
	if s.Index <= 0 {
		return nil
	}
	return s.Playlist[:s.Index]
}

// SessionStore управляет состоянием сессий в кеше
type SessionStore struct {
	cache repository.CacheRepository
	ttl   time.Duration
}

// NewSessionStore создает новое хранилище сессий
func NewSessionStore(cache repository.CacheRepository, ttl time.Duration) *SessionStore {
	return &SessionStore{cache: cache, ttl: ttl}
}

// sessionKey строит ключ сессии. Сессии изолированы по паре
// (игрок, slug): два набора правил у одного игрока независимы.
func sessionKey(playerID, ruleSetSlug string) string {
	return fmt.Sprintf("quiz:session:%s:%s", playerID, ruleSetSlug)
}

// Load читает состояние сессии; (nil, nil) если сессии нет
func (s *SessionStore) Load(playerID, ruleSetSlug string) (*SessionState, error) {
	var state SessionState
	err := s.cache.GetJSON(sessionKey(playerID, ruleSetSlug), &state)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

// Save записывает состояние сессии, обновляя TTL
func (s *SessionStore) Save(playerID, ruleSetSlug string, state *SessionState) error {
	return s.cache.SetJSON(sessionKey(playerID, ruleSetSlug), state, s.ttl)
}

// Delete удаляет состояние сессии
func (s *SessionStore) Delete(playerID, ruleSetSlug string) error {
	return s.cache.Delete(sessionKey(playerID, ruleSetSlug))
}
