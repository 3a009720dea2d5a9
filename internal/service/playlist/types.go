// Package playlist содержит ядро квиза: подбор вопросов-кандидатов,
// генерацию плейлиста, состояние игровой сессии и подсчёт очков.
package playlist

import (
	"time"
)

// Типы событий в логе начисления очков
const (
	EventTypeQuestion     = "question"      // обычный ответ на вопрос
	EventTypePerfectBonus = "perfect_bonus" // бонус за идеальное прохождение
)

// Config содержит настройки ядра квиза
type Config struct {
	// SessionTTL — время жизни состояния сессии в Redis.
	// Брошенные сессии не чистятся явно, их убирает TTL.
	SessionTTL time.Duration

	// ShuffleTTL — время жизни сохранённого порядка ответов
	ShuffleTTL time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		SessionTTL: 24 * time.Hour,
		ShuffleTTL: 24 * time.Hour,
	}
}

// PlayerHistory — история игрока, используемая при генерации плейлиста:
// когда-либо отвеченные вопросы и ключевые слова этих вопросов.
// Читается только при создании новой сессии.
type PlayerHistory struct {
	SeenQuestionIDs    map[uint]bool
	AnsweredKeywordIDs map[uint]bool
}

// ScoreEvent — одна запись в хронологическом логе начисления очков.
// Для EventTypePerfectBonus заполнены только Type и TotalAwarded.
type ScoreEvent struct {
	Type                 string  `json:"type"`
	QuestionID           uint    `json:"question_id,omitempty"`
	Difficulty           int     `json:"difficulty,omitempty"`
	WasCorrect           bool    `json:"was_correct"`
	BasePoints           int     `json:"base_points"`
	DifficultyBonus      int     `json:"difficulty_bonus"`
	DifficultyMultiplier float64 `json:"difficulty_multiplier,omitempty"`
	QuestionPoints       int     `json:"question_points"`
	ComboBonus           int     `json:"combo_bonus"`
	ComboTriggered       bool    `json:"combo_triggered"`
	ComboStreak          int     `json:"combo_streak"`
	TotalAwarded         int     `json:"total_awarded"`
	QuestionIndex        int     `json:"question_index,omitempty"` // позиция в плейлисте, 1-based
}

// NewPerfectBonusEvent создаёт запись о бонусе за идеальное прохождение
func NewPerfectBonusEvent(bonus int) ScoreEvent {
	return ScoreEvent{
		Type:         EventTypePerfectBonus,
		WasCorrect:   true,
		TotalAwarded: bonus,
	}
}
