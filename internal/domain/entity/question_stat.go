package entity

import "time"

// UserQuestionStat — накопленная статистика ответов конкретного игрока
// на конкретный вопрос. Обновляется fire-and-forget после каждого
// ответа; читается только при генерации плейлиста новой сессии
// (множества «виденные вопросы» и «отвеченные ключевые слова»),
// в проверке ответов не участвует.
type UserQuestionStat struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	PlayerID   string `gorm:"size:64;not null;uniqueIndex:idx_player_question" json:"player_id"`
	QuestionID uint   `gorm:"not null;uniqueIndex:idx_player_question" json:"question_id"`

	TimesAnswered      int        `gorm:"not null;default:0" json:"times_answered"`
	SuccessCount       int        `gorm:"not null;default:0" json:"success_count"`
	LastSelectedAnswer int        `gorm:"not null;default:-1" json:"last_selected_answer"`
	LastIsCorrect      bool       `gorm:"not null;default:false" json:"last_is_correct"`
	LastAnsweredAt     *time.Time `json:"last_answered_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (UserQuestionStat) TableName() string {
	return "user_question_stats"
}

// QuestionAnswerStat — глобальный счётчик выборов варианта ответа.
// Показывает администраторам распределение ответов по вариантам.
type QuestionAnswerStat struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	QuestionID    uint `gorm:"not null;uniqueIndex:idx_question_answer" json:"question_id"`
	AnswerIndex   int  `gorm:"not null;uniqueIndex:idx_question_answer" json:"answer_index"`
	SelectedCount int  `gorm:"not null;default:0" json:"selected_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (QuestionAnswerStat) TableName() string {
	return "question_answer_stats"
}
