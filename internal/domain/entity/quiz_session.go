package entity

import "time"

// Статусы игровой сессии
const (
	SessionStatusInProgress = "in_progress" // сессия идёт, игрок отвечает на вопросы
	SessionStatusCompleted  = "completed"   // все вопросы плейлиста отвечены
	SessionStatusAbandoned  = "abandoned"   // игрок явно отменил сессию
)

// UserQuizSession — постоянная запись прохождения квиза игроком.
// Горячее состояние (плейлист, индекс, комбо) живёт в Redis, а эта
// запись хранит итог для истории и выгрузок.
type UserQuizSession struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	PlayerID  string `gorm:"size:64;not null;index" json:"player_id"`
	RuleSetID uint   `gorm:"not null;index" json:"rule_set_id"`
	Status    string `gorm:"size:20;not null;default:'in_progress';index" json:"status"`

	TotalQuestions int  `gorm:"not null;default:0" json:"total_questions"`
	AnsweredCount  int  `gorm:"not null;default:0" json:"answered_count"`
	CorrectCount   int  `gorm:"not null;default:0" json:"correct_count"`
	TotalScore     int  `gorm:"not null;default:0" json:"total_score"`
	PerfectBonus   int  `gorm:"not null;default:0" json:"perfect_bonus"`
	IsWin          bool `gorm:"not null;default:false" json:"is_win"`

	StartedAt  time.Time  `gorm:"not null" json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	RuleSet *QuizRuleSet `gorm:"foreignKey:RuleSetID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (UserQuizSession) TableName() string {
	return "user_quiz_sessions"
}

// IsFinished сообщает, завершена ли сессия (успешно или отменой)
func (s *UserQuizSession) IsFinished() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusAbandoned
}

// IsPerfect сообщает, были ли все ответы правильными
func (s *UserQuizSession) IsPerfect() bool {
	return s.TotalQuestions > 0 && s.CorrectCount == s.TotalQuestions
}
