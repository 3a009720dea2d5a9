package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	// Обработка пустого массива байтов
	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if o == nil || len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Question представляет вопрос викторины о геокешинге
type Question struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	Text            string      `gorm:"size:500;not null" json:"text"`
	Answers         StringArray `gorm:"type:jsonb;not null" json:"answers"`
	CorrectAnswer   int         `gorm:"not null" json:"-"` // Индекс правильного ответа (0-based), скрыт от клиента
	DifficultyLevel int         `gorm:"not null;default:1;index" json:"difficulty_level"`
	BroadThemeID    *uint       `gorm:"index" json:"broad_theme_id,omitempty"`
	SpecificThemeID *uint       `gorm:"index" json:"specific_theme_id,omitempty"`
	IsPublished     bool        `gorm:"not null;default:false;index" json:"is_published"`

	// Агрегированная статистика (инкрементируется при каждом ответе, ядром не читается)
	TimesAnswered int `gorm:"not null;default:0" json:"times_answered"`
	SuccessCount  int `gorm:"not null;default:0" json:"success_count"`

	Keywords  []Keyword `gorm:"many2many:question_keywords" json:"keywords,omitempty"`
	Countries []Country `gorm:"many2many:question_countries" json:"countries,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsCorrect проверяет, является ли выбранный вариант правильным
func (q *Question) IsCorrect(selectedAnswer int) bool {
	return selectedAnswer == q.CorrectAnswer
}

// IsValidAnswer проверяет, является ли выбранный вариант допустимым
func (q *Question) IsValidAnswer(selectedAnswer int) bool {
	return selectedAnswer >= 0 && selectedAnswer < len(q.Answers)
}

// AnswerCount возвращает количество вариантов ответа
func (q *Question) AnswerCount() int {
	return len(q.Answers)
}

// KeywordIDs возвращает множество ID ключевых слов вопроса
func (q *Question) KeywordIDs() []uint {
	ids := make([]uint, 0, len(q.Keywords))
	for _, kw := range q.Keywords {
		ids = append(ids, kw.ID)
	}
	return ids
}

// HasKeywords сообщает, привязаны ли к вопросу ключевые слова
func (q *Question) HasKeywords() bool {
	return len(q.Keywords) > 0
}

// SuccessRate возвращает долю правильных ответов (0.0 если статистики нет)
func (q *Question) SuccessRate() float64 {
	if q.TimesAnswered == 0 {
		return 0.0
	}
	return float64(q.SuccessCount) / float64(q.TimesAnswered)
}
