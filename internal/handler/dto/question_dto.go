package dto

import (
	"github.com/yourusername/geoquiz-api/internal/domain/entity"
)

// QuestionRequest представляет запрос на создание/изменение вопроса
type QuestionRequest struct {
	Text            string   `json:"text" binding:"required,max=500"`
	Answers         []string `json:"answers" binding:"required,min=2,max=6,dive,required"`
	CorrectAnswer   int      `json:"correct_answer"`
	DifficultyLevel int      `json:"difficulty_level"`
	BroadThemeID    *uint    `json:"broad_theme_id"`
	SpecificThemeID *uint    `json:"specific_theme_id"`
	IsPublished     bool     `json:"is_published"`
	KeywordIDs      []uint   `json:"keyword_ids"`
	CountryIDs      []uint   `json:"country_ids"`
}

// BatchQuestionRequest представляет запрос на пакетное создание вопросов
type BatchQuestionRequest struct {
	Questions []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// ToEntity переносит запрос в сущность
func (r *QuestionRequest) ToEntity() *entity.Question {
	question := &entity.Question{
		Text:            r.Text,
		Answers:         entity.StringArray(r.Answers),
		CorrectAnswer:   r.CorrectAnswer,
		DifficultyLevel: intOrDefault(r.DifficultyLevel, 1),
		BroadThemeID:    r.BroadThemeID,
		SpecificThemeID: r.SpecificThemeID,
		IsPublished:     r.IsPublished,
	}
	for _, id := range r.KeywordIDs {
		question.Keywords = append(question.Keywords, entity.Keyword{ID: id})
	}
	for _, id := range r.CountryIDs {
		question.Countries = append(question.Countries, entity.Country{ID: id})
	}
	return question
}

// QuestionResponse представляет вопрос в административном API.
// В отличие от игрового представления, правильный индекс не скрывается.
type QuestionResponse struct {
	ID              uint     `json:"id"`
	Text            string   `json:"text"`
	Answers         []string `json:"answers"`
	CorrectAnswer   int      `json:"correct_answer"`
	DifficultyLevel int      `json:"difficulty_level"`
	BroadThemeID    *uint    `json:"broad_theme_id,omitempty"`
	SpecificThemeID *uint    `json:"specific_theme_id,omitempty"`
	IsPublished     bool     `json:"is_published"`
	KeywordIDs      []uint   `json:"keyword_ids"`
	TimesAnswered   int      `json:"times_answered"`
	SuccessCount    int      `json:"success_count"`
	SuccessRate     float64  `json:"success_rate"`
}

// NewQuestionResponse преобразует сущность в DTO административного ответа
func NewQuestionResponse(q *entity.Question) *QuestionResponse {
	return &QuestionResponse{
		ID:              q.ID,
		Text:            q.Text,
		Answers:         q.Answers,
		CorrectAnswer:   q.CorrectAnswer,
		DifficultyLevel: q.DifficultyLevel,
		BroadThemeID:    q.BroadThemeID,
		SpecificThemeID: q.SpecificThemeID,
		IsPublished:     q.IsPublished,
		KeywordIDs:      q.KeywordIDs(),
		TimesAnswered:   q.TimesAnswered,
		SuccessCount:    q.SuccessCount,
		SuccessRate:     q.SuccessRate(),
	}
}
