package dto

import (
	"github.com/yourusername/geoquiz-api/internal/domain/entity"
)

// SubmitAnswerRequest представляет запрос на приём ответа.
// SelectedAnswer == nil означает таймаут (вопрос не отвечен).
type SubmitAnswerRequest struct {
	QuestionID     uint   `json:"question_id" binding:"required"`
	SelectedAnswer *int   `json:"selected_answer"`
	RuleSet        string `json:"rule_set"`
	History        string `json:"history"`
}

// CancelSessionRequest представляет запрос на отмену сессии
type CancelSessionRequest struct {
	RuleSet string `json:"rule_set" binding:"required"`
}

// RuleSetRequest представляет запрос на создание/изменение набора правил
type RuleSetRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=120"`
	Slug        string `json:"slug" binding:"omitempty,max=120"`
	Description string `json:"description" binding:"omitempty,max=500"`
	IsActive    *bool  `json:"is_active"`

	TimerSeconds  int    `json:"timer_seconds"`
	SelectionMode string `json:"selection_mode" binding:"omitempty,oneof=auto manual"`
	OrderMode     string `json:"order_mode" binding:"omitempty,oneof=difficulty_ascending full_shuffle"`

	AllowedDifficulties    []int       `json:"allowed_difficulties"`
	QuestionsPerDifficulty map[int]int `json:"questions_per_difficulty"`

	UseAllBroadThemes        *bool  `json:"use_all_broad_themes"`
	UseAllSpecificThemes     *bool  `json:"use_all_specific_themes"`
	UseAllCountries          *bool  `json:"use_all_countries"`
	UseAllKeywords           *bool  `json:"use_all_keywords"`
	AllowedBroadThemeIDs     []uint `json:"allowed_broad_theme_ids"`
	AllowedSpecificThemeIDs  []uint `json:"allowed_specific_theme_ids"`
	AllowedCountryIDs        []uint `json:"allowed_country_ids"`
	AllowedKeywordIDs        []uint `json:"allowed_keyword_ids"`
	PreventDuplicateKeywords *bool  `json:"prevent_duplicate_keywords"`

	SelectedQuestionIDs []uint `json:"selected_question_ids"`

	ScoringBasePoints   int             `json:"scoring_base_points"`
	DifficultyBonusType string          `json:"difficulty_bonus_type" binding:"omitempty,oneof=none add mult"`
	DifficultyBonusMap  map[int]float64 `json:"difficulty_bonus_map"`
	ComboBonusEnabled   bool            `json:"combo_bonus_enabled"`
	ComboStep           int             `json:"combo_step"`
	ComboBonusPoints    int             `json:"combo_bonus_points"`
	PerfectQuizBonus    int             `json:"perfect_quiz_bonus"`
	MinCorrectToWin     int             `json:"min_correct_to_win"`

	IntroMessage   string `json:"intro_message"`
	SuccessMessage string `json:"success_message"`
	FailureMessage string `json:"failure_message"`
}

// ToEntity переносит запрос в сущность. Неуказанные указательные поля
// получают значения по умолчанию для нового набора правил.
func (r *RuleSetRequest) ToEntity() *entity.QuizRuleSet {
	ruleSet := &entity.QuizRuleSet{
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		IsActive:    boolOrDefault(r.IsActive, true),

		TimerSeconds:  intOrDefault(r.TimerSeconds, 30),
		SelectionMode: stringOrDefault(r.SelectionMode, entity.SelectionModeAuto),
		OrderMode:     stringOrDefault(r.OrderMode, entity.OrderModeDifficultyAscending),

		UseAllBroadThemes:        boolOrDefault(r.UseAllBroadThemes, true),
		UseAllSpecificThemes:     boolOrDefault(r.UseAllSpecificThemes, true),
		UseAllCountries:          boolOrDefault(r.UseAllCountries, true),
		UseAllKeywords:           boolOrDefault(r.UseAllKeywords, true),
		PreventDuplicateKeywords: boolOrDefault(r.PreventDuplicateKeywords, true),

		ScoringBasePoints:   intOrDefault(r.ScoringBasePoints, 1),
		DifficultyBonusType: entity.BonusType(stringOrDefault(r.DifficultyBonusType, string(entity.BonusNone))),
		ComboBonusEnabled:   r.ComboBonusEnabled,
		ComboStep:           r.ComboStep,
		ComboBonusPoints:    r.ComboBonusPoints,
		PerfectQuizBonus:    r.PerfectQuizBonus,
		MinCorrectToWin:     r.MinCorrectToWin,

		IntroMessage:   r.IntroMessage,
		SuccessMessage: r.SuccessMessage,
		FailureMessage: r.FailureMessage,
	}
	ruleSet.SetAllowedDifficulties(r.AllowedDifficulties)
	ruleSet.SetQuestionsPerDifficulty(r.QuestionsPerDifficulty)
	ruleSet.SetDifficultyBonusMap(r.DifficultyBonusMap)
	return ruleSet
}

// RuleSetResponse представляет набор правил в ответе API
type RuleSetResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`

	TimerSeconds  int    `json:"timer_seconds"`
	SelectionMode string `json:"selection_mode"`
	OrderMode     string `json:"order_mode"`

	AllowedDifficulties    []int       `json:"allowed_difficulties"`
	QuestionsPerDifficulty map[int]int `json:"questions_per_difficulty"`

	UseAllBroadThemes        bool   `json:"use_all_broad_themes"`
	UseAllSpecificThemes     bool   `json:"use_all_specific_themes"`
	UseAllCountries          bool   `json:"use_all_countries"`
	UseAllKeywords           bool   `json:"use_all_keywords"`
	AllowedBroadThemeIDs     []uint `json:"allowed_broad_theme_ids"`
	AllowedSpecificThemeIDs  []uint `json:"allowed_specific_theme_ids"`
	AllowedCountryIDs        []uint `json:"allowed_country_ids"`
	AllowedKeywordIDs        []uint `json:"allowed_keyword_ids"`
	PreventDuplicateKeywords bool   `json:"prevent_duplicate_keywords"`

	SelectedQuestionIDs []uint `json:"selected_question_ids"`

	ScoringBasePoints   int             `json:"scoring_base_points"`
	DifficultyBonusType string          `json:"difficulty_bonus_type"`
	DifficultyBonusMap  map[int]float64 `json:"difficulty_bonus_map"`
	ComboBonusEnabled   bool            `json:"combo_bonus_enabled"`
	ComboStep           int             `json:"combo_step"`
	ComboBonusPoints    int             `json:"combo_bonus_points"`
	PerfectQuizBonus    int             `json:"perfect_quiz_bonus"`
	MinCorrectToWin     int             `json:"min_correct_to_win"`

	IntroMessage   string `json:"intro_message"`
	SuccessMessage string `json:"success_message"`
	FailureMessage string `json:"failure_message"`
}

// NewRuleSetResponse преобразует сущность в DTO ответа
func NewRuleSetResponse(rs *entity.QuizRuleSet) *RuleSetResponse {
	return &RuleSetResponse{
		ID:          rs.ID,
		Name:        rs.Name,
		Slug:        rs.Slug,
		Description: rs.Description,
		IsActive:    rs.IsActive,

		TimerSeconds:  rs.TimerSeconds,
		SelectionMode: rs.SelectionMode,
		OrderMode:     rs.NormalizedOrderMode(),

		AllowedDifficulties:    rs.AllowedDifficulties(),
		QuestionsPerDifficulty: rs.QuestionsPerDifficulty(),

		UseAllBroadThemes:        rs.UseAllBroadThemes,
		UseAllSpecificThemes:     rs.UseAllSpecificThemes,
		UseAllCountries:          rs.UseAllCountries,
		UseAllKeywords:           rs.UseAllKeywords,
		AllowedBroadThemeIDs:     broadThemeIDs(rs.AllowedBroadThemes),
		AllowedSpecificThemeIDs:  specificThemeIDs(rs.AllowedSpecificThemes),
		AllowedCountryIDs:        countryIDs(rs.AllowedCountries),
		AllowedKeywordIDs:        keywordIDs(rs.AllowedKeywords),
		PreventDuplicateKeywords: rs.PreventDuplicateKeywords,

		SelectedQuestionIDs: selectedQuestionIDs(rs.SelectedQuestions),

		ScoringBasePoints:   rs.ScoringBasePoints,
		DifficultyBonusType: string(rs.DifficultyBonusType),
		DifficultyBonusMap:  rs.DifficultyBonusMap(),
		ComboBonusEnabled:   rs.ComboBonusEnabled,
		ComboStep:           rs.ComboStep,
		ComboBonusPoints:    rs.ComboBonusPoints,
		PerfectQuizBonus:    rs.PerfectQuizBonus,
		MinCorrectToWin:     rs.MinCorrectToWin,

		IntroMessage:   rs.IntroMessage,
		SuccessMessage: rs.SuccessMessage,
		FailureMessage: rs.FailureMessage,
	}
}

// NewListRuleSetResponse преобразует список наборов правил
func NewListRuleSetResponse(ruleSets []entity.QuizRuleSet) []*RuleSetResponse {
	responses := make([]*RuleSetResponse, 0, len(ruleSets))
	for i := range ruleSets {
		responses = append(responses, NewRuleSetResponse(&ruleSets[i]))
	}
	return responses
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func intOrDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func stringOrDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func broadThemeIDs(themes []entity.BroadTheme) []uint {
	ids := make([]uint, 0, len(themes))
	for _, t := range themes {
		ids = append(ids, t.ID)
	}
	return ids
}

func specificThemeIDs(themes []entity.SpecificTheme) []uint {
	ids := make([]uint, 0, len(themes))
	for _, t := range themes {
		ids = append(ids, t.ID)
	}
	return ids
}

func countryIDs(countries []entity.Country) []uint {
	ids := make([]uint, 0, len(countries))
	for _, c := range countries {
		ids = append(ids, c.ID)
	}
	return ids
}

func keywordIDs(keywords []entity.Keyword) []uint {
	ids := make([]uint, 0, len(keywords))
	for _, kw := range keywords {
		ids = append(ids, kw.ID)
	}
	return ids
}

func selectedQuestionIDs(questions []entity.Question) []uint {
	ids := make([]uint, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	return ids
}
