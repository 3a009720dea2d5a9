package entity

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Режимы выбора вопросов
const (
	SelectionModeAuto   = "auto"   // автоматический подбор по квотам/фильтрам
	SelectionModeManual = "manual" // явный список вопросов
)

// Режимы порядка вопросов (только для auto)
const (
	OrderModeDifficultyAscending = "difficulty_ascending" // сложность растёт, перемешивание внутри уровня
	OrderModeFullShuffle         = "full_shuffle"         // полное перемешивание всех вопросов
)

// BonusType задаёт закрытый набор режимов бонуса за сложность
type BonusType string

const (
	BonusNone BonusType = "none" // без бонуса
	BonusAdd  BonusType = "add"  // аддитивный бонус из карты сложностей
	BonusMult BonusType = "mult" // множитель из карты сложностей
)

// QuizRuleSet представляет набор правил квиза: фильтры подбора вопросов,
// квоты по сложности и формулы подсчёта очков. Набор правил создаётся
// администраторами и неизменяем в течение игровой сессии.
type QuizRuleSet struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:120;not null" json:"name"`
	Slug        string `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"size:500;not null;default:''" json:"description"`
	IsActive    bool   `gorm:"not null;default:true;index" json:"is_active"`

	// Параметры игры
	TimerSeconds int `gorm:"not null;default:30" json:"timer_seconds"`

	// Режим выбора вопросов и порядок (auto|manual, см. константы выше)
	SelectionMode string `gorm:"size:20;not null;default:'auto'" json:"selection_mode"`
	OrderMode     string `gorm:"size:30;not null;default:'difficulty_ascending'" json:"order_mode"`

	// Разрешённые сложности (CSV "1,2,3") и квоты по сложности (JSON {"1":5,"2":3})
	AllowedDifficultiesCSV     string `gorm:"size:50;not null;default:''" json:"-"`
	QuestionsPerDifficultyJSON string `gorm:"type:text;not null;default:''" json:"-"`

	// Фильтры тем/стран/ключевых слов: "все" либо явный allow-list
	UseAllBroadThemes     bool            `gorm:"not null;default:true" json:"use_all_broad_themes"`
	UseAllSpecificThemes  bool            `gorm:"not null;default:true" json:"use_all_specific_themes"`
	UseAllCountries       bool            `gorm:"not null;default:true" json:"use_all_countries"`
	UseAllKeywords        bool            `gorm:"not null;default:true" json:"use_all_keywords"`
	AllowedBroadThemes    []BroadTheme    `gorm:"many2many:rule_set_broad_themes" json:"allowed_broad_themes,omitempty"`
	AllowedSpecificThemes []SpecificTheme `gorm:"many2many:rule_set_specific_themes" json:"allowed_specific_themes,omitempty"`
	AllowedCountries      []Country       `gorm:"many2many:rule_set_countries" json:"allowed_countries,omitempty"`
	AllowedKeywords       []Keyword       `gorm:"many2many:rule_set_keywords" json:"allowed_keywords,omitempty"`

	// Запрет дублей ключевых слов внутри одного квиза
	PreventDuplicateKeywords bool `gorm:"not null;default:true" json:"prevent_duplicate_keywords"`

	// Явно выбранные вопросы (только для manual)
	SelectedQuestions []Question `gorm:"many2many:rule_set_questions" json:"selected_questions,omitempty"`

	// Подсчёт очков
	ScoringBasePoints      int       `gorm:"not null;default:1" json:"scoring_base_points"`
	DifficultyBonusType    BonusType `gorm:"size:20;not null;default:'none'" json:"difficulty_bonus_type"`
	DifficultyBonusMapJSON string    `gorm:"type:text;not null;default:''" json:"-"`
	ComboBonusEnabled      bool      `gorm:"not null;default:false" json:"combo_bonus_enabled"`
	ComboStep              int       `gorm:"not null;default:0" json:"combo_step"`
	ComboBonusPoints       int       `gorm:"not null;default:0" json:"combo_bonus_points"`
	PerfectQuizBonus       int       `gorm:"not null;default:0" json:"perfect_quiz_bonus"`

	// Минимум правильных ответов для победы (0 = всегда победа)
	MinCorrectToWin int `gorm:"not null;default:0" json:"min_correct_to_win"`

	// Сообщения для экранов квиза
	IntroMessage   string `gorm:"type:text;not null;default:''" json:"intro_message"`
	SuccessMessage string `gorm:"type:text;not null;default:''" json:"success_message"`
	FailureMessage string `gorm:"type:text;not null;default:''" json:"failure_message"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (QuizRuleSet) TableName() string {
	return "quiz_rule_sets"
}

// AllowedDifficulties разбирает CSV разрешённых сложностей.
// Пустая строка и мусорные токены молча игнорируются (конфигурационные
// ошибки не должны доходить до игрока).
func (rs *QuizRuleSet) AllowedDifficulties() []int {
	if strings.TrimSpace(rs.AllowedDifficultiesCSV) == "" {
		return nil
	}
	var result []int
	seen := make(map[int]bool)
	for _, token := range strings.Split(rs.AllowedDifficultiesCSV, ",") {
		token = strings.TrimSpace(token)
		d, err := strconv.Atoi(token)
		if err != nil || d <= 0 || seen[d] {
			continue
		}
		seen[d] = true
		result = append(result, d)
	}
	sort.Ints(result)
	return result
}

// SetAllowedDifficulties сериализует список сложностей в CSV (сортировка + дедупликация)
func (rs *QuizRuleSet) SetAllowedDifficulties(difficulties []int) {
	if len(difficulties) == 0 {
		rs.AllowedDifficultiesCSV = ""
		return
	}
	uniq := make(map[int]bool)
	var cleaned []int
	for _, d := range difficulties {
		if d > 0 && !uniq[d] {
			uniq[d] = true
			cleaned = append(cleaned, d)
		}
	}
	sort.Ints(cleaned)
	parts := make([]string, len(cleaned))
	for i, d := range cleaned {
		parts[i] = strconv.Itoa(d)
	}
	rs.AllowedDifficultiesCSV = strings.Join(parts, ",")
}

// QuestionsPerDifficulty разбирает JSON-карту квот {"1":5,"2":3}.
// Некорректный JSON трактуется как пустая карта (квоты по умолчанию 0).
func (rs *QuizRuleSet) QuestionsPerDifficulty() map[int]int {
	return parseIntMap(rs.QuestionsPerDifficultyJSON)
}

// SetQuestionsPerDifficulty сериализует карту квот в JSON
func (rs *QuizRuleSet) SetQuestionsPerDifficulty(quotas map[int]int) {
	rs.QuestionsPerDifficultyJSON = encodeIntMap(quotas)
}

// DifficultyBonusMap разбирает JSON-карту бонусов за сложность.
// Для BonusAdd значения — целые очки, для BonusMult — множители.
func (rs *QuizRuleSet) DifficultyBonusMap() map[int]float64 {
	result := make(map[int]float64)
	raw := strings.TrimSpace(rs.DifficultyBonusMapJSON)
	if raw == "" {
		return result
	}
	var parsed map[string]float64
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return result
	}
	for key, value := range parsed {
		d, err := strconv.Atoi(key)
		if err != nil || d <= 0 {
			continue
		}
		result[d] = value
	}
	return result
}

// SetDifficultyBonusMap сериализует карту бонусов в JSON
func (rs *QuizRuleSet) SetDifficultyBonusMap(bonuses map[int]float64) {
	if len(bonuses) == 0 {
		rs.DifficultyBonusMapJSON = ""
		return
	}
	out := make(map[string]float64, len(bonuses))
	for d, v := range bonuses {
		out[strconv.Itoa(d)] = v
	}
	data, err := json.Marshal(out)
	if err != nil {
		rs.DifficultyBonusMapJSON = ""
		return
	}
	rs.DifficultyBonusMapJSON = string(data)
}

// NormalizedOrderMode возвращает режим порядка с fallback на difficulty_ascending
func (rs *QuizRuleSet) NormalizedOrderMode() string {
	if rs.OrderMode == OrderModeFullShuffle {
		return OrderModeFullShuffle
	}
	return OrderModeDifficultyAscending
}

// IsManualSelection сообщает, задан ли явный список вопросов
func (rs *QuizRuleSet) IsManualSelection() bool {
	return rs.SelectionMode == SelectionModeManual
}

// ComboActive сообщает, действует ли комбо-бонус (включён и параметры валидны)
func (rs *QuizRuleSet) ComboActive() bool {
	return rs.ComboBonusEnabled && rs.ComboStep > 0 && rs.ComboBonusPoints > 0
}

// ExpectedPlaylistLength возвращает сумму квот по разрешённым сложностям.
// Для manual-режима — количество выбранных вопросов.
func (rs *QuizRuleSet) ExpectedPlaylistLength() int {
	if rs.IsManualSelection() {
		return len(rs.SelectedQuestions)
	}
	quotas := rs.QuestionsPerDifficulty()
	total := 0
	for _, d := range rs.AllowedDifficulties() {
		total += quotas[d]
	}
	return total
}

// parseIntMap разбирает JSON вида {"1":5,"2":3} в map[int]int,
// отбрасывая нечисловые ключи и отрицательные значения
func parseIntMap(raw string) map[int]int {
	result := make(map[int]int)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return result
	}
	var parsed map[string]int
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return result
	}
	for key, value := range parsed {
		d, err := strconv.Atoi(key)
		if err != nil || d <= 0 || value < 0 {
			continue
		}
		result[d] = value
	}
	return result
}

// encodeIntMap сериализует map[int]int в JSON со строковыми ключами
func encodeIntMap(m map[int]int) string {
	if len(m) == 0 {
		return ""
	}
	out := make(map[string]int, len(m))
	for d, v := range m {
		out[strconv.Itoa(d)] = v
	}
	data, err := json.Marshal(out)
	if err != nil {
		return ""
	}
	return string(data)
}
