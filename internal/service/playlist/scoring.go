package playlist

import (
	"math"

	"github.com/yourusername/geoquiz-api/internal/domain/entity"
)

// CalculateScore вычисляет очки за один ответ и возвращает запись для
// лога начислений вместе с новым значением комбо-серии.
//
// Неправильный ответ (в том числе таймаут) даёт 0 очков и сбрасывает
// серию; запись в лог при этом всё равно создаётся. Правильный ответ
// даёт базовые очки плюс бонус за сложность, а на каждом кратном
// combo_step шаге серии — дополнительный комбо-бонус. Функция никогда
// не возвращает ошибку: любая комбинация входов даёт определённый
// (возможно нулевой) результат.
func CalculateScore(
	ruleSet *entity.QuizRuleSet,
	question *entity.Question,
	isCorrect bool,
	priorStreak int,
	position int,
) (awarded int, event ScoreEvent, newStreak int) {
	event = ScoreEvent{
		Type:          EventTypeQuestion,
		QuestionID:    question.ID,
		Difficulty:    question.DifficultyLevel,
		WasCorrect:    isCorrect,
		QuestionIndex: position,
	}

	if !isCorrect {
		return 0, event, 0
	}

	points := ruleSet.ScoringBasePoints
	event.BasePoints = ruleSet.ScoringBasePoints

	bonusMap := ruleSet.DifficultyBonusMap()
	switch ruleSet.DifficultyBonusType {
	case entity.BonusAdd:
		bonus := int(bonusMap[question.DifficultyLevel])
		points += bonus
		event.DifficultyBonus = bonus
	case entity.BonusMult:
		multiplier, ok := bonusMap[question.DifficultyLevel]
		if !ok {
			multiplier = 1.0
		}
		boosted := int(math.Round(float64(ruleSet.ScoringBasePoints) * multiplier))
		event.DifficultyMultiplier = multiplier
		event.DifficultyBonus = boosted - ruleSet.ScoringBasePoints
		points = boosted
	}
	event.QuestionPoints = points

	newStreak = priorStreak + 1
	event.ComboStreak = newStreak

	if ruleSet.ComboActive() && newStreak%ruleSet.ComboStep == 0 {
		event.ComboBonus = ruleSet.ComboBonusPoints
		event.ComboTriggered = true
		points += ruleSet.ComboBonusPoints
	}

	event.TotalAwarded = points
	return points, event, newStreak
}
