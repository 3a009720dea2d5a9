package playlist

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/yourusername/geoquiz-api/internal/domain/entity"
	"github.com/yourusername/geoquiz-api/internal/domain/repository"
)

// GenerateResult — итог генерации плейлиста
type GenerateResult struct {
	QuestionIDs []uint
	Requested   int  // сумма квот (auto) или размер списка (manual)
	Perfect     bool // все вопросы прошли проверки без ослаблений
}

// Shortfall возвращает недобор вопросов из-за истощения пула
func (r GenerateResult) Shortfall() int {
	return r.Requested - len(r.QuestionIDs)
}

// Generator строит плейлист квиза по набору правил и истории игрока
type Generator struct {
	questionRepo repository.QuestionRepository

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator создает новый генератор плейлистов
func NewGenerator(questionRepo repository.QuestionRepository) *Generator {
	return &Generator{
		questionRepo: questionRepo,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate строит плейлист: в manual-режиме переранжирует явный список
// вопросов, в auto-режиме набирает вопросы по квотам сложностей и
// применяет политику порядка. Нехватка вопросов не является ошибкой —
// плейлист просто получается короче запрошенного.
func (g *Generator) Generate(ruleSet *entity.QuizRuleSet, history PlayerHistory) (GenerateResult, error) {
	if ruleSet.IsManualSelection() {
		return g.generateManual(ruleSet, history)
	}
	return g.generateAuto(ruleSet, history)
}

// generateManual переранжирует явный список вопросов: все опубликованные
// вопросы списка попадают в плейлист, но "чистые" (неотвеченные, без
// дублей ключевых слов) выдвигаются вперёд
func (g *Generator) generateManual(ruleSet *entity.QuizRuleSet, history PlayerHistory) (GenerateResult, error) {
	ids := make([]uint, 0, len(ruleSet.SelectedQuestions))
	for _, q := range ruleSet.SelectedQuestions {
		ids = append(ids, q.ID)
	}

	pool, err := g.questionRepo.GetPublishedByIDs(ids)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("failed to load manual question pool: %w", err)
	}

	chosen, _, diag := SelectWithKeywordPriority(
		pool,
		history.SeenQuestionIDs,
		nil,
		history.AnsweredKeywordIDs,
		ruleSet.PreventDuplicateKeywords,
		len(pool),
	)

	result := GenerateResult{
		QuestionIDs: questionIDs(chosen),
		Requested:   len(ids),
		Perfect:     diag.Perfect,
	}
	if result.Shortfall() > 0 {
		log.Printf("[PlaylistGenerator] Rule set %s: %d of %d manual questions are unpublished",
			ruleSet.Slug, result.Shortfall(), result.Requested)
	}
	return result, nil
}

// generateAuto набирает вопросы по бакетам сложности в порядке
// возрастания. Использованные ключевые слова переносятся между бакетами,
// поэтому запрет дублей действует на весь квиз, а не внутри одного уровня.
func (g *Generator) generateAuto(ruleSet *entity.QuizRuleSet, history PlayerHistory) (GenerateResult, error) {
	quotas := ruleSet.QuestionsPerDifficulty()
	filterBase := g.buildFilterBase(ruleSet)

	var buckets [][]entity.Question
	usedKeywords := map[uint]bool{}
	perfect := true
	requested := 0

	for _, difficulty := range ruleSet.AllowedDifficulties() {
		quota := quotas[difficulty]
		requested += quota
		if quota <= 0 {
			continue
		}

		filter := filterBase
		filter.DifficultyLevel = difficulty
		pool, err := g.questionRepo.FindCandidates(filter)
		if err != nil {
			return GenerateResult{}, fmt.Errorf("failed to load candidates for difficulty %d: %w", difficulty, err)
		}

		chosen, updatedUsed, diag := SelectWithKeywordPriority(
			pool,
			history.SeenQuestionIDs,
			usedKeywords,
			history.AnsweredKeywordIDs,
			ruleSet.PreventDuplicateKeywords,
			quota,
		)
		usedKeywords = updatedUsed
		if !diag.Perfect {
			perfect = false
		}
		if len(chosen) < quota {
			log.Printf("[PlaylistGenerator] Rule set %s: difficulty %d pool exhausted, got %d of %d",
				ruleSet.Slug, difficulty, len(chosen), quota)
		}
		if len(chosen) > 0 {
			buckets = append(buckets, chosen)
		}
	}

	playlist := g.applyOrdering(ruleSet.NormalizedOrderMode(), buckets)
	return GenerateResult{
		QuestionIDs: playlist,
		Requested:   requested,
		Perfect:     perfect,
	}, nil
}

// applyOrdering применяет политику порядка к набранным бакетам
func (g *Generator) applyOrdering(orderMode string, buckets [][]entity.Question) []uint {
	if orderMode == entity.OrderModeFullShuffle {
		var all []entity.Question
		for _, bucket := range buckets {
			all = append(all, bucket...)
		}
		g.shuffle(all)
		return questionIDs(all)
	}

	// difficulty_ascending: перемешивание внутри бакета,
	// порядок бакетов по возрастанию сложности сохраняется
	var playlist []uint
	for _, bucket := range buckets {
		g.shuffle(bucket)
		playlist = append(playlist, questionIDs(bucket)...)
	}
	return playlist
}

func (g *Generator) buildFilterBase(ruleSet *entity.QuizRuleSet) repository.CandidateFilter {
	var filter repository.CandidateFilter
	if !ruleSet.UseAllBroadThemes {
		for _, t := range ruleSet.AllowedBroadThemes {
			filter.BroadThemeIDs = append(filter.BroadThemeIDs, t.ID)
		}
	}
	if !ruleSet.UseAllSpecificThemes {
		for _, t := range ruleSet.AllowedSpecificThemes {
			filter.SpecificThemeIDs = append(filter.SpecificThemeIDs, t.ID)
		}
	}
	if !ruleSet.UseAllCountries {
		for _, c := range ruleSet.AllowedCountries {
			filter.CountryIDs = append(filter.CountryIDs, c.ID)
		}
	}
	if !ruleSet.UseAllKeywords {
		for _, kw := range ruleSet.AllowedKeywords {
			filter.KeywordIDs = append(filter.KeywordIDs, kw.ID)
		}
	}
	return filter
}

func (g *Generator) shuffle(questions []entity.Question) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
}

func questionIDs(questions []entity.Question) []uint {
	ids := make([]uint, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	return ids
}
