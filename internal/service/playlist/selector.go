package playlist

import (
	"github.com/yourusername/geoquiz-api/internal/domain/entity"
)

// Имена ослабляемых ограничений в диагностике подбора
const (
	RelaxDuplicateKeyword = "duplicate_keyword" // ключевые слова пересеклись с уже выбранными
	RelaxSeenQuestion     = "seen_question"     // вопрос уже отвечен игроком ранее
	RelaxAnsweredKeyword  = "answered_keyword"  // ключевые слова пересеклись с историей ответов
)

// Diagnostics описывает качество подбора: удалось ли заполнить квоту
// только "чистыми" вопросами и какие ограничения пришлось ослабить
type Diagnostics struct {
	Perfect         bool           // каждый выбранный вопрос прошёл все проверки
	TotalCandidates int            // размер входного пула
	Relaxations     map[string]int // ограничение → сколько выбранных вопросов его нарушили
}

// candidateRank — оценка кандидата: 4 булевых признака, сравниваемых
// лексикографически, true лучше false
type candidateRank struct {
	noUsedKeywordOverlap     bool
	notSeen                  bool
	noAnsweredKeywordOverlap bool
	keywordFree              bool
}

// better сравнивает две оценки лексикографически
func (a candidateRank) better(b candidateRank) bool {
	if a.noUsedKeywordOverlap != b.noUsedKeywordOverlap {
		return a.noUsedKeywordOverlap
	}
	if a.notSeen != b.notSeen {
		return a.notSeen
	}
	if a.noAnsweredKeywordOverlap != b.noAnsweredKeywordOverlap {
		return a.noAnsweredKeywordOverlap
	}
	if a.keywordFree != b.keywordFree {
		return a.keywordFree
	}
	return false
}

// perfect сообщает, прошёл ли кандидат все проверки
func (a candidateRank) perfect() bool {
	return a.noUsedKeywordOverlap && a.notSeen && a.noAnsweredKeywordOverlap
}

// SelectWithKeywordPriority ранжирует кандидатов и выбирает до quota
// вопросов. Ранжирование лексикографическое по 4 признакам: нет пересечения
// ключевых слов с уже выбранными, вопрос не отвечен ранее, нет пересечения
// с ключевыми словами истории, вопрос вообще без ключевых слов.
//
// Квота заполняется безусловно: при нехватке "чистых" кандидатов берутся
// худшие варианты, а ослабленные ограничения фиксируются в диагностике.
// Входные множества не мутируются; обновлённое множество использованных
// ключевых слов возвращается отдельно.
func SelectWithKeywordPriority(
	candidates []entity.Question,
	seen map[uint]bool,
	usedKeywords map[uint]bool,
	answeredKeywords map[uint]bool,
	preventDuplicateKeywords bool,
	quota int,
) (chosen []entity.Question, updatedUsed map[uint]bool, diag Diagnostics) {
	diag = Diagnostics{
		Perfect:         true,
		TotalCandidates: len(candidates),
		Relaxations:     make(map[string]int),
	}

	updatedUsed = copySet(usedKeywords)
	if len(candidates) == 0 || quota <= 0 {
		return nil, updatedUsed, diag
	}
	if quota > len(candidates) {
		quota = len(candidates)
	}

	// Жадный выбор: каждый следующий вопрос ранжируется относительно
	// уже накопленных ключевых слов, поэтому давление дублей растёт
	// внутри одного вызова, а не только между бакетами.
	// При равных оценках берётся более ранний вопрос пула.
	remaining := make([]int, len(candidates))
	for i := range remaining {
		remaining[i] = i
	}

	chosen = make([]entity.Question, 0, quota)
	for len(chosen) < quota {
		bestPos := 0
		bestRank := rankCandidate(&candidates[remaining[0]], seen, updatedUsed, answeredKeywords, preventDuplicateKeywords)
		for pos := 1; pos < len(remaining); pos++ {
			rank := rankCandidate(&candidates[remaining[pos]], seen, updatedUsed, answeredKeywords, preventDuplicateKeywords)
			if rank.better(bestRank) {
				bestPos = pos
				bestRank = rank
			}
		}

		q := candidates[remaining[bestPos]]
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
		chosen = append(chosen, q)

		if !bestRank.perfect() {
			diag.Perfect = false
			if !bestRank.noUsedKeywordOverlap {
				diag.Relaxations[RelaxDuplicateKeyword]++
			}
			if !bestRank.notSeen {
				diag.Relaxations[RelaxSeenQuestion]++
			}
			if !bestRank.noAnsweredKeywordOverlap {
				diag.Relaxations[RelaxAnsweredKeyword]++
			}
		}

		for _, kwID := range q.KeywordIDs() {
			updatedUsed[kwID] = true
		}
	}

	return chosen, updatedUsed, diag
}

func rankCandidate(
	q *entity.Question,
	seen map[uint]bool,
	usedKeywords map[uint]bool,
	answeredKeywords map[uint]bool,
	preventDuplicateKeywords bool,
) candidateRank {
	kwIDs := q.KeywordIDs()
	return candidateRank{
		noUsedKeywordOverlap:     !preventDuplicateKeywords || !intersects(kwIDs, usedKeywords),
		notSeen:                  !seen[q.ID],
		noAnsweredKeywordOverlap: !intersects(kwIDs, answeredKeywords),
		keywordFree:              len(kwIDs) == 0,
	}
}

func intersects(ids []uint, set map[uint]bool) bool {
	for _, id := range ids {
		if set[id] {
			return true
		}
	}
	return false
}

func copySet(src map[uint]bool) map[uint]bool {
	dst := make(map[uint]bool, len(src))
	for k, v := range src {
		if v {
			dst[k] = true
		}
	}
	return dst
}
