package playlist

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/yourusername/geoquiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/geoquiz-api/internal/pkg/errors"
)

// ShuffleAnswers возвращает перемешанную копию вариантов ответа и
// карту соответствия: order[позиция_на_экране] = исходный_индекс.
// Входной срез не мутируется.
func ShuffleAnswers(rng *rand.Rand, answers []string) (shuffled []string, order []int) {
	order = rng.Perm(len(answers))
	shuffled = make([]string, len(answers))
	for displayPos, originalIdx := range order {
		shuffled[displayPos] = answers[originalIdx]
	}
	return shuffled, order
}

// MapSelection переводит выбранную на экране позицию в исходный индекс
// варианта. Возвращает false при позиции вне диапазона.
func MapSelection(order []int, displayedIndex int) (int, bool) {
	if displayedIndex < 0 || displayedIndex >= len(order) {
		return 0, false
	}
	return order[displayedIndex], true
}

// AnswerShuffler перемешивает варианты ответа при выдаче вопроса и
// сохраняет порядок в кеше, чтобы при приёме ответа восстановить
// исходный индекс. Порядок хранится по паре (игрок, вопрос): один и
// тот же вопрос в разных сессиях перемешивается независимо.
type AnswerShuffler struct {
	cache repository.CacheRepository
	ttl   time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAnswerShuffler создает новый перемешиватель ответов
func NewAnswerShuffler(cache repository.CacheRepository, ttl time.Duration) *AnswerShuffler {
	return &AnswerShuffler{
		cache: cache,
		ttl:   ttl,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func shuffleKey(playerID string, questionID uint) string {
	return fmt.Sprintf("quiz:shuffle:%s:%d", playerID, questionID)
}

// Shuffle перемешивает варианты и запоминает порядок для приёма ответа
func (s *AnswerShuffler) Shuffle(playerID string, questionID uint, answers []string) ([]string, error) {
	s.mu.Lock()
	shuffled, order := ShuffleAnswers(s.rng, answers)
	s.mu.Unlock()

	if err := s.cache.SetJSON(shuffleKey(playerID, questionID), order, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store answer order: %w", err)
	}
	return shuffled, nil
}

// Resolve переводит позицию на экране в исходный индекс варианта.
// Если сохранённого порядка нет (TTL истёк или вопрос выдавался без
// перемешивания), позиция считается исходным индексом.
func (s *AnswerShuffler) Resolve(playerID string, questionID uint, displayedIndex int) (int, error) {
	var order []int
	err := s.cache.GetJSON(shuffleKey(playerID, questionID), &order)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return displayedIndex, nil
		}
		return 0, err
	}
	original, ok := MapSelection(order, displayedIndex)
	if !ok {
		return 0, apperrors.ErrValidation
	}
	return original, nil
}
