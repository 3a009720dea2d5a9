package playlist

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/yourusername/geoquiz-api/internal/pkg/errors"
)

func TestShuffleAnswers_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	answers := []string{"Париж", "Лондон", "Берлин", "Мадрид"}

	shuffled, order := ShuffleAnswers(rng, answers)

	assert.Len(t, shuffled, 4)
	assert.Len(t, order, 4)
	assert.ElementsMatch(t, answers, shuffled)
	// order[позиция_на_экране] = исходный_индекс
	for displayPos, originalIdx := range order {
		assert.Equal(t, answers[originalIdx], shuffled[displayPos])
	}
	// Входной срез не мутируется
	assert.Equal(t, []string{"Париж", "Лондон", "Берлин", "Мадрид"}, answers)
}

func TestMapSelection_Bounds(t *testing.T) {
	order := []int{2, 0, 1}

	original, ok := MapSelection(order, 0)
	assert.True(t, ok)
	assert.Equal(t, 2, original)

	_, ok = MapSelection(order, -1)
	assert.False(t, ok)

	_, ok = MapSelection(order, 3)
	assert.False(t, ok)
}

// Свойство: для любой позиции на экране Resolve возвращает индекс
// исходного варианта, который игрок реально видел на этой позиции
func TestAnswerShuffler_ShuffleResolveRoundTrip(t *testing.T) {
	shuffler := NewAnswerShuffler(newFakeCache(), time.Hour)
	answers := []string{"Нил", "Амазонка", "Янцзы", "Миссисипи"}

	shuffled, err := shuffler.Shuffle("anon:p1", 7, answers)
	assert.NoError(t, err)

	for displayPos, displayed := range shuffled {
		original, err := shuffler.Resolve("anon:p1", 7, displayPos)
		assert.NoError(t, err)
		assert.Equal(t, answers[original], displayed)
	}
}

// Без сохранённого порядка позиция трактуется как исходный индекс
func TestAnswerShuffler_ResolveWithoutStoredOrder(t *testing.T) {
	shuffler := NewAnswerShuffler(newFakeCache(), time.Hour)

	original, err := shuffler.Resolve("anon:p1", 7, 2)
	assert.NoError(t, err)
	assert.Equal(t, 2, original)
}

// Позиция вне диапазона сохранённого порядка — ошибка валидации
func TestAnswerShuffler_ResolveOutOfRange(t *testing.T) {
	shuffler := NewAnswerShuffler(newFakeCache(), time.Hour)

	_, err := shuffler.Shuffle("anon:p1", 7, []string{"a", "b"})
	assert.NoError(t, err)

	_, err = shuffler.Resolve("anon:p1", 7, 5)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

// Порядок хранится по паре (игрок, вопрос): перемешивания независимы
func TestAnswerShuffler_IndependentPerPlayer(t *testing.T) {
	cache := newFakeCache()
	shuffler := NewAnswerShuffler(cache, time.Hour)
	answers := []string{"a", "b", "c"}

	_, err := shuffler.Shuffle("anon:p1", 7, answers)
	assert.NoError(t, err)

	// У второго игрока порядка нет — passthrough
	original, err := shuffler.Resolve("anon:p2", 7, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, original)
}
