package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_IsCorrect(t *testing.T) {
	question := &Question{
		ID:            1,
		Text:          "Что такое геокешинг?",
		Answers:       StringArray{"Игра", "Спорт", "Наука", "Хобби"},
		CorrectAnswer: 0,
	}

	assert.True(t, question.IsCorrect(0), "IsCorrect должен вернуть true для правильного ответа")
	assert.False(t, question.IsCorrect(1))
	assert.False(t, question.IsCorrect(3))
}

func TestQuestion_IsValidAnswer(t *testing.T) {
	question := &Question{
		Answers: StringArray{"a", "b", "c"},
	}

	assert.True(t, question.IsValidAnswer(0))
	assert.True(t, question.IsValidAnswer(2))
	assert.False(t, question.IsValidAnswer(-1), "отрицательный индекс недопустим")
	assert.False(t, question.IsValidAnswer(3), "индекс за пределами вариантов недопустим")
}

func TestQuestion_KeywordIDs(t *testing.T) {
	question := &Question{
		Keywords: []Keyword{{ID: 10}, {ID: 20}},
	}

	assert.Equal(t, []uint{10, 20}, question.KeywordIDs())
	assert.True(t, question.HasKeywords())

	empty := &Question{}
	assert.Empty(t, empty.KeywordIDs())
	assert.False(t, empty.HasKeywords())
}

func TestQuestion_SuccessRate(t *testing.T) {
	question := &Question{TimesAnswered: 4, SuccessCount: 3}
	assert.InDelta(t, 0.75, question.SuccessRate(), 0.0001)

	fresh := &Question{}
	assert.Equal(t, 0.0, fresh.SuccessRate(), "без статистики доля равна нулю")
}

func TestStringArray_Scan(t *testing.T) {
	var arr StringArray
	require.NoError(t, arr.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringArray{"a", "b"}, arr)

	// NULL и пустые значения из базы превращаются в пустой массив
	require.NoError(t, arr.Scan(nil))
	assert.Empty(t, arr)

	require.NoError(t, arr.Scan([]byte{}))
	assert.Empty(t, arr)

	assert.Error(t, arr.Scan("not bytes"))
}

func TestStringArray_Value(t *testing.T) {
	value, err := StringArray{"a", "b"}.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte(`["a","b"]`), value)

	// nil сериализуется как пустой JSON-массив, а не NULL
	value, err = StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), value)
}
