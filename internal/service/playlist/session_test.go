package playlist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionState_IsCompleted(t *testing.T) {
	state := &SessionState{Playlist: []uint{1, 2, 3}, Index: 0}
	assert.False(t, state.IsCompleted())

	state.Index = 2
	assert.False(t, state.IsCompleted())

	state.Index = 3
	assert.True(t, state.IsCompleted())

	// Пустой плейлист — сразу завершён
	empty := &SessionState{}
	assert.True(t, empty.IsCompleted())
}

func TestSessionState_CurrentQuestionID(t *testing.T) {
	state := &SessionState{Playlist: []uint{10, 20}, Index: 1}

	id, ok := state.CurrentQuestionID()
	assert.True(t, ok)
	assert.Equal(t, uint(20), id)

	state.Index = 2
	_, ok = state.CurrentQuestionID()
	assert.False(t, ok)
}

func TestSessionState_AnsweredQuestionIDs(t *testing.T) {
	state := &SessionState{Playlist: []uint{10, 20, 30}, Index: 2}

	assert.Equal(t, []uint{10, 20}, state.AnsweredQuestionIDs())

	state.Index = 0
	assert.Nil(t, state.AnsweredQuestionIDs())
}

func TestSessionStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewSessionStore(newFakeCache(), time.Hour)

	state := &SessionState{
		Playlist:     []uint{5, 7, 9},
		Index:        1,
		Score:        25,
		CorrectCount: 1,
		ComboStreak:  1,
		Breakdown: []ScoreEvent{
			{Type: EventTypeQuestion, QuestionID: 5, WasCorrect: true, TotalAwarded: 25},
		},
		DBSessionID: 42,
		StartedAt:   time.Now().UTC().Truncate(time.Second),
	}
	assert.NoError(t, store.Save("anon:p1", "geo-basics", state))

	loaded, err := store.Load("anon:p1", "geo-basics")
	assert.NoError(t, err)
	assert.Equal(t, state, loaded)
}

// Отсутствие сессии — не ошибка, а (nil, nil)
func TestSessionStore_LoadMissing(t *testing.T) {
	store := NewSessionStore(newFakeCache(), time.Hour)

	loaded, err := store.Load("anon:p1", "geo-basics")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

// Сессии изолированы по паре (игрок, slug)
func TestSessionStore_KeyIsolation(t *testing.T) {
	store := NewSessionStore(newFakeCache(), time.Hour)

	assert.NoError(t, store.Save("anon:p1", "alpha", &SessionState{Playlist: []uint{1}}))
	assert.NoError(t, store.Save("anon:p1", "beta", &SessionState{Playlist: []uint{2}}))
	assert.NoError(t, store.Save("anon:p2", "alpha", &SessionState{Playlist: []uint{3}}))

	s1, _ := store.Load("anon:p1", "alpha")
	s2, _ := store.Load("anon:p1", "beta")
	s3, _ := store.Load("anon:p2", "alpha")
	assert.Equal(t, []uint{1}, s1.Playlist)
	assert.Equal(t, []uint{2}, s2.Playlist)
	assert.Equal(t, []uint{3}, s3.Playlist)
}

func TestSessionStore_Delete(t *testing.T) {
	store := NewSessionStore(newFakeCache(), time.Hour)

	assert.NoError(t, store.Save("anon:p1", "alpha", &SessionState{Playlist: []uint{1}}))
	assert.NoError(t, store.Delete("anon:p1", "alpha"))

	loaded, err := store.Load("anon:p1", "alpha")
	assert.NoError(t, err)
	assert.Nil(t, loaded)

	// Повторное удаление безопасно
	assert.NoError(t, store.Delete("anon:p1", "alpha"))
}
