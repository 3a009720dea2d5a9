package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/geoquiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/geoquiz-api/internal/pkg/errors"
)

func validRuleSet() *entity.QuizRuleSet {
	rs := &entity.QuizRuleSet{
		Name:                "Столицы мира",
		Slug:                "world-capitals",
		TimerSeconds:        30,
		SelectionMode:       entity.SelectionModeAuto,
		DifficultyBonusType: entity.BonusNone,
		ScoringBasePoints:   10,
	}
	rs.SetAllowedDifficulties([]int{1, 2})
	return rs
}

func newRuleSetService() (*RuleSetService, *MockRuleSetRepo, *MockSessionRepo, *MockQuestionRepo) {
	ruleSetRepo := new(MockRuleSetRepo)
	sessionRepo := new(MockSessionRepo)
	questionRepo := new(MockQuestionRepo)
	return NewRuleSetService(ruleSetRepo, sessionRepo, questionRepo), ruleSetRepo, sessionRepo, questionRepo
}

func TestRuleSetService_CreateValid(t *testing.T) {
	svc, ruleSetRepo, _, _ := newRuleSetService()
	ruleSet := validRuleSet()
	ruleSetRepo.On("Create", ruleSet).Return(nil)

	assert.NoError(t, svc.Create(ruleSet))
	ruleSetRepo.AssertExpectations(t)
}

// Пустой slug выводится из названия
func TestRuleSetService_CreateDerivesSlug(t *testing.T) {
	svc, ruleSetRepo, _, _ := newRuleSetService()
	ruleSet := validRuleSet()
	ruleSet.Name = "Geo Quiz 2026!"
	ruleSet.Slug = ""
	ruleSetRepo.On("Create", ruleSet).Return(nil)

	assert.NoError(t, svc.Create(ruleSet))
	assert.Equal(t, "geo-quiz-2026", ruleSet.Slug)
}

func TestRuleSetService_CreateValidation(t *testing.T) {
	svc, _, _, _ := newRuleSetService()

	cases := []struct {
		name   string
		mutate func(*entity.QuizRuleSet)
	}{
		{"пустое название", func(rs *entity.QuizRuleSet) { rs.Name = "  "; rs.Slug = "x" }},
		{"неизвестный режим выбора", func(rs *entity.QuizRuleSet) { rs.SelectionMode = "magic" }},
		{"неизвестный тип бонуса", func(rs *entity.QuizRuleSet) { rs.DifficultyBonusType = "double" }},
		{"отрицательные очки", func(rs *entity.QuizRuleSet) { rs.ScoringBasePoints = -1 }},
		{"нулевой таймер", func(rs *entity.QuizRuleSet) { rs.TimerSeconds = 0 }},
		{"auto без сложностей", func(rs *entity.QuizRuleSet) { rs.AllowedDifficultiesCSV = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ruleSet := validRuleSet()
			tc.mutate(ruleSet)
			assert.ErrorIs(t, svc.Create(ruleSet), apperrors.ErrValidation)
		})
	}
}

// Manual-режим не требует сложностей
func TestRuleSetService_CreateManualWithoutDifficulties(t *testing.T) {
	svc, ruleSetRepo, _, _ := newRuleSetService()
	ruleSet := validRuleSet()
	ruleSet.SelectionMode = entity.SelectionModeManual
	ruleSet.AllowedDifficultiesCSV = ""
	ruleSetRepo.On("Create", ruleSet).Return(nil)

	assert.NoError(t, svc.Create(ruleSet))
}

// Список manual-вопросов принимается только если все опубликованы
func TestRuleSetService_ReplaceSelectedQuestions(t *testing.T) {
	svc, ruleSetRepo, _, questionRepo := newRuleSetService()
	ruleSetRepo.On("GetByID", uint(1)).Return(validRuleSet(), nil)
	questionRepo.On("GetPublishedByIDs", []uint{7, 8}).
		Return([]entity.Question{{ID: 7}}, nil)

	err := svc.ReplaceSelectedQuestions(1, []uint{7, 8})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	ruleSetRepo.AssertNotCalled(t, "ReplaceSelectedQuestions")
}

func TestRuleSetService_GetStats(t *testing.T) {
	svc, ruleSetRepo, sessionRepo, _ := newRuleSetService()
	ruleSetRepo.On("GetByID", uint(1)).Return(validRuleSet(), nil)
	sessionRepo.On("CountByRuleSet", uint(1)).
		Return(int64(10), int64(7), int64(4), nil)

	stats, err := svc.GetStats(1)

	assert.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalSessions)
	assert.Equal(t, int64(7), stats.CompletedSessions)
	assert.Equal(t, int64(4), stats.Wins)
}

func TestRuleSetService_GetStatsUnknownRuleSet(t *testing.T) {
	svc, ruleSetRepo, _, _ := newRuleSetService()
	ruleSetRepo.On("GetByID", uint(99)).Return(nil, apperrors.ErrNotFound)

	_, err := svc.GetStats(99)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRuleSetService_ExportSessions(t *testing.T) {
	svc, ruleSetRepo, sessionRepo, _ := newRuleSetService()
	finished := time.Now()
	ruleSetRepo.On("GetByID", uint(1)).Return(validRuleSet(), nil)
	sessionRepo.On("ListByRuleSet", uint(1), 100).Return([]entity.UserQuizSession{
		{
			ID:             5,
			PlayerID:       testPlayer,
			Status:         entity.SessionStatusCompleted,
			TotalQuestions: 3,
			AnsweredCount:  3,
			CorrectCount:   3,
			TotalScore:     35,
			PerfectBonus:   5,
			IsWin:          true,
			FinishedAt:     &finished,
		},
	}, nil)

	rows, err := svc.ExportSessions(1, 100)

	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, uint(5), rows[0].SessionID)
	assert.Equal(t, testPlayer, rows[0].PlayerID)
	assert.Equal(t, 35, rows[0].TotalScore)
	assert.True(t, rows[0].IsWin)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "geo-quiz-2026", Slugify("  Geo Quiz 2026! "))
	assert.Equal(t, "abc", Slugify("ABC"))
	assert.Equal(t, "", Slugify("***"))
}
