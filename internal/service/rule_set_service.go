package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/yourusername/geoquiz-api/internal/domain/entity"
	"github.com/yourusername/geoquiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/geoquiz-api/internal/pkg/errors"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// RuleSetStats — агрегированная статистика прохождений набора правил
type RuleSetStats struct {
	TotalSessions     int64 `json:"total_sessions"`
	CompletedSessions int64 `json:"completed_sessions"`
	Wins              int64 `json:"wins"`
}

// SessionExportRow — одна строка выгрузки прохождений
type SessionExportRow struct {
	SessionID      uint
	PlayerID       string
	Status         string
	TotalQuestions int
	AnsweredCount  int
	CorrectCount   int
	TotalScore     int
	PerfectBonus   int
	IsWin          bool
	StartedAt      time.Time
	FinishedAt     *time.Time
}

// RuleSetService управляет наборами правил квизов
type RuleSetService struct {
	ruleSetRepo  repository.RuleSetRepository
	sessionRepo  repository.SessionRepository
	questionRepo repository.QuestionRepository
}

// NewRuleSetService создает новый сервис наборов правил
func NewRuleSetService(
	ruleSetRepo repository.RuleSetRepository,
	sessionRepo repository.SessionRepository,
	questionRepo repository.QuestionRepository,
) *RuleSetService {
	return &RuleSetService{
		ruleSetRepo:  ruleSetRepo,
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
	}
}

// Create валидирует и сохраняет новый набор правил. Пустой slug
// выводится из названия.
func (s *RuleSetService) Create(ruleSet *entity.QuizRuleSet) error {
	if ruleSet.Slug == "" {
		ruleSet.Slug = Slugify(ruleSet.Name)
	}
	if err := s.validate(ruleSet); err != nil {
		return err
	}
	return s.ruleSetRepo.Create(ruleSet)
}

// Update валидирует и сохраняет изменения набора правил
func (s *RuleSetService) Update(ruleSet *entity.QuizRuleSet) error {
	if err := s.validate(ruleSet); err != nil {
		return err
	}
	return s.ruleSetRepo.Update(ruleSet)
}

// GetByID возвращает набор правил по ID
func (s *RuleSetService) GetByID(id uint) (*entity.QuizRuleSet, error) {
	return s.ruleSetRepo.GetByID(id)
}

// GetBySlug возвращает набор правил по slug
func (s *RuleSetService) GetBySlug(slug string) (*entity.QuizRuleSet, error) {
	return s.ruleSetRepo.GetBySlug(slug)
}

// List возвращает наборы правил
func (s *RuleSetService) List(onlyActive bool) ([]entity.QuizRuleSet, error) {
	return s.ruleSetRepo.List(onlyActive)
}

// Delete удаляет набор правил
func (s *RuleSetService) Delete(id uint) error {
	if _, err := s.ruleSetRepo.GetByID(id); err != nil {
		return err
	}
	return s.ruleSetRepo.Delete(id)
}

// ReplaceSelectedQuestions заменяет явный список вопросов manual-режима
func (s *RuleSetService) ReplaceSelectedQuestions(ruleSetID uint, questionIDs []uint) error {
	if _, err := s.ruleSetRepo.GetByID(ruleSetID); err != nil {
		return err
	}
	published, err := s.questionRepo.GetPublishedByIDs(questionIDs)
	if err != nil {
		return err
	}
	if len(published) != len(questionIDs) {
		return fmt.Errorf("%w: some questions are missing or unpublished", apperrors.ErrValidation)
	}
	return s.ruleSetRepo.ReplaceSelectedQuestions(ruleSetID, questionIDs)
}

// ReplaceAllowedKeywords заменяет allow-list ключевых слов
func (s *RuleSetService) ReplaceAllowedKeywords(ruleSetID uint, keywordIDs []uint) error {
	return s.ruleSetRepo.ReplaceAllowedKeywords(ruleSetID, keywordIDs)
}

// ReplaceAllowedCountries заменяет allow-list стран
func (s *RuleSetService) ReplaceAllowedCountries(ruleSetID uint, countryIDs []uint) error {
	return s.ruleSetRepo.ReplaceAllowedCountries(ruleSetID, countryIDs)
}

// ReplaceAllowedBroadThemes заменяет allow-list широких тем
func (s *RuleSetService) ReplaceAllowedBroadThemes(ruleSetID uint, themeIDs []uint) error {
	return s.ruleSetRepo.ReplaceAllowedBroadThemes(ruleSetID, themeIDs)
}

// ReplaceAllowedSpecificThemes заменяет allow-list подтем
func (s *RuleSetService) ReplaceAllowedSpecificThemes(ruleSetID uint, themeIDs []uint) error {
	return s.ruleSetRepo.ReplaceAllowedSpecificThemes(ruleSetID, themeIDs)
}

// GetStats возвращает агрегированную статистику прохождений
func (s *RuleSetService) GetStats(ruleSetID uint) (*RuleSetStats, error) {
	if _, err := s.ruleSetRepo.GetByID(ruleSetID); err != nil {
		return nil, err
	}
	total, completed, wins, err := s.sessionRepo.CountByRuleSet(ruleSetID)
	if err != nil {
		return nil, err
	}
	return &RuleSetStats{
		TotalSessions:     total,
		CompletedSessions: completed,
		Wins:              wins,
	}, nil
}

// ExportSessions собирает строки выгрузки прохождений набора правил
// (новые первыми)
func (s *RuleSetService) ExportSessions(ruleSetID uint, limit int) ([]SessionExportRow, error) {
	if _, err := s.ruleSetRepo.GetByID(ruleSetID); err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.ListByRuleSet(ruleSetID, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]SessionExportRow, 0, len(sessions))
	for _, sess := range sessions {
		rows = append(rows, SessionExportRow{
			SessionID:      sess.ID,
			PlayerID:       sess.PlayerID,
			Status:         sess.Status,
			TotalQuestions: sess.TotalQuestions,
			AnsweredCount:  sess.AnsweredCount,
			CorrectCount:   sess.CorrectCount,
			TotalScore:     sess.TotalScore,
			PerfectBonus:   sess.PerfectBonus,
			IsWin:          sess.IsWin,
			StartedAt:      sess.StartedAt,
			FinishedAt:     sess.FinishedAt,
		})
	}
	return rows, nil
}

// validate проверяет конфигурацию набора правил. Ошибки квот и карт
// бонусов намеренно не фатальны (при генерации они деградируют до
// нуля/нейтрали), здесь отсекаются только заведомо нерабочие конфиги.
func (s *RuleSetService) validate(ruleSet *entity.QuizRuleSet) error {
	if strings.TrimSpace(ruleSet.Name) == "" {
		return fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(ruleSet.Slug) == "" {
		return fmt.Errorf("%w: slug is required", apperrors.ErrValidation)
	}
	switch ruleSet.SelectionMode {
	case entity.SelectionModeAuto, entity.SelectionModeManual:
	default:
		return fmt.Errorf("%w: unknown selection mode %q", apperrors.ErrValidation, ruleSet.SelectionMode)
	}
	switch ruleSet.DifficultyBonusType {
	case entity.BonusNone, entity.BonusAdd, entity.BonusMult:
	default:
		return fmt.Errorf("%w: unknown difficulty bonus type %q", apperrors.ErrValidation, ruleSet.DifficultyBonusType)
	}
	if ruleSet.ScoringBasePoints < 0 || ruleSet.PerfectQuizBonus < 0 || ruleSet.MinCorrectToWin < 0 {
		return fmt.Errorf("%w: scoring values must be non-negative", apperrors.ErrValidation)
	}
	if ruleSet.TimerSeconds <= 0 {
		return fmt.Errorf("%w: timer must be positive", apperrors.ErrValidation)
	}
	if ruleSet.SelectionMode == entity.SelectionModeAuto && len(ruleSet.AllowedDifficulties()) == 0 {
		return fmt.Errorf("%w: auto mode requires allowed difficulties", apperrors.ErrValidation)
	}
	return nil
}

// Slugify приводит название к URL-безопасному slug
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
