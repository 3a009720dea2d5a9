package service

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/geoquiz-api/internal/domain/entity"
	"github.com/yourusername/geoquiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/geoquiz-api/internal/pkg/errors"
	"github.com/yourusername/geoquiz-api/internal/service/playlist"
)

// QuestionView — вопрос в том виде, в котором он уходит игроку:
// варианты перемешаны, правильный индекс не раскрывается
type QuestionView struct {
	ID           uint     `json:"id"`
	Text         string   `json:"text"`
	Answers      []string `json:"answers"`
	Difficulty   int      `json:"difficulty"`
	Position     int      `json:"position"` // 1-based позиция в плейлисте
	Total        int      `json:"total"`
	Score        int      `json:"score"`
	TimerSeconds int      `json:"timer_seconds"`
	Legacy       bool     `json:"legacy,omitempty"`
}

// CompletionView — экран завершения квиза
type CompletionView struct {
	TotalScore        int                   `json:"total_score"`
	CorrectCount      int                   `json:"correct_count"`
	TotalQuestions    int                   `json:"total_questions"`
	IsWin             bool                  `json:"is_win"`
	PerfectBonusAdded bool                  `json:"perfect_bonus_added"`
	PerfectBonus      int                   `json:"perfect_bonus"`
	Message           string                `json:"message"`
	Breakdown         []playlist.ScoreEvent `json:"breakdown"`
}

// NextQuestionResult — ответ операции "следующий вопрос": либо вопрос,
// либо экран завершения
type NextQuestionResult struct {
	Question     *QuestionView   `json:"question,omitempty"`
	Completion   *CompletionView `json:"completion,omitempty"`
	HistoryToken string          `json:"history_token"`
	IntroMessage string          `json:"intro_message,omitempty"`
}

// AnswerResult — итог приёма ответа
type AnswerResult struct {
	Accepted       bool   `json:"accepted"` // ответ совпал с текущей позицией плейлиста
	IsCorrect      bool   `json:"is_correct"`
	CorrectAnswer  string `json:"correct_answer"`
	PointsAwarded  int    `json:"points_awarded"`
	ComboTriggered bool   `json:"combo_triggered"`
	ComboBonus     int    `json:"combo_bonus"`
	ComboStreak    int    `json:"combo_streak"`
	Score          int    `json:"score"`
	Position       int    `json:"position"` // количество отвеченных вопросов
	Total          int    `json:"total"`
	HistoryToken   string `json:"history_token"`
	Legacy         bool   `json:"legacy,omitempty"`
}

// QuizService реализует игровой цикл квиза: выдачу вопросов,
// приём ответов и завершение сессий
type QuizService struct {
	questionRepo repository.QuestionRepository
	ruleSetRepo  repository.RuleSetRepository
	sessionRepo  repository.SessionRepository
	statsRepo    repository.StatsRepository

	sessions  *playlist.SessionStore
	shuffler  *playlist.AnswerShuffler
	generator *playlist.Generator
	config    *playlist.Config
}

// NewQuizService создает новый сервис квиза
func NewQuizService(
	questionRepo repository.QuestionRepository,
	ruleSetRepo repository.RuleSetRepository,
	sessionRepo repository.SessionRepository,
	statsRepo repository.StatsRepository,
	cacheRepo repository.CacheRepository,
	config *playlist.Config,
) *QuizService {
	if config == nil {
		config = playlist.DefaultConfig()
	}
	return &QuizService{
		questionRepo: questionRepo,
		ruleSetRepo:  ruleSetRepo,
		sessionRepo:  sessionRepo,
		statsRepo:    statsRepo,
		sessions:     playlist.NewSessionStore(cacheRepo, config.SessionTTL),
		shuffler:     playlist.NewAnswerShuffler(cacheRepo, config.ShuffleTTL),
		generator:    playlist.NewGenerator(questionRepo),
		config:       config,
	}
}

// NextQuestion выдаёт следующий вопрос плейлиста либо экран завершения.
// Пустой history-токен — явный сигнал "начать заново": текущая сессия
// (если была) бросается и создаётся новая. Неизвестный или выключенный
// slug переводит запрос в legacy-режим случайных вопросов без очков.
func (s *QuizService) NextQuestion(playerID, ruleSetSlug, historyToken string) (*NextQuestionResult, error) {
	if _, err := parseHistoryToken(historyToken); err != nil {
		return nil, err
	}

	ruleSet := s.resolveRuleSet(ruleSetSlug)
	if ruleSet == nil {
		// Игрок вышел из контекста набора правил: все незавершённые
		// сессии бросаются
		s.abandonInProgressSessions(playerID)
		return s.legacyNextQuestion(playerID, historyToken)
	}

	state, err := s.sessions.Load(playerID, ruleSet.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	freshStart := state == nil || strings.TrimSpace(historyToken) == ""
	if freshStart {
		// Новое прохождение бросает все незавершённые сессии игрока,
		// включая сессии других наборов правил
		s.abandonInProgressSessions(playerID)
		state, err = s.startSession(playerID, ruleSet, state)
		if err != nil {
			return nil, err
		}
		historyToken = ""
	}

	if state.IsCompleted() {
		completion, err := s.finalizeSession(playerID, ruleSet, state)
		if err != nil {
			return nil, err
		}
		return &NextQuestionResult{
			Completion:   completion,
			HistoryToken: joinHistoryToken(state.AnsweredQuestionIDs()),
		}, nil
	}

	questionID, _ := state.CurrentQuestionID()
	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load question %d: %w", questionID, err)
	}

	shuffled, err := s.shuffler.Shuffle(playerID, question.ID, question.Answers)
	if err != nil {
		return nil, err
	}

	result := &NextQuestionResult{
		Question: &QuestionView{
			ID:           question.ID,
			Text:         question.Text,
			Answers:      shuffled,
			Difficulty:   question.DifficultyLevel,
			Position:     state.Index + 1,
			Total:        len(state.Playlist),
			Score:        state.Score,
			TimerSeconds: ruleSet.TimerSeconds,
		},
		HistoryToken: joinHistoryToken(state.AnsweredQuestionIDs()),
	}
	if state.Index == 0 {
		result.IntroMessage = ruleSet.IntroMessage
	}
	return result, nil
}

// SubmitAnswer принимает ответ игрока. selectedAnswer == nil означает
// таймаут (вопрос не отвечен). Сессия мутируется только когда вопрос
// совпадает с текущей позицией плейлиста: повторная отправка того же
// ответа не двигает индекс и не начисляет очки повторно.
func (s *QuizService) SubmitAnswer(playerID, ruleSetSlug string, questionID uint, selectedAnswer *int, historyToken string) (*AnswerResult, error) {
	if _, err := parseHistoryToken(historyToken); err != nil {
		return nil, err
	}

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}

	originalIdx := -1
	if selectedAnswer != nil {
		originalIdx, err = s.shuffler.Resolve(playerID, question.ID, *selectedAnswer)
		if err != nil {
			return nil, err
		}
		if !question.IsValidAnswer(originalIdx) {
			return nil, apperrors.ErrValidation
		}
	}
	isCorrect := selectedAnswer != nil && question.IsCorrect(originalIdx)

	// Статистика пишется до проверки дубля: повторная отправка попадает
	// в счётчики, хотя сессию не двигает
	s.recordStats(playerID, question.ID, originalIdx, isCorrect)

	ruleSet := s.resolveRuleSet(ruleSetSlug)
	if ruleSet == nil {
		return &AnswerResult{
			Accepted:      true,
			IsCorrect:     isCorrect,
			CorrectAnswer: question.Answers[question.CorrectAnswer],
			HistoryToken:  appendHistoryToken(historyToken, question.ID),
			Legacy:        true,
		}, nil
	}

	state, err := s.sessions.Load(playerID, ruleSet.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if state == nil {
		return nil, apperrors.ErrNotFound
	}

	result := &AnswerResult{
		IsCorrect:     isCorrect,
		CorrectAnswer: question.Answers[question.CorrectAnswer],
		Score:         state.Score,
		Position:      state.Index,
		Total:         len(state.Playlist),
		ComboStreak:   state.ComboStreak,
		HistoryToken:  joinHistoryToken(state.AnsweredQuestionIDs()),
	}

	expected, inProgress := state.CurrentQuestionID()
	if !inProgress || expected != question.ID {
		// Дубль или ответ не на текущий вопрос: состояние не трогаем
		log.Printf("[QuizService] Player %s submitted answer for question %d, expected %v (rule set %s)",
			playerID, question.ID, expected, ruleSet.Slug)
		return result, nil
	}

	awarded, event, newStreak := playlist.CalculateScore(ruleSet, question, isCorrect, state.ComboStreak, state.Index+1)
	state.Score += awarded
	state.ComboStreak = newStreak
	if isCorrect {
		state.CorrectCount++
	}
	state.Breakdown = append(state.Breakdown, event)
	state.Index++

	if err := s.sessions.Save(playerID, ruleSet.Slug, state); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	result.Accepted = true
	result.PointsAwarded = awarded
	result.ComboTriggered = event.ComboTriggered
	result.ComboBonus = event.ComboBonus
	result.ComboStreak = newStreak
	result.Score = state.Score
	result.Position = state.Index
	result.HistoryToken = joinHistoryToken(state.AnsweredQuestionIDs())
	return result, nil
}

// CancelSession помечает текущую сессию брошенной. Повторный вызов
// без активной сессии — no-op.
func (s *QuizService) CancelSession(playerID, ruleSetSlug string) error {
	ruleSet := s.resolveRuleSet(ruleSetSlug)
	if ruleSet == nil {
		return nil
	}

	state, err := s.sessions.Load(playerID, ruleSet.Slug)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if state == nil {
		return nil
	}

	if err := s.sessions.Delete(playerID, ruleSet.Slug); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.closeDBSession(state, ruleSet, entity.SessionStatusAbandoned)
	log.Printf("[QuizService] Player %s abandoned rule set %s at question %d of %d",
		playerID, ruleSet.Slug, state.Index, len(state.Playlist))
	return nil
}

// abandonInProgressSessions бросает все незавершённые сессии игрока:
// удаляет горячее состояние и переводит постоянные записи в статус
// abandoned. Ошибки не фатальны.
func (s *QuizService) abandonInProgressSessions(playerID string) {
	rows, err := s.sessionRepo.ListInProgressByPlayer(playerID)
	if err != nil {
		log.Printf("[QuizService] Failed to list in-progress sessions for %s: %v", playerID, err)
		return
	}
	for i := range rows {
		row := &rows[i]
		if row.RuleSet != nil {
			state, err := s.sessions.Load(playerID, row.RuleSet.Slug)
			if err == nil && state != nil {
				row.AnsweredCount = state.Index
				row.CorrectCount = state.CorrectCount
				row.TotalScore = state.Score
			}
			if err := s.sessions.Delete(playerID, row.RuleSet.Slug); err != nil {
				log.Printf("[QuizService] Failed to delete session state %s/%s: %v",
					playerID, row.RuleSet.Slug, err)
			}
		}
		now := time.Now()
		row.Status = entity.SessionStatusAbandoned
		row.FinishedAt = &now
		if err := s.sessionRepo.Update(row); err != nil {
			log.Printf("[QuizService] Failed to abandon session record %d: %v", row.ID, err)
			continue
		}
		log.Printf("[QuizService] Player %s left rule set context, session %d abandoned", playerID, row.ID)
	}
}

// PlayerStats возвращает накопленную статистику игрока по вопросам
func (s *QuizService) PlayerStats(playerID string) ([]entity.UserQuestionStat, error) {
	return s.statsRepo.GetPlayerStats(playerID)
}

// startSession бросает прежнюю сессию (если была) и создаёт новую
// с свежесгенерированным плейлистом
func (s *QuizService) startSession(playerID string, ruleSet *entity.QuizRuleSet, prior *playlist.SessionState) (*playlist.SessionState, error) {
	if prior != nil && !prior.IsCompleted() {
		s.closeDBSession(prior, ruleSet, entity.SessionStatusAbandoned)
	}

	history, err := s.loadPlayerHistory(playerID)
	if err != nil {
		return nil, err
	}

	generated, err := s.generator.Generate(ruleSet, history)
	if err != nil {
		return nil, err
	}
	if generated.Shortfall() > 0 {
		log.Printf("[QuizService] Rule set %s: playlist shorter than requested (%d of %d)",
			ruleSet.Slug, len(generated.QuestionIDs), generated.Requested)
	}

	state := &playlist.SessionState{
		Playlist:  generated.QuestionIDs,
		StartedAt: time.Now(),
	}

	dbSession := &entity.UserQuizSession{
		PlayerID:       playerID,
		RuleSetID:      ruleSet.ID,
		Status:         entity.SessionStatusInProgress,
		TotalQuestions: len(state.Playlist),
		StartedAt:      state.StartedAt,
	}
	if err := s.sessionRepo.Create(dbSession); err != nil {
		// Запись истории не должна ломать игру
		log.Printf("[QuizService] Failed to create session record: %v", err)
	} else {
		state.DBSessionID = dbSession.ID
	}

	if err := s.sessions.Save(playerID, ruleSet.Slug, state); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return state, nil
}

// finalizeSession начисляет бонус за идеальное прохождение (однократно)
// и закрывает постоянную запись сессии
func (s *QuizService) finalizeSession(playerID string, ruleSet *entity.QuizRuleSet, state *playlist.SessionState) (*CompletionView, error) {
	total := len(state.Playlist)
	perfect := total > 0 && state.CorrectCount == total

	if perfect && ruleSet.PerfectQuizBonus > 0 && !state.PerfectAwarded {
		state.Score += ruleSet.PerfectQuizBonus
		state.PerfectAwarded = true
		state.Breakdown = append(state.Breakdown, playlist.NewPerfectBonusEvent(ruleSet.PerfectQuizBonus))
		if err := s.sessions.Save(playerID, ruleSet.Slug, state); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
	}
	s.closeDBSession(state, ruleSet, entity.SessionStatusCompleted)

	isWin := state.CorrectCount >= ruleSet.MinCorrectToWin
	message := ruleSet.SuccessMessage
	if !isWin {
		message = ruleSet.FailureMessage
	}
	perfectBonus := 0
	if state.PerfectAwarded {
		perfectBonus = ruleSet.PerfectQuizBonus
	}

	return &CompletionView{
		TotalScore:        state.Score,
		CorrectCount:      state.CorrectCount,
		TotalQuestions:    total,
		IsWin:             isWin,
		PerfectBonusAdded: state.PerfectAwarded,
		PerfectBonus:      perfectBonus,
		Message:           message,
		Breakdown:         state.Breakdown,
	}, nil
}

// closeDBSession переводит постоянную запись сессии в финальный статус.
// Уже закрытая запись не трогается, поэтому повторное завершение
// идемпотентно.
func (s *QuizService) closeDBSession(state *playlist.SessionState, ruleSet *entity.QuizRuleSet, status string) {
	if state.DBSessionID == 0 {
		return
	}
	dbSession, err := s.sessionRepo.GetByID(state.DBSessionID)
	if err != nil {
		log.Printf("[QuizService] Failed to load session record %d: %v", state.DBSessionID, err)
		return
	}
	if dbSession.IsFinished() {
		return
	}

	now := time.Now()
	dbSession.Status = status
	dbSession.AnsweredCount = state.Index
	dbSession.CorrectCount = state.CorrectCount
	dbSession.TotalScore = state.Score
	dbSession.FinishedAt = &now
	if status == entity.SessionStatusCompleted {
		dbSession.IsWin = state.CorrectCount >= ruleSet.MinCorrectToWin
		if state.PerfectAwarded {
			dbSession.PerfectBonus = ruleSet.PerfectQuizBonus
		}
	}
	if err := s.sessionRepo.Update(dbSession); err != nil {
		log.Printf("[QuizService] Failed to update session record %d: %v", state.DBSessionID, err)
	}
}

// legacyNextQuestion — режим без набора правил: один случайный
// опубликованный вопрос, без плейлиста и очков
func (s *QuizService) legacyNextQuestion(playerID, historyToken string) (*NextQuestionResult, error) {
	seen, _ := parseHistoryToken(historyToken)
	questions, err := s.questionRepo.GetRandomPublished(1, seen)
	if err != nil {
		return nil, fmt.Errorf("failed to load random question: %w", err)
	}
	if len(questions) == 0 {
		// Всё отвечено: начинаем перебор заново
		questions, err = s.questionRepo.GetRandomPublished(1, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load random question: %w", err)
		}
		historyToken = ""
	}
	if len(questions) == 0 {
		return nil, apperrors.ErrNotFound
	}

	question := questions[0]
	shuffled, err := s.shuffler.Shuffle(playerID, question.ID, question.Answers)
	if err != nil {
		return nil, err
	}
	return &NextQuestionResult{
		Question: &QuestionView{
			ID:         question.ID,
			Text:       question.Text,
			Answers:    shuffled,
			Difficulty: question.DifficultyLevel,
			Legacy:     true,
		},
		HistoryToken: historyToken,
	}, nil
}

// resolveRuleSet возвращает активный набор правил либо nil для
// перехода в legacy-режим
func (s *QuizService) resolveRuleSet(slug string) *entity.QuizRuleSet {
	if strings.TrimSpace(slug) == "" {
		return nil
	}
	ruleSet, err := s.ruleSetRepo.GetBySlug(slug)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[QuizService] Failed to load rule set %s: %v", slug, err)
		}
		return nil
	}
	if !ruleSet.IsActive {
		return nil
	}
	return ruleSet
}

// loadPlayerHistory собирает историю игрока для генерации плейлиста
func (s *QuizService) loadPlayerHistory(playerID string) (playlist.PlayerHistory, error) {
	seenIDs, err := s.statsRepo.AnsweredQuestionIDs(playerID)
	if err != nil {
		return playlist.PlayerHistory{}, fmt.Errorf("failed to load answered questions: %w", err)
	}
	keywordIDs, err := s.statsRepo.AnsweredKeywordIDs(playerID)
	if err != nil {
		return playlist.PlayerHistory{}, fmt.Errorf("failed to load answered keywords: %w", err)
	}
	return playlist.PlayerHistory{
		SeenQuestionIDs:    toSet(seenIDs),
		AnsweredKeywordIDs: toSet(keywordIDs),
	}, nil
}

// recordStats обновляет статистику ответов fire-and-forget: ошибки
// логируются, но не влияют на игровой цикл
func (s *QuizService) recordStats(playerID string, questionID uint, selectedAnswer int, isCorrect bool) {
	go func() {
		if err := s.questionRepo.IncrementAnswerStats(questionID, isCorrect); err != nil {
			log.Printf("[QuizService] Failed to increment question stats for %d: %v", questionID, err)
		}
		if selectedAnswer >= 0 {
			if err := s.statsRepo.RecordAnswer(playerID, questionID, selectedAnswer, isCorrect); err != nil {
				log.Printf("[QuizService] Failed to record answer stats for %d: %v", questionID, err)
			}
		}
	}()
}

// parseHistoryToken разбирает токен истории (CSV из ID вопросов).
// Пустой токен валиден; нечисловые элементы — ошибка валидации.
func parseHistoryToken(token string) ([]uint, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	parts := strings.Split(token, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, apperrors.ErrValidation
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func joinHistoryToken(ids []uint) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

func appendHistoryToken(token string, id uint) string {
	entry := strconv.FormatUint(uint64(id), 10)
	token = strings.TrimSpace(token)
	if token == "" {
		return entry
	}
	return token + "," + entry
}

func toSet(ids []uint) map[uint]bool {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
