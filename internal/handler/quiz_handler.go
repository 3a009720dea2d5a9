package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/geoquiz-api/internal/handler/dto"
	"github.com/yourusername/geoquiz-api/internal/middleware"
	apperrors "github.com/yourusername/geoquiz-api/internal/pkg/errors"
	"github.com/yourusername/geoquiz-api/internal/service"
)

// QuizHandler обрабатывает игровые запросы квиза
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler создает новый обработчик квиза
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// NextQuestion выдаёт следующий вопрос либо экран завершения.
// Пустой параметр history означает начало нового прохождения.
func (h *QuizHandler) NextQuestion(c *gin.Context) {
	playerID := middleware.PlayerID(c)
	ruleSetSlug := c.Query("rule_set")
	history := c.Query("history")

	result, err := h.quizService.NextQuestion(playerID, ruleSetSlug, history)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitAnswer принимает ответ игрока (или таймаут)
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	var req dto.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	playerID := middleware.PlayerID(c)
	result, err := h.quizService.SubmitAnswer(playerID, req.RuleSet, req.QuestionID, req.SelectedAnswer, req.History)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CancelSession помечает текущую сессию брошенной (идемпотентно)
func (h *QuizHandler) CancelSession(c *gin.Context) {
	var req dto.CancelSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	playerID := middleware.PlayerID(c)
	if err := h.quizService.CancelSession(playerID, req.RuleSet); err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// GetPlayerStats возвращает накопленную статистику текущего игрока
func (h *QuizHandler) GetPlayerStats(c *gin.Context) {
	playerID := middleware.PlayerID(c)

	stats, err := h.quizService.PlayerStats(playerID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"player_id": playerID, "questions": stats})
}

// handleQuizError обрабатывает ошибки игровых сервисов и отправляет соответствующий HTTP ответ
func (h *QuizHandler) handleQuizError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in QuizHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
