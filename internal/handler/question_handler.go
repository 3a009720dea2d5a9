package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/geoquiz-api/internal/domain/entity"
	"github.com/yourusername/geoquiz-api/internal/handler/dto"
	apperrors "github.com/yourusername/geoquiz-api/internal/pkg/errors"
	"github.com/yourusername/geoquiz-api/internal/service"
)

// QuestionHandler обрабатывает административные запросы к банку вопросов
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler создает новый обработчик вопросов
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// CreateQuestion обрабатывает запрос на создание вопроса
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req dto.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question := req.ToEntity()
	if err := h.questionService.Create(question); err != nil {
		h.handleQuestionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewQuestionResponse(question))
}

// CreateQuestionBatch обрабатывает пакетное создание вопросов
func (h *QuestionHandler) CreateQuestionBatch(c *gin.Context) {
	var req dto.BatchQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions := make([]entity.Question, 0, len(req.Questions))
	for i := range req.Questions {
		questions = append(questions, *req.Questions[i].ToEntity())
	}
	if err := h.questionService.CreateBatch(questions); err != nil {
		h.handleQuestionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(questions)})
}

// GetQuestion возвращает вопрос
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint) // Получаем из контекста

	question, err := h.questionService.GetByID(questionID)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionResponse(question))
}

// UpdateQuestion обрабатывает запрос на изменение вопроса
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	var req dto.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question := req.ToEntity()
	question.ID = questionID
	if err := h.questionService.Update(question); err != nil {
		h.handleQuestionError(c, err)
		return
	}

	updated, err := h.questionService.GetByID(questionID)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionResponse(updated))
}

// DeleteQuestion удаляет вопрос
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	if err := h.questionService.Delete(questionID); err != nil {
		h.handleQuestionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetAnswerDistribution возвращает глобальные счётчики выбора вариантов
func (h *QuestionHandler) GetAnswerDistribution(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	stats, err := h.questionService.AnswerDistribution(questionID)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"question_id": questionID, "distribution": stats})
}

// handleQuestionError обрабатывает ошибки сервиса вопросов
func (h *QuestionHandler) handleQuestionError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in QuestionHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
