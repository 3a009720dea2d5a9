package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/geoquiz-api/internal/handler/dto"
	apperrors "github.com/yourusername/geoquiz-api/internal/pkg/errors"
	"github.com/yourusername/geoquiz-api/internal/service"
)

// RuleSetHandler обрабатывает административные запросы к наборам правил
type RuleSetHandler struct {
	ruleSetService *service.RuleSetService
}

// NewRuleSetHandler создает новый обработчик наборов правил
func NewRuleSetHandler(ruleSetService *service.RuleSetService) *RuleSetHandler {
	return &RuleSetHandler{ruleSetService: ruleSetService}
}

// CreateRuleSet обрабатывает запрос на создание набора правил
func (h *RuleSetHandler) CreateRuleSet(c *gin.Context) {
	var req dto.RuleSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ruleSet := req.ToEntity()
	if err := h.ruleSetService.Create(ruleSet); err != nil {
		h.handleRuleSetError(c, err)
		return
	}
	if err := h.applyAssociations(ruleSet.ID, &req); err != nil {
		h.handleRuleSetError(c, err)
		return
	}

	created, err := h.ruleSetService.GetByID(ruleSet.ID)
	if err != nil {
		h.handleRuleSetError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewRuleSetResponse(created))
}

// GetRuleSet возвращает набор правил
func (h *RuleSetHandler) GetRuleSet(c *gin.Context) {
	ruleSetID := c.MustGet("ruleSetID").(uint) // Получаем из контекста

	ruleSet, err := h.ruleSetService.GetByID(ruleSetID)
	if err != nil {
		h.handleRuleSetError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRuleSetResponse(ruleSet))
}

// GetRuleSetBySlug возвращает набор правил по его slug
func (h *RuleSetHandler) GetRuleSetBySlug(c *gin.Context) {
	slug := c.Param("slug")

	ruleSet, err := h.ruleSetService.GetBySlug(slug)
	if err != nil {
		h.handleRuleSetError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRuleSetResponse(ruleSet))
}

// ListRuleSets возвращает список наборов правил.
// Параметр active=true оставляет только активные.
func (h *RuleSetHandler) ListRuleSets(c *gin.Context) {
	onlyActive := c.Query("active") == "true"
	ruleSets, err := h.ruleSetService.List(onlyActive)
	if err != nil {
		h.handleRuleSetError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListRuleSetResponse(ruleSets))
}

// UpdateRuleSet обрабатывает запрос на изменение набора правил
func (h *RuleSetHandler) UpdateRuleSet(c *gin.Context) {
	ruleSetID := c.MustGet("ruleSetID").(uint)

	var req dto.RuleSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.ruleSetService.GetByID(ruleSetID)
	if err != nil {
		h.handleRuleSetError(c, err)
		return
	}

	ruleSet := req.ToEntity()
	ruleSet.ID = existing.ID
	if ruleSet.Slug == "" {
		ruleSet.Slug = existing.Slug
	}
	if err := h.ruleSetService.Update(ruleSet); err != nil {
		h.handleRuleSetError(c, err)
		return
	}
	if err := h.applyAssociations(ruleSet.ID, &req); err != nil {
		h.handleRuleSetError(c, err)
		return
	}

	updated, err := h.ruleSetService.GetByID(ruleSet.ID)
	if err != nil {
		h.handleRuleSetError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRuleSetResponse(updated))
}

// DeleteRuleSet удаляет набор правил
func (h *RuleSetHandler) DeleteRuleSet(c *gin.Context) {
	ruleSetID := c.MustGet("ruleSetID").(uint)

	if err := h.ruleSetService.Delete(ruleSetID); err != nil {
		h.handleRuleSetError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetRuleSetStats возвращает агрегированную статистику прохождений
func (h *RuleSetHandler) GetRuleSetStats(c *gin.Context) {
	ruleSetID := c.MustGet("ruleSetID").(uint)

	stats, err := h.ruleSetService.GetStats(ruleSetID)
	if err != nil {
		h.handleRuleSetError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportRuleSetSessions выгружает прохождения набора правил в CSV или XLSX
func (h *RuleSetHandler) ExportRuleSetSessions(c *gin.Context) {
	ruleSetID := c.MustGet("ruleSetID").(uint)
	format := c.DefaultQuery("format", "csv")

	rows, err := h.ruleSetService.ExportSessions(ruleSetID, 0)
	if err != nil {
		h.handleRuleSetError(c, err)
		return
	}

	filename := fmt.Sprintf("rule_set_%d_sessions_%s", ruleSetID, time.Now().Format("2006-01-02"))
	switch format {
	case "xlsx":
		h.exportXLSX(c, rows, filename)
	default:
		h.exportCSV(c, rows, filename)
	}
}

// exportCSV экспортирует прохождения в CSV с правильным экранированием спецсимволов
func (h *RuleSetHandler) exportCSV(c *gin.Context, rows []service.SessionExportRow, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	// Используем encoding/csv для правильного экранирования запятых/кавычек
	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Сессия", "Игрок", "Статус", "Всего вопросов", "Отвечено", "Правильных", "Очки", "Идеальный бонус", "Победа", "Начало", "Завершение"})

	for _, r := range rows {
		finished := ""
		if r.FinishedAt != nil {
			finished = r.FinishedAt.Format(time.RFC3339)
		}
		win := "Нет"
		if r.IsWin {
			win = "Да"
		}

		writer.Write([]string{
			strconv.FormatUint(uint64(r.SessionID), 10),
			sanitizeForExcel(r.PlayerID),
			r.Status,
			strconv.Itoa(r.TotalQuestions),
			strconv.Itoa(r.AnsweredCount),
			strconv.Itoa(r.CorrectCount),
			strconv.Itoa(r.TotalScore),
			strconv.Itoa(r.PerfectBonus),
			win,
			r.StartedAt.Format(time.RFC3339),
			finished,
		})
	}
}

// exportXLSX экспортирует прохождения в Excel с использованием StreamWriter
func (h *RuleSetHandler) exportXLSX(c *gin.Context, rows []service.SessionExportRow, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Прохождения"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[RuleSetHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Сессия", "Игрок", "Статус", "Всего вопросов", "Отвечено", "Правильных", "Очки", "Идеальный бонус", "Победа", "Начало", "Завершение"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[RuleSetHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range rows {
		rowNum := i + 2 // Начинаем с 2 строки (1 - заголовки)
		cell := fmt.Sprintf("A%d", rowNum)

		finished := ""
		if r.FinishedAt != nil {
			finished = r.FinishedAt.Format(time.RFC3339)
		}
		win := "Нет"
		if r.IsWin {
			win = "Да"
		}

		row := []interface{}{r.SessionID, sanitizeForExcel(r.PlayerID), r.Status, r.TotalQuestions, r.AnsweredCount, r.CorrectCount, r.TotalScore, r.PerfectBonus, win, r.StartedAt.Format(time.RFC3339), finished}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[RuleSetHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[RuleSetHandler] Ошибка при Flush: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[RuleSetHandler] Ошибка записи Excel в response: %v", err)
	}
}

// applyAssociations переносит allow-list'ы и явный список вопросов из запроса
func (h *RuleSetHandler) applyAssociations(ruleSetID uint, req *dto.RuleSetRequest) error {
	ruleSet, err := h.ruleSetService.GetByID(ruleSetID)
	if err != nil {
		return err
	}

	if !ruleSet.UseAllBroadThemes {
		if err := h.ruleSetService.ReplaceAllowedBroadThemes(ruleSetID, req.AllowedBroadThemeIDs); err != nil {
			return err
		}
	}
	if !ruleSet.UseAllSpecificThemes {
		if err := h.ruleSetService.ReplaceAllowedSpecificThemes(ruleSetID, req.AllowedSpecificThemeIDs); err != nil {
			return err
		}
	}
	if !ruleSet.UseAllCountries {
		if err := h.ruleSetService.ReplaceAllowedCountries(ruleSetID, req.AllowedCountryIDs); err != nil {
			return err
		}
	}
	if !ruleSet.UseAllKeywords {
		if err := h.ruleSetService.ReplaceAllowedKeywords(ruleSetID, req.AllowedKeywordIDs); err != nil {
			return err
		}
	}
	if ruleSet.IsManualSelection() && len(req.SelectedQuestionIDs) > 0 {
		if err := h.ruleSetService.ReplaceSelectedQuestions(ruleSetID, req.SelectedQuestionIDs); err != nil {
			return err
		}
	}
	return nil
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// handleRuleSetError обрабатывает ошибки сервиса наборов правил
func (h *RuleSetHandler) handleRuleSetError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in RuleSetHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
