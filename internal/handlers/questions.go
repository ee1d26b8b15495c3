package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noorhashem/devflow-backend/internal/logger"
	"github.com/noorhashem/devflow-backend/internal/models"
	"github.com/noorhashem/devflow-backend/internal/service"
)

type QuestionHandler struct {
	svc *service.QuestionService
	log *logger.Logger
}

func NewQuestionHandler(svc *service.QuestionService, logg *logger.Logger) *QuestionHandler {
	return &QuestionHandler{svc: svc, log: logg.With("handler", "QuestionHandler")}
}

// CreateQuestion creates a new question (PROTECTED)
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var input models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, ok := extractUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	question, err := h.svc.Create(c.Request.Context(), actorID, input.Title, input.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// GetQuestion returns a single question by ID (public)
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid question id"})
		return
	}

	question, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// GetQuestions returns recent questions (public)
func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	questions, err := h.svc.ListRecent(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}
