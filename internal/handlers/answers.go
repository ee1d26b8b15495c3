package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/noorhashem/devflow-backend/internal/logger"
	"github.com/noorhashem/devflow-backend/internal/models"
	"github.com/noorhashem/devflow-backend/internal/service"
)

type AnswerHandler struct {
	svc *service.AnswerService
	log *logger.Logger
}

func NewAnswerHandler(svc *service.AnswerService, logg *logger.Logger) *AnswerHandler {
	return &AnswerHandler{svc: svc, log: logg.With("handler", "AnswerHandler")}
}

func answerResponse(answer models.Answer) gin.H {
	return gin.H{
		"id":          answer.ID,
		"question_id": answer.QuestionID,
		"author_id":   answer.AuthorID,
		"content":     answer.Content,
		"upvotes":     answer.Upvotes,
		"downvotes":   answer.Downvotes,
		"author": gin.H{
			"id":       answer.Author.ID,
			"username": answer.Author.Username,
			"avatar":   answer.Author.Avatar,
		},
		"created_at": answer.CreatedAt,
		"updated_at": answer.UpdatedAt,
	}
}

// CreateAnswer posts a new answer on a question (PROTECTED)
func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	questionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid question id"})
		return
	}

	var input models.CreateAnswerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorID, ok := extractUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	answer, err := h.svc.Create(c.Request.Context(), actorID, questionID, input.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          answer.ID,
		"question_id": answer.QuestionID,
		"author_id":   answer.AuthorID,
		"content":     answer.Content,
		"created_at":  answer.CreatedAt,
	})
}

// GetAnswers returns one page of answers for a question (public)
func (h *AnswerHandler) GetAnswers(c *gin.Context) {
	questionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid question id"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	filter, err := service.ParseFilter(c.DefaultQuery("filter", ""))
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.svc.List(c.Request.Context(), questionID, page, pageSize, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       lo.Map(result.Items, func(a models.Answer, _ int) gin.H { return answerResponse(a) }),
		"has_next":    result.HasNext,
		"total_count": result.TotalCount,
	})
}

// DeleteAnswer deletes an answer, its votes, and the counter contribution (owner only)
func (h *AnswerHandler) DeleteAnswer(c *gin.Context) {
	answerID, err := strconv.Atoi(c.Param("answerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid answer id"})
		return
	}

	actorID, ok := extractUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actorID, answerID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Answer deleted successfully"})
}
