package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noorhashem/devflow-backend/internal/apperr"
	"github.com/noorhashem/devflow-backend/internal/logger"
	"github.com/noorhashem/devflow-backend/internal/service"
)

// Handler combines all handler types
type Handler struct {
	Answer   *AnswerHandler
	Question *QuestionHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(answers *service.AnswerService, questions *service.QuestionService, logg *logger.Logger) *Handler {
	return &Handler{
		Answer:   NewAnswerHandler(answers, logg),
		Question: NewQuestionHandler(questions, logg),
	}
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case uint:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// respondError translates a service error into the API's stable shape:
// an HTTP status derived from the error kind plus a human-readable message.
// Raw datastore errors never leave this boundary.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	message := "internal error"
	var ae *apperr.Error
	if errors.As(err, &ae) {
		message = ae.Message
	}
	c.JSON(status, gin.H{"error": message, "kind": string(apperr.KindOf(err))})
}

func unauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "kind": string(apperr.KindUnauthenticated)})
}
