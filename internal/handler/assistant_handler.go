package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prepworks/prepworks-backend/internal/middleware"
	"github.com/prepworks/prepworks-backend/internal/response"
	"github.com/prepworks/prepworks-backend/internal/service"
	"github.com/prepworks/prepworks-backend/internal/validator"
)

// AssistantHandler exposes the study assistant endpoints.
type AssistantHandler struct {
	assistant *service.AssistantService
	sessions  *service.SessionService
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(assistant *service.AssistantService, sessions *service.SessionService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant, sessions: sessions}
}

// Chat godoc
// POST /api/v1/assistant/chat
// Answers a free-form study question. One in-flight request per student.
func (h *AssistantHandler) Chat(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	var req service.ChatRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	answer, err := h.assistant.Chat(c.Request.Context(), claims.StudentID, req)
	if err != nil {
		failAssistant(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"answer": answer})
}

// Explain godoc
// GET /api/v1/attempts/:attempt_id/explain/:question_id
// Produces a worked explanation for a question of a live attempt. Rejected
// until submission, since the explanation reveals the correct answer.
func (h *AssistantHandler) Explain(c *gin.Context) {
	claims, attemptID, ok := attemptScope(c)
	if !ok {
		return
	}

	questionID, err := strconv.Atoi(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	question, err := h.sessions.LiveQuestion(claims.StudentID, attemptID, questionID)
	if err != nil {
		failSession(c, err)
		return
	}

	var studentAnswer string
	if snap, err := h.sessions.State(claims.StudentID, attemptID); err == nil {
		if a, ok := snap.Answers[questionID]; ok {
			studentAnswer = a.Value
		}
	}

	explanation, err := h.assistant.ExplainSolution(c.Request.Context(), attemptID, question, studentAnswer)
	if err != nil {
		failAssistant(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"explanation": explanation})
}

func failAssistant(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssistantBusy):
		response.Fail(c, http.StatusConflict, response.ErrAssistantBusy)
	case errors.Is(err, service.ErrAssistantUnavailable):
		response.Fail(c, http.StatusBadGateway, response.ErrAssistantUnavailable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// requireClaims is attemptScope without the path param.
func requireClaims(c *gin.Context) (*service.Claims, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}
	return claims, true
}
