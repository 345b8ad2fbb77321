package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prepworks/prepworks-backend/internal/response"
	"github.com/prepworks/prepworks-backend/internal/service"
)

// SubjectHandler serves the subject catalogue.
type SubjectHandler struct {
	questions *service.QuestionService
}

// NewSubjectHandler creates a new SubjectHandler.
func NewSubjectHandler(questions *service.QuestionService) *SubjectHandler {
	return &SubjectHandler{questions: questions}
}

// List godoc
// GET /api/v1/subjects
// Returns all subjects ordered by name.
func (h *SubjectHandler) List(c *gin.Context) {
	subjects, err := h.questions.ListSubjects(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}
