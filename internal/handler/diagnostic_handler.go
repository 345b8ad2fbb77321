package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prepworks/prepworks-backend/internal/response"
	"github.com/prepworks/prepworks-backend/internal/service"
)

// DiagnosticHandler drives the cross-subject placement quiz. Answering and
// navigation go through the regular attempt endpoints; only start and submit
// differ from a normal exam.
type DiagnosticHandler struct {
	diagnostics *service.DiagnosticService
}

// NewDiagnosticHandler creates a new DiagnosticHandler.
func NewDiagnosticHandler(diagnostics *service.DiagnosticService) *DiagnosticHandler {
	return &DiagnosticHandler{diagnostics: diagnostics}
}

// Start godoc
// POST /api/v1/diagnostic
// Starts an untimed placement attempt spanning every subject.
func (h *DiagnosticHandler) Start(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	attempt, snap, err := h.diagnostics.Start(c.Request.Context(), claims.StudentID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"attempt":  attempt,
		"snapshot": snap,
	})
}

// Submit godoc
// POST /api/v1/diagnostic/:attempt_id/submit
// Grades the placement attempt; the result carries the per-subject
// breakdown, reward tier and weakest subject.
func (h *DiagnosticHandler) Submit(c *gin.Context) {
	claims, attemptID, ok := attemptScope(c)
	if !ok {
		return
	}

	result, err := h.diagnostics.Submit(claims.StudentID, attemptID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}
