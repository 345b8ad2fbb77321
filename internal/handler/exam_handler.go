package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prepworks/prepworks-backend/internal/engine"
	"github.com/prepworks/prepworks-backend/internal/middleware"
	"github.com/prepworks/prepworks-backend/internal/model"
	"github.com/prepworks/prepworks-backend/internal/response"
	"github.com/prepworks/prepworks-backend/internal/service"
	"github.com/prepworks/prepworks-backend/internal/validator"
)

// ExamHandler drives exam attempts over REST: lifecycle, answers,
// navigation, submission and review.
type ExamHandler struct {
	sessions *service.SessionService
	media    *service.MediaService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(sessions *service.SessionService, media *service.MediaService) *ExamHandler {
	return &ExamHandler{sessions: sessions, media: media}
}

// Start godoc
// POST /api/v1/attempts
// Starts a new exam attempt and returns its id plus the initial snapshot.
func (h *ExamHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.StartAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, snap, err := h.sessions.Start(c.Request.Context(), claims.StudentID, req)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"attempt":  attempt,
		"snapshot": snap,
	})
}

// Questions godoc
// GET /api/v1/attempts/:attempt_id/questions
// Returns the question sequence with grading fields stripped.
func (h *ExamHandler) Questions(c *gin.Context) {
	claims, attemptID, ok := attemptScope(c)
	if !ok {
		return
	}

	questions, err := h.sessions.Questions(claims.StudentID, attemptID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// State godoc
// GET /api/v1/attempts/:attempt_id/state
// Returns a snapshot for client recovery after reload.
func (h *ExamHandler) State(c *gin.Context) {
	claims, attemptID, ok := attemptScope(c)
	if !ok {
		return
	}

	snap, err := h.sessions.State(claims.StudentID, attemptID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"snapshot": snap})
}

// Answer godoc
// POST /api/v1/attempts/:attempt_id/answers
// Records an MCQ answer. Re-answering overwrites.
func (h *ExamHandler) Answer(c *gin.Context) {
	claims, attemptID, ok := attemptScope(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessions.Answer(claims.StudentID, attemptID, req); err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question_id": req.QuestionID})
}

// TheoryAnswer godoc
// POST /api/v1/attempts/:attempt_id/theory
// Accepts a multipart answer-sheet image for a theory question. The stored
// image path becomes the ledger value for that question.
func (h *ExamHandler) TheoryAnswer(c *gin.Context) {
	claims, attemptID, ok := attemptScope(c)
	if !ok {
		return
	}

	questionID, err := strconv.Atoi(c.PostForm("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	path, err := h.media.SaveAnswerSheet(attemptID.String(), file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusUnsupportedMediaType, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	if err := h.sessions.TheoryAnswer(claims.StudentID, attemptID, questionID, path); err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"question_id": questionID,
		"image_path":  path,
	})
}

// Navigate godoc
// POST /api/v1/attempts/:attempt_id/navigate
// Moves the attempt cursor. Out-of-range indices are ignored.
func (h *ExamHandler) Navigate(c *gin.Context) {
	claims, attemptID, ok := attemptScope(c)
	if !ok {
		return
	}

	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	snap, err := h.sessions.Navigate(claims.StudentID, attemptID, req.Index)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"snapshot": snap})
}

// RequestSubmit godoc
// POST /api/v1/attempts/:attempt_id/request-submit
// Opens the submit confirmation gate.
func (h *ExamHandler) RequestSubmit(c *gin.Context) {
	claims, attemptID, ok := attemptScope(c)
	if !ok {
		return
	}

	if err := h.sessions.RequestSubmit(claims.StudentID, attemptID); err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// CancelSubmit godoc
// POST /api/v1/attempts/:attempt_id/cancel-submit
// Closes the submit confirmation gate.
func (h *ExamHandler) CancelSubmit(c *gin.Context) {
	claims, attemptID, ok := attemptScope(c)
	if !ok {
		return
	}

	if err := h.sessions.CancelSubmit(claims.StudentID, attemptID); err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Submit godoc
// POST /api/v1/attempts/:attempt_id/submit
// Grades the attempt. Idempotent; repeated calls return the same result.
func (h *ExamHandler) Submit(c *gin.Context) {
	claims, attemptID, ok := attemptScope(c)
	if !ok {
		return
	}

	result, err := h.sessions.Submit(claims.StudentID, attemptID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// Review godoc
// GET /api/v1/attempts/:attempt_id/review
// Returns annotated questions after submission.
func (h *ExamHandler) Review(c *gin.Context) {
	claims, attemptID, ok := attemptScope(c)
	if !ok {
		return
	}

	items, err := h.sessions.Review(claims.StudentID, attemptID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"review": items})
}

// Leave godoc
// POST /api/v1/attempts/:attempt_id/leave
// Tears the live session down. Unsubmitted attempts are marked abandoned.
func (h *ExamHandler) Leave(c *gin.Context) {
	claims, attemptID, ok := attemptScope(c)
	if !ok {
		return
	}

	if err := h.sessions.Leave(c.Request.Context(), claims.StudentID, attemptID); err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// History godoc
// GET /api/v1/attempts/history?page=1&per_page=20
// Lists the student's past attempts, newest first.
func (h *ExamHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	attempts, total, err := h.sessions.History(c.Request.Context(), claims.StudentID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": attempts}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	})
}

// GetAttempt godoc
// GET /api/v1/attempts/:attempt_id
// Returns the persisted attempt record, including the stored result.
func (h *ExamHandler) GetAttempt(c *gin.Context) {
	claims, attemptID, ok := attemptScope(c)
	if !ok {
		return
	}

	attempt, err := h.sessions.GetAttempt(c.Request.Context(), claims.StudentID, attemptID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// attemptScope pulls claims and the attempt id path param, failing the
// request on a malformed id.
func attemptScope(c *gin.Context) (*service.Claims, uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, uuid.Nil, false
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, uuid.Nil, false
	}
	return claims, attemptID, true
}

// failSession maps session-layer errors onto response codes.
func failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
	case errors.Is(err, service.ErrAttemptInProgress):
		response.Fail(c, http.StatusConflict, response.ErrAttemptActive)
	case errors.Is(err, service.ErrSubjectNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusNotFound, response.ErrNoQuestions)
	case errors.Is(err, service.ErrNotTheoryQuestion):
		response.Fail(c, http.StatusBadRequest, response.ErrNotTheoryQuestion)
	case errors.Is(err, service.ErrNotDiagnosticAttempt):
		response.Fail(c, http.StatusBadRequest, response.ErrNotDiagnostic)
	case errors.Is(err, engine.ErrAlreadySubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAttemptSubmitted)
	case errors.Is(err, engine.ErrNotSubmitted):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotGraded)
	case errors.Is(err, engine.ErrUnknownQuestion):
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownQuestion)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
