package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExamType enumerates the supported exam formats.
type ExamType string

const (
	ExamTypeJAMB       ExamType = "JAMB"
	ExamTypeWAEC       ExamType = "WAEC"
	ExamTypeIGCSE      ExamType = "IGCSE"
	ExamTypeDiagnostic ExamType = "DIAGNOSTIC"
)

// AttemptStatus enumerates attempt lifecycle states.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "IN_PROGRESS"
	AttemptStatusSubmitted  AttemptStatus = "SUBMITTED"
	AttemptStatusAbandoned  AttemptStatus = "ABANDONED"
)

// Attempt is the persisted record of one exam or quiz session.
type Attempt struct {
	ID           uuid.UUID       `json:"id"`
	StudentID    int             `json:"student_id"`
	Subject      string          `json:"subject"`
	ExamType     ExamType        `json:"exam_type"`
	Year         int             `json:"year,omitempty"`
	Difficulty   string          `json:"difficulty,omitempty"`
	Status       AttemptStatus   `json:"status"`
	Score        *int            `json:"score,omitempty"`
	CorrectCount *int            `json:"correct_count,omitempty"`
	TotalCount   *int            `json:"total_count,omitempty"`
	Breakdown    json.RawMessage `json:"breakdown,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
}

// ExamConfig is the caller-supplied configuration a session is built from.
type ExamConfig struct {
	Subject              string
	ExamType             ExamType
	Year                 int
	Difficulty           string
	TimerDurationSeconds int
	Questions            []RawQuestion
}

// StartAttemptRequest is the payload for starting a new exam attempt.
type StartAttemptRequest struct {
	Subject       string `json:"subject" binding:"required,min=2,max=60"`
	ExamType      string `json:"exam_type" binding:"required,oneof=JAMB WAEC IGCSE"`
	Year          int    `json:"year" binding:"omitempty,min=1980,max=2100"`
	Difficulty    string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	QuestionCount int    `json:"question_count" binding:"omitempty,min=1,max=100"`
	// TimerDurationSeconds of 0 selects "No Timer" mode.
	TimerDurationSeconds int `json:"timer_duration_seconds" binding:"omitempty,min=0,max=14400"`
}

// AnswerRequest is the payload for recording an MCQ answer.
type AnswerRequest struct {
	QuestionID int    `json:"question_id" binding:"required,min=0"`
	Letter     string `json:"letter" binding:"omitempty,len=1"`
	// OptionIndex may be sent instead of a letter; -1 means unset.
	OptionIndex *int   `json:"option_index" binding:"omitempty,min=0"`
	Confidence  string `json:"confidence" binding:"omitempty,oneof=guessing unsure confident"`
}

// NavigateRequest is the payload for moving the attempt cursor.
type NavigateRequest struct {
	Index int `json:"index"`
}
