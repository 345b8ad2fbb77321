package model

// SubjectBreakdown is the per-subject slice of a diagnostic result.
type SubjectBreakdown struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// Result is the immutable outcome of a submitted session. It is computed
// exactly once, from the answer ledger as it stood at submission.
type Result struct {
	Score           int                         `json:"score"` // rounded percentage 0-100
	CorrectCount    int                         `json:"correct_count"`
	ScorableCount   int                         `json:"scorable_count"`
	TotalCount      int                         `json:"total_count"`
	TimeUsedSeconds int                         `json:"time_used_seconds"`
	PerSubject      map[string]SubjectBreakdown `json:"per_subject,omitempty"`
}
