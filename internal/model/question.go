package model

// QuestionVariant distinguishes the three question shapes the engine accepts.
type QuestionVariant string

const (
	// VariantPlainMCQ carries an explicit options array and correct letter.
	VariantPlainMCQ QuestionVariant = "PLAIN_MCQ"
	// VariantEmbeddedMCQ carries a single text blob with inline option
	// markers ("A) ..." lines, "*" flags the correct option).
	VariantEmbeddedMCQ QuestionVariant = "EMBEDDED_MCQ"
	// VariantTheory is free-response, answered with an uploaded image and
	// graded externally. Never scored locally.
	VariantTheory QuestionVariant = "THEORY"
)

// Option is one labeled answer choice of an MCQ question.
type Option struct {
	Letter    string `json:"letter"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// RawOption is an option as stored in the question bank, before
// normalization marks correctness.
type RawOption struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// RawQuestion is a question payload as it arrives from the question bank or
// an external provider, prior to normalization.
type RawQuestion struct {
	ID            int             `json:"id"`
	Subject       string          `json:"subject"`
	Variant       QuestionVariant `json:"variant"`
	Text          string          `json:"text"`
	Options       []RawOption     `json:"options,omitempty"`
	CorrectAnswer string          `json:"correct_answer,omitempty"`
	DiagramURL    string          `json:"diagram_url,omitempty"`
}

// Question is the normalized form every session operates on.
//
// Scorable is true only when the question has exactly one option flagged
// correct after normalization. Questions that fail that invariant (zero or
// multiple correct marks, unparseable embedded text, theory) are carried in
// the sequence but excluded from local grading.
type Question struct {
	ID            int             `json:"id"`
	Subject       string          `json:"subject"`
	Variant       QuestionVariant `json:"variant"`
	Prompt        string          `json:"prompt"`
	Options       []Option        `json:"options,omitempty"`
	CorrectLetter string          `json:"-"`
	DiagramURL    string          `json:"diagram_url,omitempty"`
	Scorable      bool            `json:"-"`
}

// QuestionForStudent is a question with grading fields stripped, as sent to
// the client while the attempt is in progress.
type QuestionForStudent struct {
	ID         int             `json:"id"`
	Subject    string          `json:"subject"`
	Variant    QuestionVariant `json:"variant"`
	Prompt     string          `json:"prompt"`
	Options    []StudentOption `json:"options,omitempty"`
	DiagramURL string          `json:"diagram_url,omitempty"`
}

// StudentOption is an option with the correctness flag stripped.
type StudentOption struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// ForStudent strips grading information from a normalized question.
func (q Question) ForStudent() QuestionForStudent {
	out := QuestionForStudent{
		ID:         q.ID,
		Subject:    q.Subject,
		Variant:    q.Variant,
		Prompt:     q.Prompt,
		DiagramURL: q.DiagramURL,
	}
	for _, o := range q.Options {
		out.Options = append(out.Options, StudentOption{Letter: o.Letter, Text: o.Text})
	}
	return out
}
