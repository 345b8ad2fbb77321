package engine

import (
	"regexp"
	"strings"

	"github.com/prepworks/prepworks-backend/internal/model"
)

// Option marker patterns for embedded MCQ text.
//
// Precedence: line-anchored markers win. The blob is scanned line by line
// first, and only if no line starts with a marker does the parser fall back
// to scanning for inline markers within the text. A literal "B)" inside a
// stem therefore never splits the question as long as the real options sit
// on their own lines.
var (
	lineMarkerRe   = regexp.MustCompile(`^\s*(\*?)\s*([A-Ha-h])[.)]\s+(.*)$`)
	inlineMarkerRe = regexp.MustCompile(`(^|\s)(\*?)([A-H])[.)]\s+`)
)

// Normalize converts raw question payloads into the single addressable
// sequence a session operates on. It never fails: malformed input degrades
// to an unscorable question rather than an error.
func Normalize(raws []model.RawQuestion) []model.Question {
	questions := make([]model.Question, 0, len(raws))
	for i, raw := range raws {
		q := NormalizeOne(raw)
		if q.ID == 0 {
			// Sessions are single-use, so the sequence index is a stable id.
			q.ID = i + 1
		}
		questions = append(questions, q)
	}
	return questions
}

// NormalizeOne normalizes a single raw question according to its variant.
func NormalizeOne(raw model.RawQuestion) model.Question {
	switch raw.Variant {
	case model.VariantEmbeddedMCQ:
		return normalizeEmbedded(raw)
	case model.VariantTheory:
		return model.Question{
			ID:         raw.ID,
			Subject:    raw.Subject,
			Variant:    model.VariantTheory,
			Prompt:     raw.Text,
			DiagramURL: raw.DiagramURL,
		}
	default:
		return normalizePlain(raw)
	}
}

// normalizePlain passes explicit options through, flagging the option whose
// letter matches the declared correct answer.
func normalizePlain(raw model.RawQuestion) model.Question {
	q := model.Question{
		ID:         raw.ID,
		Subject:    raw.Subject,
		Variant:    model.VariantPlainMCQ,
		Prompt:     raw.Text,
		DiagramURL: raw.DiagramURL,
	}

	correct := strings.ToUpper(strings.TrimSpace(raw.CorrectAnswer))
	for i, ro := range raw.Options {
		letter := strings.ToUpper(strings.TrimSpace(ro.Letter))
		if letter == "" {
			letter = string(rune('A' + i))
		}
		q.Options = append(q.Options, model.Option{
			Letter:    letter,
			Text:      ro.Text,
			IsCorrect: letter == correct,
		})
	}

	// Some providers send the correct answer as the option text instead of
	// a letter. Retry on text before declaring the question unscorable.
	if countCorrect(q.Options) == 0 && correct != "" {
		for i := range q.Options {
			if strings.EqualFold(strings.TrimSpace(q.Options[i].Text), strings.TrimSpace(raw.CorrectAnswer)) {
				q.Options[i].IsCorrect = true
			}
		}
	}

	finalize(&q)
	return q
}

// normalizeEmbedded splits a text blob into a stem and labeled options.
// A "*" adjacent to an option marker or its text flags the correct option
// and is stripped from display. Unparseable text degrades to a stem-only,
// unscorable question.
func normalizeEmbedded(raw model.RawQuestion) model.Question {
	q := model.Question{
		ID:         raw.ID,
		Subject:    raw.Subject,
		Variant:    model.VariantEmbeddedMCQ,
		DiagramURL: raw.DiagramURL,
	}

	stem, options := splitEmbedded(raw.Text)
	q.Prompt = stem
	q.Options = options

	finalize(&q)
	return q
}

func splitEmbedded(text string) (string, []model.Option) {
	lines := strings.Split(text, "\n")

	// Pass 1: line-anchored markers.
	first := -1
	for i, line := range lines {
		if lineMarkerRe.MatchString(line) {
			first = i
			break
		}
	}

	if first >= 0 {
		stem := strings.TrimSpace(strings.Join(lines[:first], "\n"))
		var options []model.Option
		for _, line := range lines[first:] {
			m := lineMarkerRe.FindStringSubmatch(line)
			if m != nil {
				opt := buildOption(m[2], m[3], m[1] == "*")
				options = append(options, opt)
				continue
			}
			// Continuation line: belongs to the previous option's text.
			if len(options) > 0 && strings.TrimSpace(line) != "" {
				last := &options[len(options)-1]
				last.Text = strings.TrimSpace(last.Text + " " + strings.TrimSpace(line))
			}
		}
		return stem, options
	}

	// Pass 2: inline markers within a single line of text.
	matches := inlineMarkerRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		// Degenerate case: the whole blob is the stem, zero options.
		return strings.TrimSpace(text), nil
	}

	stem := strings.TrimSpace(text[:matches[0][0]])
	var options []model.Option
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		letter := text[m[6]:m[7]]
		starred := m[4] != m[5]
		body := text[m[1]:end]
		options = append(options, buildOption(letter, body, starred))
	}
	return stem, options
}

// buildOption trims the option text and resolves the correctness marker.
// The "*" may precede the marker letter or lead/trail the option text.
func buildOption(letter, text string, starred bool) model.Option {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "*") {
		starred = true
		text = strings.TrimSpace(strings.TrimPrefix(text, "*"))
	}
	if strings.HasSuffix(text, "*") {
		starred = true
		text = strings.TrimSpace(strings.TrimSuffix(text, "*"))
	}
	return model.Option{
		Letter:    strings.ToUpper(letter),
		Text:      text,
		IsCorrect: starred,
	}
}

// finalize enforces the exactly-one-correct invariant. Questions violating
// it stay in the sequence but are excluded from grading.
func finalize(q *model.Question) {
	if q.Variant == model.VariantTheory {
		return
	}
	if countCorrect(q.Options) != 1 {
		q.Scorable = false
		q.CorrectLetter = ""
		return
	}
	q.Scorable = true
	for _, o := range q.Options {
		if o.IsCorrect {
			q.CorrectLetter = o.Letter
			return
		}
	}
}

func countCorrect(options []model.Option) int {
	n := 0
	for _, o := range options {
		if o.IsCorrect {
			n++
		}
	}
	return n
}
