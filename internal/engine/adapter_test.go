package engine

import (
	"testing"

	"github.com/prepworks/prepworks-backend/internal/model"
)

func TestNormalizeEmbeddedMultiline(t *testing.T) {
	raw := model.RawQuestion{
		ID:      1,
		Subject: "Mathematics",
		Variant: model.VariantEmbeddedMCQ,
		Text:    "What is 2+2?\nA) 3\nB) *4\nC) 5\nD) 6",
	}

	q := NormalizeOne(raw)

	if q.Prompt != "What is 2+2?" {
		t.Errorf("stem = %q, want %q", q.Prompt, "What is 2+2?")
	}
	if len(q.Options) != 4 {
		t.Fatalf("got %d options, want 4", len(q.Options))
	}
	wantLetters := []string{"A", "B", "C", "D"}
	for i, o := range q.Options {
		if o.Letter != wantLetters[i] {
			t.Errorf("option %d letter = %q, want %q", i, o.Letter, wantLetters[i])
		}
	}
	if !q.Options[1].IsCorrect {
		t.Error("option B should be flagged correct")
	}
	if q.Options[1].Text != "4" {
		t.Errorf("option B text = %q, want %q (asterisk stripped)", q.Options[1].Text, "4")
	}
	if !q.Scorable || q.CorrectLetter != "B" {
		t.Errorf("scorable = %v, correct letter = %q, want scorable with B", q.Scorable, q.CorrectLetter)
	}
}

func TestNormalizeEmbeddedVariants(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantStem    string
		wantOptions int
		wantCorrect string
		scorable    bool
	}{
		{
			name:        "trailing asterisk",
			text:        "Capital of France?\nA. London\nB. Paris*\nC. Rome",
			wantStem:    "Capital of France?",
			wantOptions: 3,
			wantCorrect: "B",
			scorable:    true,
		},
		{
			name:        "inline markers on one line",
			text:        "Pick the prime. A) 4 B) 6 *C) 7 D) 9",
			wantStem:    "Pick the prime.",
			wantOptions: 4,
			wantCorrect: "C",
			scorable:    true,
		},
		{
			name:        "line markers beat inline literal in stem",
			text:        "If B) appears in a sentence, what then?\nA) Nothing *\nB) Something",
			wantStem:    "If B) appears in a sentence, what then?",
			wantOptions: 2,
			wantCorrect: "A",
			scorable:    true,
		},
		{
			name:        "no markers at all",
			text:        "Explain photosynthesis in your own words.",
			wantStem:    "Explain photosynthesis in your own words.",
			wantOptions: 0,
			scorable:    false,
		},
		{
			name:        "single option is unscorable without correct mark",
			text:        "Broken question\nA) only choice",
			wantStem:    "Broken question",
			wantOptions: 1,
			scorable:    false,
		},
		{
			name:        "no correct marker",
			text:        "Which one?\nA) first\nB) second",
			wantStem:    "Which one?",
			wantOptions: 2,
			scorable:    false,
		},
		{
			name:        "multiple correct markers unscorable",
			text:        "Which one?\nA) *first\nB) *second",
			wantStem:    "Which one?",
			wantOptions: 2,
			scorable:    false,
		},
		{
			name:        "continuation lines join previous option",
			text:        "Long options?\nA) a very long option\nthat wraps\nB) short*",
			wantStem:    "Long options?",
			wantOptions: 2,
			wantCorrect: "B",
			scorable:    true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := NormalizeOne(model.RawQuestion{Variant: model.VariantEmbeddedMCQ, Text: tc.text})

			if q.Prompt != tc.wantStem {
				t.Errorf("stem = %q, want %q", q.Prompt, tc.wantStem)
			}
			if len(q.Options) != tc.wantOptions {
				t.Fatalf("got %d options, want %d", len(q.Options), tc.wantOptions)
			}
			if q.Scorable != tc.scorable {
				t.Errorf("scorable = %v, want %v", q.Scorable, tc.scorable)
			}
			if tc.scorable && q.CorrectLetter != tc.wantCorrect {
				t.Errorf("correct letter = %q, want %q", q.CorrectLetter, tc.wantCorrect)
			}
		})
	}
}

func TestNormalizeEmbeddedContinuationText(t *testing.T) {
	q := NormalizeOne(model.RawQuestion{
		Variant: model.VariantEmbeddedMCQ,
		Text:    "Long options?\nA) a very long option\nthat wraps\nB) short*",
	})
	if q.Options[0].Text != "a very long option that wraps" {
		t.Errorf("option A text = %q, want continuation joined", q.Options[0].Text)
	}
}

func TestNormalizePlainMCQ(t *testing.T) {
	raw := model.RawQuestion{
		ID:      7,
		Subject: "Biology",
		Variant: model.VariantPlainMCQ,
		Text:    "Which organelle produces ATP?",
		Options: []model.RawOption{
			{Letter: "A", Text: "Nucleus"},
			{Letter: "B", Text: "Mitochondrion"},
			{Letter: "C", Text: "Ribosome"},
			{Letter: "D", Text: "Golgi body"},
		},
		CorrectAnswer: "B",
	}

	q := NormalizeOne(raw)

	if !q.Scorable || q.CorrectLetter != "B" {
		t.Fatalf("scorable = %v, correct = %q, want scorable B", q.Scorable, q.CorrectLetter)
	}
	if !q.Options[1].IsCorrect {
		t.Error("option B not flagged correct")
	}
}

func TestNormalizePlainMCQCorrectByText(t *testing.T) {
	q := NormalizeOne(model.RawQuestion{
		Variant: model.VariantPlainMCQ,
		Text:    "Which gas do plants absorb?",
		Options: []model.RawOption{
			{Letter: "A", Text: "Oxygen"},
			{Letter: "B", Text: "Carbon dioxide"},
		},
		CorrectAnswer: "Carbon dioxide",
	})

	if !q.Scorable || q.CorrectLetter != "B" {
		t.Errorf("scorable = %v, correct = %q, want B via text match", q.Scorable, q.CorrectLetter)
	}
}

func TestNormalizePlainMCQNoCorrectIsUnscorable(t *testing.T) {
	q := NormalizeOne(model.RawQuestion{
		Variant: model.VariantPlainMCQ,
		Text:    "Broken key",
		Options: []model.RawOption{
			{Letter: "A", Text: "one"},
			{Letter: "B", Text: "two"},
		},
		CorrectAnswer: "Z",
	})
	if q.Scorable {
		t.Error("question with no matching correct answer must be unscorable")
	}
}

func TestNormalizeTheory(t *testing.T) {
	q := NormalizeOne(model.RawQuestion{
		Variant:    model.VariantTheory,
		Text:       "Discuss the causes of the 1914 amalgamation.",
		DiagramURL: "/uploads/map.png",
	})

	if q.Scorable {
		t.Error("theory questions are never locally scorable")
	}
	if len(q.Options) != 0 {
		t.Errorf("theory question has %d options, want 0", len(q.Options))
	}
	if q.DiagramURL != "/uploads/map.png" {
		t.Errorf("diagram url not passed through: %q", q.DiagramURL)
	}
}

func TestNormalizeAssignsSequentialIDs(t *testing.T) {
	qs := Normalize([]model.RawQuestion{
		{Variant: model.VariantTheory, Text: "one"},
		{Variant: model.VariantTheory, Text: "two"},
	})
	if qs[0].ID != 1 || qs[1].ID != 2 {
		t.Errorf("ids = %d,%d, want 1,2", qs[0].ID, qs[1].ID)
	}
}
