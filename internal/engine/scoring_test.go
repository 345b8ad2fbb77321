package engine

import (
	"testing"

	"github.com/prepworks/prepworks-backend/internal/model"
)

func mcq(id int, subject, correct string) model.Question {
	return model.Question{
		ID:      id,
		Subject: subject,
		Variant: model.VariantPlainMCQ,
		Options: []model.Option{
			{Letter: "A", Text: "a"},
			{Letter: "B", Text: "b", IsCorrect: correct == "B"},
			{Letter: "C", Text: "c", IsCorrect: correct == "C"},
			{Letter: "D", Text: "d", IsCorrect: correct == "D"},
		},
		CorrectLetter: correct,
		Scorable:      true,
	}
}

func theory(id int) model.Question {
	return model.Question{ID: id, Variant: model.VariantTheory, Scorable: false}
}

func TestScoreHalfCorrect(t *testing.T) {
	questions := []model.Question{
		mcq(1, "Mathematics", "B"),
		mcq(2, "Mathematics", "C"),
	}
	answers := map[int]Answer{
		1: {QuestionID: 1, Value: "B"},
		2: {QuestionID: 2, Value: "A"},
	}

	res := Score(questions, answers, 120, false)

	if res.CorrectCount != 1 {
		t.Errorf("correct = %d, want 1", res.CorrectCount)
	}
	if res.ScorableCount != 2 {
		t.Errorf("scorable = %d, want 2", res.ScorableCount)
	}
	if res.Score != 50 {
		t.Errorf("score = %d, want 50", res.Score)
	}
	if res.TimeUsedSeconds != 120 {
		t.Errorf("time used = %d, want 120", res.TimeUsedSeconds)
	}
}

func TestScoreExcludesTheoryFromDenominator(t *testing.T) {
	questions := []model.Question{
		mcq(1, "English", "A"),
		theory(2),
		theory(3),
	}
	answers := map[int]Answer{
		1: {QuestionID: 1, Value: "A"},
		2: {QuestionID: 2, Value: "/uploads/sheet.png"},
	}

	res := Score(questions, answers, 0, false)

	if res.ScorableCount != 1 {
		t.Errorf("scorable = %d, want 1 (theory excluded)", res.ScorableCount)
	}
	if res.TotalCount != 3 {
		t.Errorf("total = %d, want 3", res.TotalCount)
	}
	if res.Score != 100 {
		t.Errorf("score = %d, want 100", res.Score)
	}
}

func TestScoreZeroScorableGuard(t *testing.T) {
	questions := []model.Question{theory(1), theory(2)}

	res := Score(questions, nil, 0, false)

	if res.Score != 0 {
		t.Errorf("score = %d, want 0 when nothing is scorable", res.Score)
	}
}

func TestScoreEmptyInput(t *testing.T) {
	res := Score(nil, nil, 0, true)
	if res.Score != 0 || res.TotalCount != 0 {
		t.Errorf("empty input scored as %+v, want zero result", res)
	}
}

func TestScoreRounding(t *testing.T) {
	questions := []model.Question{
		mcq(1, "Physics", "A"),
		mcq(2, "Physics", "A"),
		mcq(3, "Physics", "A"),
	}
	answers := map[int]Answer{
		1: {QuestionID: 1, Value: "A"},
	}

	res := Score(questions, answers, 0, false)

	// 1/3 = 33.33..., rounds to 33.
	if res.Score != 33 {
		t.Errorf("score = %d, want 33", res.Score)
	}

	answers[2] = Answer{QuestionID: 2, Value: "A"}
	res = Score(questions, answers, 0, false)

	// 2/3 = 66.66..., rounds to 67.
	if res.Score != 67 {
		t.Errorf("score = %d, want 67", res.Score)
	}
}

func TestScoreSubjectBreakdown(t *testing.T) {
	questions := []model.Question{
		mcq(1, "Biology", "B"),
		mcq(2, "Biology", "C"),
		mcq(3, "Chemistry", "D"),
	}
	answers := map[int]Answer{
		1: {QuestionID: 1, Value: "B"}, // Biology correct
		2: {QuestionID: 2, Value: "A"}, // Biology wrong
		3: {QuestionID: 3, Value: "D"}, // Chemistry correct
	}

	res := Score(questions, answers, 0, true)

	bio, ok := res.PerSubject["Biology"]
	if !ok {
		t.Fatal("missing Biology breakdown")
	}
	if bio.Correct != 1 || bio.Total != 2 || bio.Accuracy != 0.5 {
		t.Errorf("Biology = %+v, want {1 2 0.5}", bio)
	}

	chem, ok := res.PerSubject["Chemistry"]
	if !ok {
		t.Fatal("missing Chemistry breakdown")
	}
	if chem.Correct != 1 || chem.Total != 1 || chem.Accuracy != 1.0 {
		t.Errorf("Chemistry = %+v, want {1 1 1.0}", chem)
	}
}

func TestScoreWithoutBreakdownOmitsSubjects(t *testing.T) {
	res := Score([]model.Question{mcq(1, "Biology", "B")}, nil, 0, false)
	if res.PerSubject != nil {
		t.Error("breakdown should be nil when not requested")
	}
}
