package grading

import (
	"reflect"
	"testing"

	"preparedness-service/internal/models"
)

func twoQuestionQuiz() []models.Question {
	return []models.Question{
		{ID: "q1", Text: "Where do you shelter during an earthquake?", Options: []string{"Window", "Under a desk"}, CorrectOption: 1, Points: 1},
		{ID: "q2", Text: "First step when a fire alarm sounds?", Options: []string{"Evacuate calmly", "Hide"}, CorrectOption: 0, Points: 1},
	}
}

func TestGradeAllCorrect(t *testing.T) {
	graded, score := Grade(twoQuestionQuiz(), []SubmittedAnswer{
		{QuestionID: "q1", SelectedOption: 1},
		{QuestionID: "q2", SelectedOption: 0},
	})

	if score != 2 {
		t.Errorf("expected score 2, got %d", score)
	}
	if CorrectCount(graded) != 2 {
		t.Errorf("expected 2 correct answers, got %d", CorrectCount(graded))
	}
	if Percentage(score, 2) != 100 {
		t.Errorf("expected 100%%, got %d", Percentage(score, 2))
	}
}

func TestGradePartiallyCorrect(t *testing.T) {
	graded, score := Grade(twoQuestionQuiz(), []SubmittedAnswer{
		{QuestionID: "q1", SelectedOption: 0},
		{QuestionID: "q2", SelectedOption: 0},
	})

	if score != 1 {
		t.Errorf("expected score 1, got %d", score)
	}
	if graded[0].IsCorrect {
		t.Error("q1 answer should be incorrect")
	}
	if !graded[1].IsCorrect {
		t.Error("q2 answer should be correct")
	}
	if Percentage(score, 2) != 50 {
		t.Errorf("expected 50%%, got %d", Percentage(score, 2))
	}
}

func TestGradeUnknownQuestionSkipped(t *testing.T) {
	graded, score := Grade(twoQuestionQuiz(), []SubmittedAnswer{
		{QuestionID: "q1", SelectedOption: 1},
		{QuestionID: "does-not-exist", SelectedOption: 0},
	})

	if score != 1 {
		t.Errorf("expected score 1, got %d", score)
	}
	if len(graded) != 1 {
		t.Fatalf("expected 1 graded answer, got %d", len(graded))
	}
	if graded[0].QuestionID != "q1" {
		t.Errorf("unexpected graded question %q", graded[0].QuestionID)
	}
}

func TestGradeDuplicateAnswersBothCounted(t *testing.T) {
	// Duplicates are graded independently; callers that want last-write-wins
	// must de-duplicate before grading.
	_, score := Grade(twoQuestionQuiz(), []SubmittedAnswer{
		{QuestionID: "q1", SelectedOption: 1},
		{QuestionID: "q1", SelectedOption: 1},
	})

	if score != 2 {
		t.Errorf("expected duplicate answers to each contribute, got score %d", score)
	}
}

func TestGradeEmptySubmission(t *testing.T) {
	graded, score := Grade(twoQuestionQuiz(), nil)
	if score != 0 || len(graded) != 0 {
		t.Errorf("expected empty grading, got %d answers and score %d", len(graded), score)
	}
}

func TestGradePreservesSubmissionOrder(t *testing.T) {
	graded, _ := Grade(twoQuestionQuiz(), []SubmittedAnswer{
		{QuestionID: "q2", SelectedOption: 0},
		{QuestionID: "q1", SelectedOption: 1},
	})

	ids := []string{graded[0].QuestionID, graded[1].QuestionID}
	if !reflect.DeepEqual(ids, []string{"q2", "q1"}) {
		t.Errorf("graded answers out of submission order: %v", ids)
	}
}

func TestGradeDeterministic(t *testing.T) {
	answers := []SubmittedAnswer{
		{QuestionID: "q1", SelectedOption: 0},
		{QuestionID: "q2", SelectedOption: 0},
	}
	first, firstScore := Grade(twoQuestionQuiz(), answers)
	second, secondScore := Grade(twoQuestionQuiz(), answers)

	if firstScore != secondScore || !reflect.DeepEqual(first, second) {
		t.Error("grading the same input twice produced different results")
	}
}

func TestGradeDefaultPointValue(t *testing.T) {
	questions := []models.Question{
		{ID: "q1", Options: []string{"a", "b"}, CorrectOption: 0}, // no points set
		{ID: "q2", Options: []string{"a", "b"}, CorrectOption: 0, Points: 5},
	}
	_, score := Grade(questions, []SubmittedAnswer{
		{QuestionID: "q1", SelectedOption: 0},
		{QuestionID: "q2", SelectedOption: 0},
	})

	if score != 6 {
		t.Errorf("expected default point value 1 to apply, got score %d", score)
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		score, total, want int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 2, 50},
		{2, 2, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds half up
	}
	for _, c := range cases {
		if got := Percentage(c.score, c.total); got != c.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", c.score, c.total, got, c.want)
		}
	}
}
