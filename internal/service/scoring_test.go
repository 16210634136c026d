package service

import (
	"testing"

	"testprep_backend/internal/model"
)

func answeredSet(answers ...string) (model.QuestionSet, model.ResponseSet) {
	questions := make(model.QuestionSet, 0, len(answers))
	responses := make(model.ResponseSet, 0, len(answers))
	for i := range answers {
		id := uint(i + 1)
		questions = append(questions, model.AttemptQuestion{
			QuestionID:    id,
			CorrectAnswer: "right",
		})
		a := answers[i]
		responses = append(responses, model.AttemptResponse{QuestionID: id, Answer: &a})
	}
	return questions, responses
}

func TestScoreAttempt(t *testing.T) {
	tests := []struct {
		name        string
		answers     []string
		wantScore   int
		wantCorrect int
	}{
		{"all correct", []string{"right", "right", "right"}, 100, 3},
		{"all wrong", []string{"wrong", "wrong"}, 0, 0},
		{"two of three rounds up", []string{"right", "right", "wrong"}, 67, 2},
		{"five of seven", []string{"right", "right", "right", "right", "right", "wrong", "wrong"}, 71, 5},
		{"one of three rounds down", []string{"right", "wrong", "wrong"}, 33, 1},
		{"zero questions", nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions, responses := answeredSet(tt.answers...)
			summary := ScoreAttempt(questions, responses)

			if summary.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", summary.Score, tt.wantScore)
			}
			if summary.CorrectAnswers != tt.wantCorrect {
				t.Errorf("CorrectAnswers = %d, want %d", summary.CorrectAnswers, tt.wantCorrect)
			}
			if summary.TotalQuestions != len(tt.answers) {
				t.Errorf("TotalQuestions = %d, want %d", summary.TotalQuestions, len(tt.answers))
			}
		})
	}
}

func TestScoreAttemptGradesInPlace(t *testing.T) {
	questions, responses := answeredSet("right", "wrong")

	ScoreAttempt(questions, responses)

	if responses[0].Correct == nil || !*responses[0].Correct {
		t.Error("first response should be graded correct")
	}
	if responses[1].Correct == nil || *responses[1].Correct {
		t.Error("second response should be graded incorrect")
	}
}

func TestScoreAttemptUnansweredSlots(t *testing.T) {
	questions, _ := answeredSet("right", "right")
	responses := model.ResponseSet{
		{QuestionID: 1},
		{QuestionID: 2},
	}
	a := "right"
	responses[0].Answer = &a

	summary := ScoreAttempt(questions, responses)

	if summary.Score != 50 {
		t.Errorf("Score = %d, want 50", summary.Score)
	}
	if responses[1].Correct == nil || *responses[1].Correct {
		t.Error("unanswered slot should grade incorrect")
	}
}
