package service

import (
	"math"

	"testprep_backend/internal/model"
)

// ScoreSummary aggregates per-question correctness for an attempt.
type ScoreSummary struct {
	Score          int `json:"score"`
	TotalQuestions int `json:"totalQuestions"`
	CorrectAnswers int `json:"correctAnswers"`
}

// ScoreAttempt recomputes correctness for every response slot against the
// frozen question set and derives score = round(100 * correct / total). A
// zero-question attempt scores 0. The responses slice is updated in place
// so the graded flags persist with the attempt.
func ScoreAttempt(questions model.QuestionSet, responses model.ResponseSet) ScoreSummary {
	summary := ScoreSummary{TotalQuestions: len(questions)}

	byID := make(map[uint]*model.AttemptQuestion, len(questions))
	for i := range questions {
		byID[questions[i].QuestionID] = &questions[i]
	}

	for i := range responses {
		q, ok := byID[responses[i].QuestionID]
		if !ok {
			continue
		}
		correct := EvaluateAnswer(q, responses[i].Answer)
		responses[i].Correct = &correct
		if correct {
			summary.CorrectAnswers++
		}
	}

	if summary.TotalQuestions > 0 {
		summary.Score = int(math.Round(100 * float64(summary.CorrectAnswers) / float64(summary.TotalQuestions)))
	}
	return summary
}
