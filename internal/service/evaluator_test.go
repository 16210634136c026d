package service

import (
	"testing"

	"testprep_backend/internal/model"
)

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase unchanged", "paris", "paris"},
		{"mixed case", "PaRiS", "paris"},
		{"surrounding whitespace", "  paris  ", "paris"},
		{"punctuation stripped", "paris!", "paris"},
		{"interior punctuation", "it's-a test.", "itsatest"},
		{"digits kept", "42", "42"},
		{"non ascii dropped", "café", "caf"},
		{"empty", "", ""},
		{"only punctuation", "?!.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAnswer(tt.input); got != tt.want {
				t.Errorf("NormalizeAnswer(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEvaluateAnswer(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	rich := &model.AttemptQuestion{QuestionID: 1, CorrectAnswer: "Paris"}
	plain := &model.AttemptQuestion{
		QuestionID:     2,
		CorrectAnswer:  "<p>Paris</p>",
		PlainAnswer:    "Paris",
		UsePlainAnswer: true,
	}
	emptyAnswer := &model.AttemptQuestion{QuestionID: 3, CorrectAnswer: "?!"}

	tests := []struct {
		name      string
		question  *model.AttemptQuestion
		submitted *string
		want      bool
	}{
		{"exact match", rich, strPtr("Paris"), true},
		{"case insensitive", rich, strPtr("PARIS"), true},
		{"punctuation insensitive", rich, strPtr("paris!"), true},
		{"whitespace insensitive", rich, strPtr("  paris "), true},
		{"wrong answer", rich, strPtr("London"), false},
		{"nil submission", rich, nil, false},
		{"plain representation preferred", plain, strPtr("paris"), true},
		{"rich form not matched when plain is set", plain, strPtr("<p>Paris</p>"), false},
		{"nil matches empty normalized answer", emptyAnswer, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateAnswer(tt.question, tt.submitted); got != tt.want {
				t.Errorf("EvaluateAnswer() = %v, want %v", got, tt.want)
			}
		})
	}
}
