package model

import "testing"

func TestGradingAnswer(t *testing.T) {
	rich := AttemptQuestion{CorrectAnswer: "<p>Paris</p>", PlainAnswer: "Paris"}
	if got := rich.GradingAnswer(); got != "<p>Paris</p>" {
		t.Errorf("GradingAnswer() = %q, want rich form", got)
	}

	plain := rich
	plain.UsePlainAnswer = true
	if got := plain.GradingAnswer(); got != "Paris" {
		t.Errorf("GradingAnswer() = %q, want plain form", got)
	}
}

func TestAllAnswered(t *testing.T) {
	ans := "a"
	tests := []struct {
		name      string
		responses ResponseSet
		want      bool
	}{
		{"empty set", nil, false},
		{"open slot", ResponseSet{{QuestionID: 1, Answer: &ans}, {QuestionID: 2}}, false},
		{"all filled", ResponseSet{{QuestionID: 1, Answer: &ans}, {QuestionID: 2, Answer: &ans}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := TestAttempt{Responses: tt.responses}
			if got := a.AllAnswered(); got != tt.want {
				t.Errorf("AllAnswered() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuestionSetScan(t *testing.T) {
	raw := `[{"questionId":3,"subjectId":1,"prompt":"2+2?","correctAnswer":"4"}]`

	var fromString QuestionSet
	if err := fromString.Scan(raw); err != nil {
		t.Fatalf("Scan(string): %v", err)
	}
	var fromBytes QuestionSet
	if err := fromBytes.Scan([]byte(raw)); err != nil {
		t.Fatalf("Scan([]byte): %v", err)
	}
	for _, got := range []QuestionSet{fromString, fromBytes} {
		if len(got) != 1 || got[0].QuestionID != 3 || got[0].CorrectAnswer != "4" {
			t.Errorf("scanned set = %+v", got)
		}
	}

	var fromNil QuestionSet
	if err := fromNil.Scan(nil); err != nil || fromNil != nil {
		t.Errorf("Scan(nil) = %v, set = %v", err, fromNil)
	}
	if err := fromNil.Scan(42); err == nil {
		t.Error("Scan(int) should fail")
	}
}

func TestResponseForMissingQuestion(t *testing.T) {
	a := TestAttempt{
		Questions: QuestionSet{{QuestionID: 1}},
		Responses: ResponseSet{{QuestionID: 1}},
	}
	if a.ResponseFor(2) != nil {
		t.Error("ResponseFor(2) should be nil")
	}
	if a.QuestionFor(2) != nil {
		t.Error("QuestionFor(2) should be nil")
	}
}
