package service

import (
	"strings"
	"unicode"

	"testprep_backend/internal/model"
)

// NormalizeAnswer reduces an answer to its comparable form: surrounding
// whitespace trimmed, lower-cased, and every rune that is not an ASCII
// letter or digit removed. "Paris", "paris!" and " PARIS " all normalize to
// "paris".
func NormalizeAnswer(answer string) string {
	answer = strings.ToLower(strings.TrimSpace(answer))
	var b strings.Builder
	b.Grow(len(answer))
	for _, r := range answer {
		if r > unicode.MaxASCII {
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EvaluateAnswer grades a submitted answer against the question's
// authoritative correct-answer representation. A nil submission normalizes
// to the empty string and only matches a correct answer that is itself
// empty after normalization.
func EvaluateAnswer(q *model.AttemptQuestion, submitted *string) bool {
	var raw string
	if submitted != nil {
		raw = *submitted
	}
	return NormalizeAnswer(raw) == NormalizeAnswer(q.GradingAnswer())
}
