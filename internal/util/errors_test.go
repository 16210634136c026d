package util

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"validation", ValidationError("bad input"), KindValidation},
		{"unauthorized", UnauthorizedError("no"), KindUnauthorized},
		{"not found", NotFoundError("gone"), KindNotFound},
		{"internal", InternalError("broken"), KindInternal},
		{"wrapped", fmt.Errorf("context: %w", NotFoundError("gone")), KindNotFound},
		{"plain error", errors.New("something"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %s, want %s", got, tt.want)
			}
			if !IsKind(tt.err, tt.want) {
				t.Errorf("IsKind(%v, %s) = false", tt.err, tt.want)
			}
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	err := ValidationError("time spent cannot be negative")
	if err.Error() != "time spent cannot be negative" {
		t.Errorf("Error() = %q", err.Error())
	}
}
