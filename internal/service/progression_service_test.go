package service

import (
	"testing"
	"time"

	"testprep_backend/internal/model"
	"testprep_backend/internal/util"
)

func fixedThreshold(xp int) func(level int) (int, error) {
	return func(level int) (int, error) { return xp, nil }
}

func TestApplyXP(t *testing.T) {
	t.Run("rejects non-positive amounts", func(t *testing.T) {
		for _, amount := range []int{0, -50} {
			p := &model.StudentProgress{Level: 1, NextLevelXP: 1000}
			if _, err := applyXP(p, amount, fixedThreshold(1500)); !util.IsKind(err, util.KindValidation) {
				t.Errorf("applyXP(%d) should be rejected, got %v", amount, err)
			}
		}
	})

	t.Run("below threshold accumulates", func(t *testing.T) {
		p := &model.StudentProgress{Level: 1, CurrentXP: 200, NextLevelXP: 1000}
		leveled, err := applyXP(p, 300, fixedThreshold(1500))
		if err != nil {
			t.Fatalf("applyXP: %v", err)
		}
		if leveled {
			t.Error("should not level up below the threshold")
		}
		if p.Level != 1 || p.CurrentXP != 500 {
			t.Errorf("got level=%d xp=%d, want level=1 xp=500", p.Level, p.CurrentXP)
		}
		if p.Points != 300 {
			t.Errorf("Points = %d, want 300", p.Points)
		}
	})

	t.Run("single level up carries surplus", func(t *testing.T) {
		p := &model.StudentProgress{Level: 1, CurrentXP: 900, NextLevelXP: 1000}
		leveled, err := applyXP(p, 400, fixedThreshold(1500))
		if err != nil {
			t.Fatalf("applyXP: %v", err)
		}
		if !leveled {
			t.Error("should level up at the threshold")
		}
		if p.Level != 2 || p.CurrentXP != 300 || p.NextLevelXP != 1500 {
			t.Errorf("got level=%d xp=%d next=%d, want level=2 xp=300 next=1500", p.Level, p.CurrentXP, p.NextLevelXP)
		}
	})

	t.Run("huge award advances one level only", func(t *testing.T) {
		p := &model.StudentProgress{Level: 1, NextLevelXP: 1000}
		leveled, err := applyXP(p, 5000, fixedThreshold(1500))
		if err != nil {
			t.Fatalf("applyXP: %v", err)
		}
		if !leveled {
			t.Error("should level up")
		}
		if p.Level != 2 {
			t.Errorf("Level = %d, want 2; surplus must stay banked", p.Level)
		}
		if p.CurrentXP != 4000 {
			t.Errorf("CurrentXP = %d, want 4000", p.CurrentXP)
		}
	})
}

func TestAdvanceStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	day := func(offset int) *time.Time {
		d := time.Date(2026, 3, 10+offset, 9, 0, 0, 0, time.UTC)
		return &d
	}

	tests := []struct {
		name         string
		last         *time.Time
		streak       int
		wantStreak   int
		wantAdvanced bool
	}{
		{"first activity", nil, 0, 1, true},
		{"previous day advances", day(-1), 3, 4, true},
		{"same day unchanged", day(0), 3, 3, false},
		{"two day gap keeps count", day(-2), 3, 3, false},
		{"long gap keeps count", day(-30), 7, 7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &model.StudentProgress{StreakDays: tt.streak, LastActivity: tt.last}
			advanced := advanceStreak(p, now)

			if advanced != tt.wantAdvanced {
				t.Errorf("advanced = %v, want %v", advanced, tt.wantAdvanced)
			}
			if p.StreakDays != tt.wantStreak {
				t.Errorf("StreakDays = %d, want %d", p.StreakDays, tt.wantStreak)
			}
			wantDay := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
			if p.LastActivity == nil || !p.LastActivity.Equal(wantDay) {
				t.Errorf("LastActivity = %v, want %v", p.LastActivity, wantDay)
			}
		})
	}
}

func TestApplyMasteryAnswer(t *testing.T) {
	tests := []struct {
		name      string
		attempted int
		correct   int
		answer    bool
		wantLevel int
	}{
		{"first correct answer", 0, 0, true, 5},
		{"first wrong answer", 0, 0, false, 0},
		{"two of five", 4, 2, false, 2},
		{"four of five", 4, 4, false, 4},
		{"perfect record stays clamped", 9, 9, true, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &model.SubjectMastery{Attempted: tt.attempted, Correct: tt.correct}
			m.Level = m.ComputeLevel()
			before := m.Level

			old, newLevel := applyMasteryAnswer(m, tt.answer)

			if old != before {
				t.Errorf("old level = %d, want %d", old, before)
			}
			if newLevel != tt.wantLevel {
				t.Errorf("new level = %d, want %d", newLevel, tt.wantLevel)
			}
			if m.Level != newLevel {
				t.Errorf("cached level %d out of step with returned level %d", m.Level, newLevel)
			}
			wantAttempted := tt.attempted + 1
			if m.Attempted != wantAttempted {
				t.Errorf("Attempted = %d, want %d", m.Attempted, wantAttempted)
			}
		})
	}
}

// Completing a three-question test with two correct answers scores 67 and
// awards 670 XP; the derivation has to agree between scoring and the
// completion award.
func TestCompletionXPDerivation(t *testing.T) {
	questions, responses := answeredSet("right", "right", "wrong")
	summary := ScoreAttempt(questions, responses)

	if summary.Score != 67 {
		t.Fatalf("Score = %d, want 67", summary.Score)
	}
	xp := summary.Score * 10
	if xp != 670 {
		t.Fatalf("completion XP = %d, want 670", xp)
	}

	p := &model.StudentProgress{Level: 1, NextLevelXP: 1000}
	leveled, err := applyXP(p, xp, fixedThreshold(1500))
	if err != nil {
		t.Fatalf("applyXP: %v", err)
	}
	if leveled || p.CurrentXP != 670 || p.Points != 670 {
		t.Errorf("got leveled=%v xp=%d points=%d, want no level-up with 670 banked", leveled, p.CurrentXP, p.Points)
	}
}
