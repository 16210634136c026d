package service

import (
	"testing"

	"testprep_backend/internal/model"
	"testprep_backend/internal/util"
)

func TestAccessGuard(t *testing.T) {
	guard := &AccessGuard{}
	attempt := &model.TestAttempt{StudentID: 10}
	plan := &model.TestPlan{StudentID: 10, CreatorID: 20}

	t.Run("missing caller", func(t *testing.T) {
		if err := guard.RequireCaller(0); !util.IsKind(err, util.KindUnauthorized) {
			t.Errorf("expected unauthorized, got %v", err)
		}
	})

	t.Run("attempt access", func(t *testing.T) {
		tests := []struct {
			name     string
			callerID uint
			plan     *model.TestPlan
			wantErr  bool
		}{
			{"student", 10, plan, false},
			{"plan creator", 20, plan, false},
			{"stranger", 30, plan, true},
			{"creator without plan loaded", 20, nil, true},
			{"anonymous", 0, plan, true},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := guard.AttemptAccess(tt.callerID, attempt, tt.plan)
				if tt.wantErr != (err != nil) {
					t.Errorf("AttemptAccess() error = %v, wantErr %v", err, tt.wantErr)
				}
				if err != nil && !util.IsKind(err, util.KindUnauthorized) {
					t.Errorf("expected unauthorized kind, got %v", util.KindOf(err))
				}
			})
		}
	})

	t.Run("plan access", func(t *testing.T) {
		if err := guard.PlanAccess(10, plan); err != nil {
			t.Errorf("student should access plan: %v", err)
		}
		if err := guard.PlanAccess(20, plan); err != nil {
			t.Errorf("creator should access plan: %v", err)
		}
		if err := guard.PlanAccess(30, plan); !util.IsKind(err, util.KindUnauthorized) {
			t.Errorf("stranger should be rejected, got %v", err)
		}
	})

	t.Run("student access", func(t *testing.T) {
		if err := guard.StudentAccess(10, 10); err != nil {
			t.Errorf("own data should be accessible: %v", err)
		}
		if err := guard.StudentAccess(10, 11); !util.IsKind(err, util.KindUnauthorized) {
			t.Errorf("other student's data should be rejected, got %v", err)
		}
	})
}
