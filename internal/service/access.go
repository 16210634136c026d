package service

import (
	"testprep_backend/internal/model"
	"testprep_backend/internal/repository"
	"testprep_backend/internal/util"
)

// AccessGuard confirms a caller is entitled to touch an attempt or a
// student's progression data. Identity and role claims come from the
// external auth layer; this is the ownership check plus an admin
// override resolved against the users table.
type AccessGuard struct {
	Users *repository.UserRepository
}

func NewAccessGuard(users *repository.UserRepository) *AccessGuard {
	return &AccessGuard{Users: users}
}

func (g *AccessGuard) RequireCaller(callerID uint) error {
	if callerID == 0 {
		return util.UnauthorizedError("caller id is required")
	}
	return nil
}

func (g *AccessGuard) isAdmin(callerID uint) bool {
	if g.Users == nil {
		return false
	}
	u, err := g.Users.FindByID(callerID)
	return err == nil && u.Role == model.Admin
}

// AttemptAccess allows the attempt's student, the plan's creator, and admins.
func (g *AccessGuard) AttemptAccess(callerID uint, attempt *model.TestAttempt, plan *model.TestPlan) error {
	if err := g.RequireCaller(callerID); err != nil {
		return err
	}
	if callerID == attempt.StudentID {
		return nil
	}
	if plan != nil && callerID == plan.CreatorID {
		return nil
	}
	if g.isAdmin(callerID) {
		return nil
	}
	return util.UnauthorizedError("caller has no access to this attempt")
}

// PlanAccess allows the plan's assigned student, its creator, and admins.
func (g *AccessGuard) PlanAccess(callerID uint, plan *model.TestPlan) error {
	if err := g.RequireCaller(callerID); err != nil {
		return err
	}
	if callerID == plan.StudentID || callerID == plan.CreatorID {
		return nil
	}
	if g.isAdmin(callerID) {
		return nil
	}
	return util.UnauthorizedError("caller has no access to this test plan")
}

// StudentAccess allows a student to touch only their own progression data;
// admins can touch anyone's.
func (g *AccessGuard) StudentAccess(callerID, studentID uint) error {
	if err := g.RequireCaller(callerID); err != nil {
		return err
	}
	if callerID != studentID && !g.isAdmin(callerID) {
		return util.UnauthorizedError("caller has no access to this student")
	}
	return nil
}
