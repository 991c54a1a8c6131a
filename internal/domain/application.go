package domain

import (
	"fmt"
	"slices"
	"time"
)

type ApplicationStatus string

const (
	StatusApplied  ApplicationStatus = "applied"
	StatusVerified ApplicationStatus = "verified"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
)

// applicationTransitions is the review workflow. Approved and rejected are terminal.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusApplied:  {StatusVerified},
	StatusVerified: {StatusApproved, StatusRejected},
}

// CanTransitionTo reports whether next directly follows s in the review workflow.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	return slices.Contains(applicationTransitions[s], next)
}

func (s ApplicationStatus) Terminal() bool {
	return len(applicationTransitions[s]) == 0
}

// Application is a student's request to join a listing.
type Application struct {
	ID        string            `json:"id" yaml:"id"`
	StudentID string            `json:"studentId" yaml:"student_id"`
	ListingID string            `json:"listingId" yaml:"listing_id"`
	Status    ApplicationStatus `json:"status" yaml:"status"`
	CreatedAt time.Time         `json:"createdAt" yaml:"created_at"`
}

// Transition returns a with its status moved to next, or ErrIllegalTransition.
func (a Application) Transition(next ApplicationStatus) (Application, error) {
	if !a.Status.CanTransitionTo(next) {
		return a, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, a.Status, next)
	}
	a.Status = next
	return a, nil
}
