// Package groupbuy holds the client-side participation rules for group
// buys. Transitions are server-driven; the checks here are advisory and run
// before a join request is issued.
package groupbuy

import (
	"fmt"

	"commerce-console/internal/errs"
	"commerce-console/internal/models"
)

// CheckJoin decides whether a join request may be sent for gb. Active group
// buys are always joinable, even past the minimum participant threshold;
// the minimum is a display signal, not a cap. Completed group buys are
// rejected locally, and a status that failed to decode is rejected until a
// refresh delivers a recognizable one.
func CheckJoin(gb *models.GroupBuy) error {
	if gb == nil {
		return errs.Validation("groupbuy_id", "group buy not found")
	}

	switch gb.Status {
	case models.StatusActive:
		return nil
	case models.StatusCompleted:
		return &errs.InvalidStateError{
			Message: fmt.Sprintf("group buy %d is completed and cannot be joined", gb.ID),
		}
	default:
		return &errs.InvalidStateError{
			Message: fmt.Sprintf("group buy %d has an unrecognized status; refresh before joining", gb.ID),
		}
	}
}
