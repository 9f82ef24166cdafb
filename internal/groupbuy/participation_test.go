package groupbuy

import (
	"testing"

	"commerce-console/internal/errs"
	"commerce-console/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func gb(status models.Status, participants, minParticipants int) *models.GroupBuy {
	return &models.GroupBuy{
		ID:              7,
		ProductID:       1,
		Discount:        decimal.NewFromInt(20),
		MinParticipants: minParticipants,
		Participants:    participants,
		Status:          status,
	}
}

func TestCheckJoinActive(t *testing.T) {
	assert.NoError(t, CheckJoin(gb(models.StatusActive, 0, 5)))
}

func TestCheckJoinActivePastThreshold(t *testing.T) {
	// min_participants is not a cap; an active group buy stays joinable
	// after the threshold is met.
	assert.NoError(t, CheckJoin(gb(models.StatusActive, 12, 5)))
}

func TestCheckJoinCompleted(t *testing.T) {
	err := CheckJoin(gb(models.StatusCompleted, 5, 5))
	assert.Error(t, err)
	assert.True(t, errs.IsInvalidState(err))
	assert.Contains(t, err.Error(), "completed")
}

func TestCheckJoinUnknownStatus(t *testing.T) {
	err := CheckJoin(gb(models.StatusUnknown, 2, 5))
	assert.Error(t, err)
	assert.True(t, errs.IsInvalidState(err))
	assert.Contains(t, err.Error(), "refresh")
}

func TestCheckJoinNil(t *testing.T) {
	err := CheckJoin(nil)
	assert.True(t, errs.IsValidation(err))
}
