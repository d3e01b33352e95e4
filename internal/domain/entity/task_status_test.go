package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Legalidad de transiciones por estado origen.
func TestEstadosDelCiclo(t *testing.T) {
	cases := []struct {
		state      string
		canSubmit  bool
		canReview  bool
		isTerminal bool
		validState bool
	}{
		{StatusNotStarted, false, false, false, true},
		{StatusInProgress, true, false, false, true},
		{StatusPendingApproval, false, true, false, true},
		{StatusApproved, false, false, true, true},
		{StatusRejected, true, false, false, true},
		{"archived", false, false, false, false},
		{"", false, false, false, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.canSubmit, CanSubmit(tc.state), "CanSubmit(%q)", tc.state)
		assert.Equal(t, tc.canReview, CanReview(tc.state), "CanReview(%q)", tc.state)
		assert.Equal(t, tc.isTerminal, IsTerminal(tc.state), "IsTerminal(%q)", tc.state)
		assert.Equal(t, tc.validState, ValidState(tc.state), "ValidState(%q)", tc.state)
	}
}
