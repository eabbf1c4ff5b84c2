package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscrowStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, EscrowStatusPending.CanTransitionTo(EscrowStatusFunded))
	assert.True(t, EscrowStatusFunded.CanTransitionTo(EscrowStatusReleased))
	assert.True(t, EscrowStatusFunded.CanTransitionTo(EscrowStatusRefunded))

	// Нельзя выплатить или вернуть без финансирования.
	assert.False(t, EscrowStatusPending.CanTransitionTo(EscrowStatusReleased))
	assert.False(t, EscrowStatusPending.CanTransitionTo(EscrowStatusRefunded))

	// Терминальные статусы не имеют выхода.
	for _, terminal := range []EscrowStatus{EscrowStatusReleased, EscrowStatusRefunded} {
		for _, next := range []EscrowStatus{EscrowStatusPending, EscrowStatusFunded, EscrowStatusReleased, EscrowStatusRefunded} {
			assert.False(t, terminal.CanTransitionTo(next))
		}
	}
}

func TestEscrowStatus_IsTerminal(t *testing.T) {
	assert.False(t, EscrowStatusPending.IsTerminal())
	assert.False(t, EscrowStatusFunded.IsTerminal())
	assert.True(t, EscrowStatusReleased.IsTerminal())
	assert.True(t, EscrowStatusRefunded.IsTerminal())
}

func TestProjectStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, ProjectStatusOpen.CanTransitionTo(ProjectStatusInProgress))
	assert.True(t, ProjectStatusOpen.CanTransitionTo(ProjectStatusClosed))
	assert.True(t, ProjectStatusInProgress.CanTransitionTo(ProjectStatusDelivered))
	assert.True(t, ProjectStatusInProgress.CanTransitionTo(ProjectStatusDisputed))
	assert.True(t, ProjectStatusDelivered.CanTransitionTo(ProjectStatusClosed))
	assert.True(t, ProjectStatusDisputed.CanTransitionTo(ProjectStatusInProgress))

	assert.False(t, ProjectStatusOpen.CanTransitionTo(ProjectStatusDelivered))
	assert.False(t, ProjectStatusClosed.CanTransitionTo(ProjectStatusOpen))
	assert.False(t, ProjectStatusDelivered.CanTransitionTo(ProjectStatusInProgress))
}

func TestProposalStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, ProposalStatusSent.CanTransitionTo(ProposalStatusAccepted))
	assert.True(t, ProposalStatusSent.CanTransitionTo(ProposalStatusRejected))
	assert.True(t, ProposalStatusSent.CanTransitionTo(ProposalStatusWithdrawn))

	for _, terminal := range []ProposalStatus{ProposalStatusAccepted, ProposalStatusRejected, ProposalStatusWithdrawn} {
		assert.False(t, terminal.CanTransitionTo(ProposalStatusSent))
		assert.False(t, terminal.CanTransitionTo(ProposalStatusAccepted))
	}
}

func TestDisputeStatus_Blocking(t *testing.T) {
	assert.True(t, DisputeStatusOpen.Blocking())
	assert.True(t, DisputeStatusInReview.Blocking())
	assert.False(t, DisputeStatusResolved.Blocking())
}

func TestDisputeStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, DisputeStatusOpen.CanTransitionTo(DisputeStatusInReview))
	assert.True(t, DisputeStatusOpen.CanTransitionTo(DisputeStatusResolved))
	assert.True(t, DisputeStatusInReview.CanTransitionTo(DisputeStatusResolved))

	assert.False(t, DisputeStatusResolved.CanTransitionTo(DisputeStatusOpen))
	assert.False(t, DisputeStatusInReview.CanTransitionTo(DisputeStatusOpen))
}

func TestNewProjectStatus(t *testing.T) {
	s, err := NewProjectStatus("open")
	assert.NoError(t, err)
	assert.Equal(t, ProjectStatusOpen, s)

	_, err = NewProjectStatus("archived")
	assert.Error(t, err)
}
