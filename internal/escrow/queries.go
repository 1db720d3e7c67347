package escrow

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"opencure/internal/domain"
)

func (a *Account) GoalAmount() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.goal
}

func (a *Account) TotalRaised() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalRaised
}

func (a *Account) TotalReleased() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalReleased
}

func (a *Account) TotalVotingPower() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalVotingPower
}

func (a *Account) DonorCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.donors)
}

func (a *Account) Owner() common.Address { return a.owner }

func (a *Account) Scientist() common.Address {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scientist
}

func (a *Account) Paused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.paused
}

// Status returns the lifecycle stage as of now.
func (a *Account) Status() domain.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.effectiveStatus(a.nowFn())
}

// FundingDeadline returns the campaign deadline, if one was set.
func (a *Account) FundingDeadline() (time.Time, bool) {
	if a.deadline == nil {
		return time.Time{}, false
	}
	return *a.deadline, true
}

// Balance asks the ledger how many tokens custody holds.
func (a *Account) Balance(ctx context.Context) (uint64, error) {
	return a.ledger.BalanceOf(ctx, a.custody)
}

// FundingProgress returns totalRaised/goal in basis points, capped at 100%.
func (a *Account) FundingProgress() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fundingProgress()
}

func (a *Account) fundingProgress() uint64 {
	if a.goal == 0 {
		return 0
	}
	return min(basisPoints(a.totalRaised, a.goal), domain.BasisPoints)
}

func (a *Account) IsFundingSuccessful() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fundingSucceeded()
}

// IsFundingFailed reports a lapsed deadline with the goal unmet. An owner's
// MarkAsFailed shows up in Status, not here.
func (a *Account) IsFundingFailed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deadlineFailed(a.nowFn())
}

// History returns every event recorded so far, oldest first.
func (a *Account) History() []domain.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.Event(nil), a.history...)
}

// Snapshot returns a consistent read of every scalar on the account.
func (a *Account) Snapshot() domain.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.nowFn()
	s := domain.Snapshot{
		Project:          a.project,
		Owner:            a.owner,
		Scientist:        a.scientist,
		Custody:          a.custody,
		GoalAmount:       a.goal,
		Status:           a.effectiveStatus(now),
		Paused:           a.paused,
		TotalRaised:      a.totalRaised,
		TotalReleased:    a.totalReleased,
		TotalRefunded:    a.totalRefunded,
		TotalVotingPower: a.totalVotingPower,
		DonorCount:       len(a.donors),
		MilestoneCount:   len(a.milestones),
		FundingProgress:  a.fundingProgress(),
		FundingSucceeded: a.fundingSucceeded(),
		FundingFailed:    a.deadlineFailed(now),
		ReadAt:           now,
	}
	if a.deadline != nil {
		d := *a.deadline
		s.FundingDeadline = &d
	}
	return s
}
