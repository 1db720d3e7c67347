package escrow

import (
	"context"
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"opencure/internal/domain"
)

// Donate pulls amount from caller into custody. The caller must have
// approved the account's custody address on the ledger beforehand. Totals
// only change once the ledger accepts the transfer.
func (a *Account) Donate(ctx context.Context, caller common.Address, amount uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.nowFn()
	if isZero(caller) {
		return domain.ErrUnauthorized
	}
	if amount == 0 {
		return domain.ErrInvalidAmount
	}
	if amount < a.minDonation {
		return domain.ErrAmountTooSmall
	}
	if a.paused {
		return domain.ErrPaused
	}
	if a.deadline != nil && !now.Before(*a.deadline) {
		return domain.ErrFundingEnded
	}
	switch a.status {
	case domain.StatusFailed:
		return domain.ErrProjectFailed
	case domain.StatusCompleted:
		return domain.ErrProjectClosed
	}
	if a.totalRaised > math.MaxUint64-amount {
		return domain.ErrAmountOverflow
	}

	if err := a.ledger.TransferFrom(ctx, a.custody, caller, a.custody, amount); err != nil {
		return transferError(err)
	}

	d, ok := a.donations[caller]
	if !ok {
		d = &domain.Donation{Donor: caller, FirstAt: now}
		a.donations[caller] = d
		a.donors = append(a.donors, caller)
	}
	d.Amount += amount
	d.VotingPower += amount
	a.totalRaised += amount
	a.totalVotingPower += amount

	a.logger.Info().Str("donor", caller.Hex()).Uint64("amount", amount).Uint64("total_raised", a.totalRaised).Msg("escrow: donation received")
	a.record(ctx, domain.EventDonationReceived, now, domain.DonationReceivedPayload{
		Donor:     caller,
		Amount:    amount,
		Timestamp: now.Unix(),
	})
	return nil
}

// Donation returns the cumulative contribution of donor.
func (a *Account) Donation(donor common.Address) (domain.Donation, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.donations[donor]
	if !ok {
		return domain.Donation{Donor: donor}, false
	}
	return *d, true
}

// Donations lists donors in the order of their first contribution.
func (a *Account) Donations() []domain.Donation {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.Donation, 0, len(a.donors))
	for _, addr := range a.donors {
		out = append(out, *a.donations[addr])
	}
	return out
}

// VotingPower returns the weight a donor's next vote would carry.
func (a *Account) VotingPower(donor common.Address) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if d, ok := a.donations[donor]; ok {
		return d.VotingPower
	}
	return 0
}

func (a *Account) fundingSucceeded() bool {
	return a.totalRaised >= a.goal
}

func (a *Account) deadlineFailed(now time.Time) bool {
	return a.deadline != nil && now.After(*a.deadline) && !a.fundingSucceeded()
}
