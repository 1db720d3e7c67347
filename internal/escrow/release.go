package escrow

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"opencure/internal/domain"
)

// ReleaseFunds pays milestone id to the current beneficiary. A milestone
// pays out at most once; repeat calls fail with ErrAlreadyReleased.
func (a *Account) ReleaseFunds(ctx context.Context, caller common.Address, id int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.onlyOwner(caller); err != nil {
		return err
	}
	m, err := a.milestoneAt(id)
	if err != nil {
		return err
	}
	if !m.Completed {
		return domain.ErrNotCompleted
	}
	if m.FundsReleased {
		return domain.ErrAlreadyReleased
	}
	if a.voteGate && !a.votePassed(m) {
		return domain.ErrVoteNotPassed
	}
	now := a.nowFn()
	if a.refundable(now) {
		return domain.ErrProjectFailed
	}
	// Only donated funds still held for this project may leave custody.
	if m.Amount > a.totalRaised-a.totalReleased-a.totalRefunded {
		return domain.ErrInsufficientBalance
	}
	balance, err := a.ledger.BalanceOf(ctx, a.custody)
	if err != nil {
		return transferError(err)
	}
	if balance < m.Amount {
		return domain.ErrInsufficientBalance
	}

	if err := a.ledger.Transfer(ctx, a.custody, a.scientist, m.Amount); err != nil {
		return transferError(err)
	}

	m.FundsReleased = true
	a.totalReleased += m.Amount
	a.logger.Info().Int("milestone_id", id).Str("scientist", a.scientist.Hex()).Uint64("amount", m.Amount).Msg("escrow: funds released")
	a.record(ctx, domain.EventFundsReleased, now, domain.FundsReleasedPayload{
		MilestoneID: id,
		Scientist:   a.scientist,
		Amount:      m.Amount,
	})
	if a.allReleased() && !a.status.Terminal() {
		if err := a.transition(domain.StatusCompleted); err != nil {
			a.logger.Error().Err(err).Msg("escrow: complete after final release")
		}
	}
	return nil
}
