package escrow

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"opencure/internal/domain"
)

// ClaimRefund returns caller's whole contribution. It is available once the
// campaign has failed, by deadline or by MarkAsFailed, and never once the
// goal was reached.
func (a *Account) ClaimRefund(ctx context.Context, caller common.Address) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.nowFn()
	if a.fundingSucceeded() {
		return 0, domain.ErrCannotRefund
	}
	if !a.refundable(now) {
		return 0, domain.ErrRefundNotAllowed
	}
	d, ok := a.donations[caller]
	if !ok || d.Amount == 0 {
		return 0, domain.ErrNoDonation
	}
	if d.Refunded {
		return 0, domain.ErrAlreadyRefunded
	}

	amount := d.Amount
	if err := a.ledger.Transfer(ctx, a.custody, caller, amount); err != nil {
		return 0, transferError(err)
	}

	d.Refunded = true
	a.totalRefunded += amount
	a.logger.Info().Str("donor", caller.Hex()).Uint64("amount", amount).Msg("escrow: refund issued")
	a.record(ctx, domain.EventRefundIssued, now, domain.RefundIssuedPayload{
		Donor:  caller,
		Amount: amount,
	})
	return amount, nil
}

// MarkAsFailed lets the owner fail the campaign irrespective of its
// deadline. Refunds still stay closed if the goal was reached.
func (a *Account) MarkAsFailed(ctx context.Context, caller common.Address) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.onlyOwner(caller); err != nil {
		return err
	}
	if a.status == domain.StatusFailed {
		return domain.ErrAlreadyFailed
	}
	if err := a.transition(domain.StatusFailed); err != nil {
		return err
	}
	now := a.nowFn()
	a.logger.Warn().Uint64("total_raised", a.totalRaised).Msg("escrow: project marked as failed")
	a.record(ctx, domain.EventProjectFailed, now, domain.ProjectFailedPayload{TotalRaised: a.totalRaised})
	return nil
}

// refundable reports whether donors may currently reclaim funds.
func (a *Account) refundable(now time.Time) bool {
	if a.fundingSucceeded() {
		return false
	}
	return a.status == domain.StatusFailed || a.deadlineFailed(now)
}
