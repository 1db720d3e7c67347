package escrow

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"opencure/internal/domain"
)

// EmergencyPause halts new donations. Milestones, votes, releases and
// refunds keep working so funds can still leave custody.
func (a *Account) EmergencyPause(ctx context.Context, caller common.Address) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.onlyOwner(caller); err != nil {
		return err
	}
	if a.paused {
		return domain.ErrPaused
	}
	if a.status == domain.StatusActive {
		if err := a.transition(domain.StatusPaused); err != nil {
			return err
		}
	}
	a.paused = true
	a.record(ctx, domain.EventEmergencyPause, a.nowFn(), domain.EmptyPayload{})
	return nil
}

// EmergencyUnpause reopens donations.
func (a *Account) EmergencyUnpause(ctx context.Context, caller common.Address) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.onlyOwner(caller); err != nil {
		return err
	}
	if !a.paused {
		return domain.ErrNotPaused
	}
	if a.status == domain.StatusPaused {
		if err := a.transition(domain.StatusActive); err != nil {
			return err
		}
	}
	a.paused = false
	a.record(ctx, domain.EventEmergencyUnpause, a.nowFn(), domain.EmptyPayload{})
	return nil
}

// UpdateScientist changes the beneficiary of future releases.
func (a *Account) UpdateScientist(ctx context.Context, caller, next common.Address) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.onlyOwner(caller); err != nil {
		return err
	}
	if isZero(next) {
		return domain.ErrInvalidAddress
	}
	prev := a.scientist
	a.scientist = next
	a.record(ctx, domain.EventScientistUpdated, a.nowFn(), domain.ScientistUpdatedPayload{Old: prev, New: next})
	return nil
}
