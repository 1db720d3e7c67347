package escrow

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"opencure/internal/domain"
)

// AddMilestone appends a tranche and returns its id. Duration is stored as
// metadata only; nothing enforces it.
func (a *Account) AddMilestone(ctx context.Context, caller common.Address, description string, amount uint64, duration time.Duration) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.onlyOwner(caller); err != nil {
		return 0, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return 0, domain.ErrDescriptionMissing
	}
	if amount == 0 {
		return 0, domain.ErrInvalidAmount
	}
	if duration < 0 {
		return 0, domain.ErrInvalidDuration
	}
	now := a.nowFn()
	if a.effectiveStatus(now).Terminal() {
		return 0, domain.ErrProjectClosed
	}

	id := len(a.milestones)
	a.milestones = append(a.milestones, &milestone{
		Milestone: domain.Milestone{
			ID:          id,
			Description: description,
			Amount:      amount,
			Duration:    duration,
		},
		votes: make(map[common.Address]domain.Vote),
	})
	a.record(ctx, domain.EventMilestoneAdded, now, domain.MilestoneAddedPayload{
		MilestoneID: id,
		Description: description,
		Amount:      amount,
	})
	return id, nil
}

// CompleteMilestone marks a milestone delivered. Completion is one-way.
func (a *Account) CompleteMilestone(ctx context.Context, caller common.Address, id int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.onlyOwner(caller); err != nil {
		return err
	}
	m, err := a.milestoneAt(id)
	if err != nil {
		return err
	}
	if m.Completed {
		return domain.ErrAlreadyCompleted
	}
	m.Completed = true
	a.record(ctx, domain.EventMilestoneCompleted, a.nowFn(), domain.MilestoneCompletedPayload{
		MilestoneID: id,
		Description: m.Description,
	})
	return nil
}

// Milestone returns a copy of milestone id.
func (a *Account) Milestone(id int) (domain.Milestone, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, err := a.milestoneAt(id)
	if err != nil {
		return domain.Milestone{}, err
	}
	return m.view(), nil
}

// Milestones returns every milestone in id order.
func (a *Account) Milestones() []domain.Milestone {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.Milestone, 0, len(a.milestones))
	for _, m := range a.milestones {
		out = append(out, m.view())
	}
	return out
}

// MilestoneCount returns the number of milestones added so far.
func (a *Account) MilestoneCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.milestones)
}

func (a *Account) milestoneAt(id int) (*milestone, error) {
	if id < 0 || id >= len(a.milestones) {
		return nil, domain.ErrInvalidMilestone
	}
	return a.milestones[id], nil
}

func (m *milestone) view() domain.Milestone {
	out := m.Milestone
	out.VoterCount = len(m.voters)
	return out
}

func (a *Account) allReleased() bool {
	if len(a.milestones) == 0 {
		return false
	}
	for _, m := range a.milestones {
		if !m.FundsReleased {
			return false
		}
	}
	return true
}
