package escrow

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"opencure/internal/domain"
)

// VoteOnMilestone records caller's ballot on milestone id. The weight is the
// caller's cumulative donation right now; later donations do not change it.
// New ballots are refused once the campaign has failed or completed, and
// ballots already cast stay as they are.
func (a *Account) VoteOnMilestone(ctx context.Context, caller common.Address, id int, support bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.nowFn()
	m, err := a.milestoneAt(id)
	if err != nil {
		return err
	}
	if a.effectiveStatus(now).Terminal() {
		return domain.ErrVotingClosed
	}
	d, ok := a.donations[caller]
	if !ok || d.VotingPower == 0 {
		return domain.ErrNoVotingPower
	}
	if _, voted := m.votes[caller]; voted {
		return domain.ErrAlreadyVoted
	}

	weight := d.Amount
	m.votes[caller] = domain.Vote{
		MilestoneID: id,
		Voter:       caller,
		Support:     support,
		Weight:      weight,
		CastAt:      now,
	}
	m.voters = append(m.voters, caller)
	if support {
		m.VotesFor += weight
	} else {
		m.VotesAgainst += weight
	}
	a.record(ctx, domain.EventVoteCast, now, domain.VoteCastPayload{
		MilestoneID: id,
		Voter:       caller,
		Support:     support,
		Weight:      weight,
	})
	return nil
}

// IsVotePassed reports whether votes for milestone id reach the threshold
// share of total voting power. Donors who have not voted count against.
func (a *Account) IsVotePassed(id int) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, err := a.milestoneAt(id)
	if err != nil {
		return false, err
	}
	return a.votePassed(m), nil
}

// Vote returns voter's ballot on milestone id.
func (a *Account) Vote(id int, voter common.Address) (domain.Vote, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, err := a.milestoneAt(id)
	if err != nil {
		return domain.Vote{}, false, err
	}
	v, ok := m.votes[voter]
	return v, ok, nil
}

// Votes lists the ballots on milestone id in the order they were cast.
func (a *Account) Votes(id int) ([]domain.Vote, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, err := a.milestoneAt(id)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Vote, 0, len(m.voters))
	for _, voter := range m.voters {
		out = append(out, m.votes[voter])
	}
	return out, nil
}

func (a *Account) votePassed(m *milestone) bool {
	if a.totalVotingPower == 0 {
		return false
	}
	return basisPoints(m.VotesFor, a.totalVotingPower) >= a.voteThreshold
}

// basisPoints returns part*10000/whole rounded down, or 0 when whole is 0.
// The product is computed in big.Int so it cannot overflow.
func basisPoints(part, whole uint64) uint64 {
	if whole == 0 {
		return 0
	}
	n := new(big.Int).SetUint64(part)
	n.Mul(n, big.NewInt(domain.BasisPoints))
	n.Quo(n, new(big.Int).SetUint64(whole))
	if !n.IsUint64() {
		return ^uint64(0)
	}
	return n.Uint64()
}
