// Package escrow implements the milestone escrow state machine: donations
// flow in through a token ledger, milestone tranches flow out to the
// beneficiary once completed and approved by donor vote, and donors can
// reclaim their contribution when funding fails.
//
// Every exported method on Account runs under the account's mutex, so a
// single Account can be shared freely between goroutines.
package escrow

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"opencure/internal/domain"
)

const (
	// DefaultVoteThreshold is the share of total voting power, in basis
	// points, that must back a milestone before its funds can move.
	DefaultVoteThreshold uint64 = 5100
	// DefaultMinDonation is one whole token at six decimals.
	DefaultMinDonation uint64 = 1_000_000
)

// Params configures a new Account.
type Params struct {
	Project   domain.Project
	Ledger    domain.TokenLedger
	Custody   common.Address
	Owner     common.Address
	Scientist common.Address

	GoalAmount uint64
	// FundingDuration is measured from construction. Zero means the
	// campaign never expires.
	FundingDuration time.Duration

	// MinDonation defaults to DefaultMinDonation when zero.
	MinDonation uint64
	// VoteThreshold defaults to DefaultVoteThreshold when zero.
	VoteThreshold uint64
	// DisableVoteGate releases completed milestones without a donor vote.
	DisableVoteGate bool

	Sinks  []domain.EventSink
	Logger *zerolog.Logger
	Now    func() time.Time
}

type milestone struct {
	domain.Milestone
	votes  map[common.Address]domain.Vote
	voters []common.Address
}

// Account is one escrow: a goal, its donors, and its milestones.
type Account struct {
	mu sync.Mutex

	project       domain.Project
	ledger        domain.TokenLedger
	custody       common.Address
	owner         common.Address
	scientist     common.Address
	goal          uint64
	deadline      *time.Time
	minDonation   uint64
	voteThreshold uint64
	voteGate      bool

	status domain.Status
	paused bool

	totalRaised      uint64
	totalReleased    uint64
	totalRefunded    uint64
	totalVotingPower uint64

	donations map[common.Address]*domain.Donation
	donors    []common.Address

	milestones []*milestone

	history []domain.Event
	sinks   []domain.EventSink
	logger  zerolog.Logger
	nowFn   func() time.Time
}

// New validates p and returns an Active account. Nothing is allocated when
// validation fails.
func New(p Params) (*Account, error) {
	if p.Ledger == nil {
		return nil, domain.ErrInvalidLedger
	}
	if isZero(p.Custody) {
		return nil, domain.ErrInvalidAddress
	}
	if isZero(p.Owner) {
		return nil, domain.ErrInvalidOwner
	}
	if isZero(p.Scientist) {
		return nil, domain.ErrInvalidScientist
	}
	if p.GoalAmount == 0 {
		return nil, domain.ErrInvalidGoal
	}
	if p.FundingDuration < 0 {
		return nil, domain.ErrInvalidDuration
	}
	threshold := p.VoteThreshold
	if threshold == 0 {
		threshold = DefaultVoteThreshold
	}
	if threshold > domain.BasisPoints {
		return nil, domain.ErrInvalidThreshold
	}
	minDonation := p.MinDonation
	if minDonation == 0 {
		minDonation = DefaultMinDonation
	}
	nowFn := p.Now
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	logger := zerolog.Nop()
	if p.Logger != nil {
		logger = *p.Logger
	}

	a := &Account{
		project:       p.Project,
		ledger:        p.Ledger,
		custody:       p.Custody,
		owner:         p.Owner,
		scientist:     p.Scientist,
		goal:          p.GoalAmount,
		minDonation:   minDonation,
		voteThreshold: threshold,
		voteGate:      !p.DisableVoteGate,
		status:        domain.StatusActive,
		donations:     make(map[common.Address]*domain.Donation),
		sinks:         append([]domain.EventSink(nil), p.Sinks...),
		nowFn:         nowFn,
	}
	if a.project.ID == "" {
		a.project.ID = uuid.NewString()
	}
	now := nowFn()
	if a.project.CreatedAt.IsZero() {
		a.project.CreatedAt = now
	}
	if p.FundingDuration > 0 {
		deadline := now.Add(p.FundingDuration)
		a.deadline = &deadline
	}
	a.logger = logger.With().Str("project_id", a.project.ID).Logger()
	return a, nil
}

// ID returns the project id the account was created for.
func (a *Account) ID() string { return a.project.ID }

// Custody returns the ledger address that holds the account's tokens. Donors
// approve this address before donating.
func (a *Account) Custody() common.Address { return a.custody }

// transition moves the stored status, enforcing the table in domain.
func (a *Account) transition(to domain.Status) error {
	if a.status == to {
		return nil
	}
	if !domain.CanTransition(a.status, to) {
		return domain.ErrInvalidTransition
	}
	a.logger.Debug().Str("from", string(a.status)).Str("to", string(to)).Msg("escrow: status transition")
	a.status = to
	return nil
}

// effectiveStatus folds the deadline into the stored status. A lapsed
// campaign that missed its goal reads as Failed without being written.
func (a *Account) effectiveStatus(now time.Time) domain.Status {
	if !a.status.Terminal() && a.deadlineFailed(now) {
		return domain.StatusFailed
	}
	return a.status
}

// record appends an event to the history and forwards it to every sink.
// Sink failures are logged; the state change they describe has already
// happened.
func (a *Account) record(ctx context.Context, typ domain.EventType, now time.Time, payload any) {
	ev := domain.Event{
		ID:         uuid.NewString(),
		ProjectID:  a.project.ID,
		Sequence:   len(a.history),
		Type:       typ,
		OccurredAt: now,
		Payload:    payload,
	}
	a.history = append(a.history, ev)
	for _, sink := range a.sinks {
		if err := sink.Publish(ctx, ev); err != nil {
			a.logger.Warn().Err(err).Str("event", string(typ)).Msg("escrow: event sink failed")
		}
	}
}

func isZero(addr common.Address) bool {
	return addr == (common.Address{})
}
