package escrow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"opencure/internal/domain"
)

// Defaults are applied to every project a Registry creates.
type Defaults struct {
	MinDonation     uint64
	VoteThreshold   uint64
	DisableVoteGate bool
}

// RegistryOptions wires the shared collaborators of all projects.
type RegistryOptions struct {
	Ledger  domain.TokenLedger
	Factory common.Address
	Sinks   []domain.EventSink
	Logger  zerolog.Logger
	Now     func() time.Time
	Defaults
}

// CreateProjectInput describes a new campaign.
type CreateProjectInput struct {
	Name            string
	Description     string
	Category        string
	Scientist       common.Address
	GoalAmount      uint64
	FundingDuration time.Duration
}

// Registry holds every escrow account served by one process. Each project
// gets its own custody address, derived from the factory address and the
// project id, so registries sharing one ledger never hand out the same one.
type Registry struct {
	mu       sync.RWMutex
	opts     RegistryOptions
	accounts map[string]*Account
	order    []string
}

// NewRegistry returns an empty registry.
func NewRegistry(opts RegistryOptions) (*Registry, error) {
	if opts.Ledger == nil {
		return nil, domain.ErrInvalidLedger
	}
	if isZero(opts.Factory) {
		return nil, domain.ErrInvalidAddress
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Registry{opts: opts, accounts: make(map[string]*Account)}, nil
}

// CreateProject opens a campaign owned by owner.
func (r *Registry) CreateProject(ctx context.Context, owner common.Address, in CreateProjectInput) (*Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	acct, err := New(Params{
		Project: domain.Project{
			ID:          id,
			Name:        name,
			Description: strings.TrimSpace(in.Description),
			Category:    strings.TrimSpace(in.Category),
		},
		Ledger:          r.opts.Ledger,
		Custody:         custodyAddress(r.opts.Factory, id),
		Owner:           owner,
		Scientist:       in.Scientist,
		GoalAmount:      in.GoalAmount,
		FundingDuration: in.FundingDuration,
		MinDonation:     r.opts.MinDonation,
		VoteThreshold:   r.opts.VoteThreshold,
		DisableVoteGate: r.opts.DisableVoteGate,
		Sinks:           r.opts.Sinks,
		Logger:          &r.opts.Logger,
		Now:             r.opts.Now,
	})
	if err != nil {
		return nil, err
	}
	r.accounts[acct.ID()] = acct
	r.order = append(r.order, acct.ID())
	r.opts.Logger.Info().
		Str("project_id", acct.ID()).
		Str("owner", owner.Hex()).
		Str("custody", acct.Custody().Hex()).
		Uint64("goal", in.GoalAmount).
		Msg("escrow: project created")
	return acct, nil
}

// Project looks up an account by id.
func (r *Registry) Project(id string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acct, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return acct, nil
}

// Projects lists accounts in creation order.
func (r *Registry) Projects() []*Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Account, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.accounts[id])
	}
	return out
}

// custodyAddress is the last 20 bytes of keccak256(factory || projectID).
func custodyAddress(factory common.Address, projectID string) common.Address {
	return common.BytesToAddress(crypto.Keccak256(factory.Bytes(), []byte(projectID))[12:])
}
