package token

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"opencure/internal/domain"
)

// Ledger is the full token surface the API exposes: the transfer operations
// the escrow consumes plus approvals and the development faucet.
type Ledger interface {
	domain.TokenLedger
	Approve(ctx context.Context, owner, spender common.Address, amount uint64) error
	Allowance(ctx context.Context, owner, spender common.Address) (uint64, error)
	Mint(ctx context.Context, to common.Address, amount uint64) error
}

var (
	_ Ledger = (*Memory)(nil)
	_ Ledger = (*Postgres)(nil)
)
