// Package token provides the fungible token ledgers the escrow holds custody
// on: an in-memory ledger for development and tests, and a Postgres-backed
// ledger for deployments that need balances to survive restarts.
package token

import (
	"context"
	"math"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"opencure/internal/domain"
)

// Op names a ledger operation for fault injection.
type Op string

const (
	OpTransfer     Op = "transfer"
	OpTransferFrom Op = "transferFrom"
	OpBalanceOf    Op = "balanceOf"
)

type allowanceKey struct {
	owner   common.Address
	spender common.Address
}

// Memory is an ERC-20 style ledger kept in process memory.
type Memory struct {
	mu         sync.Mutex
	balances   map[common.Address]uint64
	allowances map[allowanceKey]uint64
	supply     uint64
	faults     map[Op][]error
}

func NewMemory() *Memory {
	return &Memory{
		balances:   make(map[common.Address]uint64),
		allowances: make(map[allowanceKey]uint64),
		faults:     make(map[Op][]error),
	}
}

// FailNext queues err to be returned by the next call of op instead of
// touching balances.
func (m *Memory) FailNext(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults[op] = append(m.faults[op], err)
}

func (m *Memory) takeFault(op Op) error {
	queue := m.faults[op]
	if len(queue) == 0 {
		return nil
	}
	m.faults[op] = queue[1:]
	return queue[0]
}

// Mint credits amount to addr out of thin air.
func (m *Memory) Mint(_ context.Context, to common.Address, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if amount == 0 {
		return domain.ErrInvalidAmount
	}
	if m.supply > math.MaxUint64-amount {
		return domain.ErrAmountOverflow
	}
	m.supply += amount
	m.balances[to] += amount
	return nil
}

// Approve lets spender move up to amount of owner's tokens, replacing any
// previous allowance.
func (m *Memory) Approve(_ context.Context, owner, spender common.Address, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowances[allowanceKey{owner, spender}] = amount
	return nil
}

func (m *Memory) Allowance(_ context.Context, owner, spender common.Address) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allowances[allowanceKey{owner, spender}], nil
}

func (m *Memory) BalanceOf(_ context.Context, addr common.Address) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(OpBalanceOf); err != nil {
		return 0, err
	}
	return m.balances[addr], nil
}

func (m *Memory) Transfer(_ context.Context, from, to common.Address, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(OpTransfer); err != nil {
		return err
	}
	return m.move(from, to, amount)
}

func (m *Memory) TransferFrom(_ context.Context, spender, from, to common.Address, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(OpTransferFrom); err != nil {
		return err
	}
	key := allowanceKey{from, spender}
	if m.allowances[key] < amount {
		return domain.ErrInsufficientAllowance
	}
	if err := m.move(from, to, amount); err != nil {
		return err
	}
	m.allowances[key] -= amount
	return nil
}

func (m *Memory) move(from, to common.Address, amount uint64) error {
	if amount == 0 {
		return domain.ErrInvalidAmount
	}
	if m.balances[from] < amount {
		return domain.ErrInsufficientBalance
	}
	m.balances[from] -= amount
	m.balances[to] += amount
	return nil
}
