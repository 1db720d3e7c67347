package domain

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// TokenLedger is the fungible token the escrow holds custody of. The escrow
// only calls it; implementations live in internal/token.
type TokenLedger interface {
	TransferFrom(ctx context.Context, spender, from, to common.Address, amount uint64) error
	Transfer(ctx context.Context, from, to common.Address, amount uint64) error
	BalanceOf(ctx context.Context, addr common.Address) (uint64, error)
}

// EventSink receives escrow events after the operation that produced them
// has committed.
type EventSink interface {
	Publish(ctx context.Context, event Event) error
}

// EventJournal persists events and lists them back per project.
type EventJournal interface {
	EventSink
	ListByProject(ctx context.Context, projectID string, limit int) ([]JournalEntry, error)
}

// JournalEntry is a persisted event with its payload kept as raw JSON.
type JournalEntry struct {
	ID         string
	ProjectID  string
	Sequence   int
	Type       EventType
	Payload    []byte
	OccurredAt time.Time
}
