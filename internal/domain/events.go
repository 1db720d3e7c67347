package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventType names an escrow event.
type EventType string

const (
	EventDonationReceived   EventType = "DonationReceived"
	EventMilestoneAdded     EventType = "MilestoneAdded"
	EventMilestoneCompleted EventType = "MilestoneCompleted"
	EventVoteCast           EventType = "VoteCast"
	EventFundsReleased      EventType = "FundsReleased"
	EventRefundIssued       EventType = "RefundIssued"
	EventScientistUpdated   EventType = "ScientistUpdated"
	EventEmergencyPause     EventType = "EmergencyPause"
	EventEmergencyUnpause   EventType = "EmergencyUnpause"
	EventProjectFailed      EventType = "ProjectFailed"
)

// Event is one entry of an account's history. Payload holds one of the
// *Payload structs below.
type Event struct {
	ID         string
	ProjectID  string
	Sequence   int
	Type       EventType
	OccurredAt time.Time
	Payload    any
}

type DonationReceivedPayload struct {
	Donor     common.Address `json:"donor"`
	Amount    uint64         `json:"amount"`
	Timestamp int64          `json:"timestamp"`
}

type MilestoneAddedPayload struct {
	MilestoneID int    `json:"milestone_id"`
	Description string `json:"description"`
	Amount      uint64 `json:"amount"`
}

type MilestoneCompletedPayload struct {
	MilestoneID int    `json:"milestone_id"`
	Description string `json:"description"`
}

type VoteCastPayload struct {
	MilestoneID int            `json:"milestone_id"`
	Voter       common.Address `json:"voter"`
	Support     bool           `json:"support"`
	Weight      uint64         `json:"weight"`
}

type FundsReleasedPayload struct {
	MilestoneID int            `json:"milestone_id"`
	Scientist   common.Address `json:"scientist"`
	Amount      uint64         `json:"amount"`
}

type RefundIssuedPayload struct {
	Donor  common.Address `json:"donor"`
	Amount uint64         `json:"amount"`
}

type ScientistUpdatedPayload struct {
	Old common.Address `json:"old"`
	New common.Address `json:"new"`
}

type ProjectFailedPayload struct {
	TotalRaised uint64 `json:"total_raised"`
}

// EmptyPayload is used by events that carry no data.
type EmptyPayload struct{}
