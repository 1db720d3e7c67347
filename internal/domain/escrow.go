package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// BasisPoints is 100% expressed in basis points.
const BasisPoints = 10000

// Status enumerates the lifecycle of an escrow account.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// transitions lists every legal status change. Anything absent is rejected.
var transitions = map[Status][]Status{
	StatusActive: {StatusPaused, StatusCompleted, StatusFailed},
	StatusPaused: {StatusActive, StatusCompleted, StatusFailed},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions leave s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Milestone is a funding tranche released to the beneficiary once completed.
type Milestone struct {
	ID            int
	Description   string
	Amount        uint64
	Duration      time.Duration
	Completed     bool
	FundsReleased bool
	VotesFor      uint64
	VotesAgainst  uint64
	VoterCount    int
}

// Vote is a donor's immutable ballot on one milestone.
type Vote struct {
	MilestoneID int
	Voter       common.Address
	Support     bool
	Weight      uint64
	CastAt      time.Time
}

// Project is descriptive metadata attached to an escrow account.
type Project struct {
	ID          string
	Name        string
	Description string
	Category    string
	CreatedAt   time.Time
}

// Snapshot is a point-in-time read model of an escrow account.
type Snapshot struct {
	Project          Project
	Owner            common.Address
	Scientist        common.Address
	Custody          common.Address
	GoalAmount       uint64
	FundingDeadline  *time.Time
	Status           Status
	Paused           bool
	TotalRaised      uint64
	TotalReleased    uint64
	TotalRefunded    uint64
	TotalVotingPower uint64
	DonorCount       int
	MilestoneCount   int
	FundingProgress  uint64
	FundingSucceeded bool
	FundingFailed    bool
	ReadAt           time.Time
}
