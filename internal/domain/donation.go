package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Donation is the cumulative contribution of one donor to one project.
type Donation struct {
	Donor       common.Address
	Amount      uint64
	VotingPower uint64
	Refunded    bool
	FirstAt     time.Time
}
