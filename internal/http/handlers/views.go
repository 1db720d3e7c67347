package handlers

import (
	"time"

	"opencure/internal/domain"
	"opencure/internal/token"
)

type projectView struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Category         string     `json:"category"`
	CreatedAt        time.Time  `json:"created_at"`
	Owner            string     `json:"owner"`
	Beneficiary      string     `json:"beneficiary"`
	Custody          string     `json:"custody"`
	Status           string     `json:"status"`
	Paused           bool       `json:"paused"`
	GoalAmount       uint64     `json:"goal_amount"`
	GoalDisplay      string     `json:"goal_display"`
	FundingDeadline  *time.Time `json:"funding_deadline"`
	TotalRaised      uint64     `json:"total_raised"`
	RaisedDisplay    string     `json:"raised_display"`
	TotalReleased    uint64     `json:"total_released"`
	TotalRefunded    uint64     `json:"total_refunded"`
	TotalVotingPower uint64     `json:"total_voting_power"`
	DonorCount       int        `json:"donor_count"`
	MilestoneCount   int        `json:"milestone_count"`
	FundingProgress  uint64     `json:"funding_progress_bp"`
	FundingSucceeded bool       `json:"funding_succeeded"`
	FundingFailed    bool       `json:"funding_failed"`
}

func (a *App) projectView(s domain.Snapshot) projectView {
	return projectView{
		ID:               s.Project.ID,
		Name:             s.Project.Name,
		Description:      s.Project.Description,
		Category:         s.Project.Category,
		CreatedAt:        s.Project.CreatedAt,
		Owner:            s.Owner.Hex(),
		Beneficiary:      s.Scientist.Hex(),
		Custody:          s.Custody.Hex(),
		Status:           string(s.Status),
		Paused:           s.Paused,
		GoalAmount:       s.GoalAmount,
		GoalDisplay:      token.FormatUnits(s.GoalAmount, a.Decimals),
		FundingDeadline:  s.FundingDeadline,
		TotalRaised:      s.TotalRaised,
		RaisedDisplay:    token.FormatUnits(s.TotalRaised, a.Decimals),
		TotalReleased:    s.TotalReleased,
		TotalRefunded:    s.TotalRefunded,
		TotalVotingPower: s.TotalVotingPower,
		DonorCount:       s.DonorCount,
		MilestoneCount:   s.MilestoneCount,
		FundingProgress:  s.FundingProgress,
		FundingSucceeded: s.FundingSucceeded,
		FundingFailed:    s.FundingFailed,
	}
}

type milestoneView struct {
	ID              int    `json:"id"`
	Description     string `json:"description"`
	Amount          uint64 `json:"amount"`
	AmountDisplay   string `json:"amount_display"`
	DurationSeconds int64  `json:"duration_seconds"`
	Completed       bool   `json:"completed"`
	FundsReleased   bool   `json:"funds_released"`
	VotesFor        uint64 `json:"votes_for"`
	VotesAgainst    uint64 `json:"votes_against"`
	VoterCount      int    `json:"voter_count"`
	VotePassed      bool   `json:"vote_passed"`
}

func (a *App) milestoneView(m domain.Milestone, passed bool) milestoneView {
	return milestoneView{
		ID:              m.ID,
		Description:     m.Description,
		Amount:          m.Amount,
		AmountDisplay:   token.FormatUnits(m.Amount, a.Decimals),
		DurationSeconds: int64(m.Duration / time.Second),
		Completed:       m.Completed,
		FundsReleased:   m.FundsReleased,
		VotesFor:        m.VotesFor,
		VotesAgainst:    m.VotesAgainst,
		VoterCount:      m.VoterCount,
		VotePassed:      passed,
	}
}

type voteView struct {
	Voter   string    `json:"voter"`
	Support bool      `json:"support"`
	Weight  uint64    `json:"weight"`
	CastAt  time.Time `json:"cast_at"`
}

func voteViews(votes []domain.Vote) []voteView {
	out := make([]voteView, 0, len(votes))
	for _, v := range votes {
		out = append(out, voteView{Voter: v.Voter.Hex(), Support: v.Support, Weight: v.Weight, CastAt: v.CastAt})
	}
	return out
}

type donorView struct {
	Donor         string    `json:"donor"`
	Amount        uint64    `json:"amount"`
	AmountDisplay string    `json:"amount_display"`
	VotingPower   uint64    `json:"voting_power"`
	Refunded      bool      `json:"refunded"`
	FirstAt       time.Time `json:"first_donated_at"`
}

func (a *App) donorViews(ds []domain.Donation) []donorView {
	out := make([]donorView, 0, len(ds))
	for _, d := range ds {
		out = append(out, donorView{
			Donor:         d.Donor.Hex(),
			Amount:        d.Amount,
			AmountDisplay: token.FormatUnits(d.Amount, a.Decimals),
			VotingPower:   d.VotingPower,
			Refunded:      d.Refunded,
			FirstAt:       d.FirstAt,
		})
	}
	return out
}

type eventView struct {
	ID         string    `json:"id"`
	Sequence   int       `json:"sequence"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}
