package handlers

import (
	"net/http"

	"opencure/internal/escrow"
)

type addMilestoneRequest struct {
	Description     string `json:"description"`
	Amount          uint64 `json:"amount"`
	DurationSeconds int64  `json:"duration_seconds"`
}

type voteRequest struct {
	Support *bool `json:"support"`
}

func (a *App) MilestonesCreate(w http.ResponseWriter, r *http.Request) {
	acct, err := a.project(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req addMilestoneRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	duration, err := seconds(req.DurationSeconds)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	id, err := acct.AddMilestone(r.Context(), caller(r), req.Description, req.Amount, duration)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	m, err := acct.Milestone(id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, a.milestoneView(m, false))
}

func (a *App) MilestonesList(w http.ResponseWriter, r *http.Request) {
	acct, err := a.project(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ms := acct.Milestones()
	items := make([]milestoneView, 0, len(ms))
	for _, m := range ms {
		passed, _ := acct.IsVotePassed(m.ID)
		items = append(items, a.milestoneView(m, passed))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) MilestonesGet(w http.ResponseWriter, r *http.Request) {
	acct, err := a.project(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	id, err := milestoneID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	m, err := acct.Milestone(id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	passed, _ := acct.IsVotePassed(id)
	votes, _ := acct.Votes(id)
	a.json(w, http.StatusOK, map[string]any{
		"milestone": a.milestoneView(m, passed),
		"votes":     voteViews(votes),
	})
}

func (a *App) MilestoneComplete(w http.ResponseWriter, r *http.Request) {
	a.milestoneAction(w, r, func(acct *escrow.Account, id int) error {
		return acct.CompleteMilestone(r.Context(), caller(r), id)
	})
}

func (a *App) MilestoneVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if req.Support == nil {
		a.fail(w, r, errInvalidPayload)
		return
	}
	a.milestoneAction(w, r, func(acct *escrow.Account, id int) error {
		return acct.VoteOnMilestone(r.Context(), caller(r), id, *req.Support)
	})
}

func (a *App) MilestoneRelease(w http.ResponseWriter, r *http.Request) {
	a.milestoneAction(w, r, func(acct *escrow.Account, id int) error {
		return acct.ReleaseFunds(r.Context(), caller(r), id)
	})
}

// milestoneAction resolves the project and milestone id, runs fn and
// responds with the milestone's new state.
func (a *App) milestoneAction(w http.ResponseWriter, r *http.Request, fn func(*escrow.Account, int) error) {
	acct, err := a.project(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	id, err := milestoneID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := fn(acct, id); err != nil {
		a.fail(w, r, err)
		return
	}
	m, err := acct.Milestone(id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	passed, _ := acct.IsVotePassed(id)
	a.json(w, http.StatusOK, a.milestoneView(m, passed))
}
