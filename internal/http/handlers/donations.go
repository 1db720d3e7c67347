package handlers

import (
	"net/http"

	"opencure/internal/domain"
)

type donateRequest struct {
	Amount uint64 `json:"amount"`
}

func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	acct, err := a.project(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req donateRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	donor := caller(r)
	if err := acct.Donate(r.Context(), donor, req.Amount); err != nil {
		a.fail(w, r, err)
		return
	}
	d, _ := acct.Donation(donor)
	a.json(w, http.StatusCreated, map[string]any{
		"donation": a.donorViews([]domain.Donation{d})[0],
		"project":  a.projectView(acct.Snapshot()),
	})
}

func (a *App) DonorsList(w http.ResponseWriter, r *http.Request) {
	acct, err := a.project(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": a.donorViews(acct.Donations())})
}

// RefundsCreate refunds the caller's full contribution.
func (a *App) RefundsCreate(w http.ResponseWriter, r *http.Request) {
	acct, err := a.project(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	amount, err := acct.ClaimRefund(r.Context(), caller(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"refunded": amount})
}
