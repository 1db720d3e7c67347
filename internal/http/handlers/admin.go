package handlers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"opencure/internal/escrow"
)

type beneficiaryRequest struct {
	Beneficiary string `json:"beneficiary"`
}

func (a *App) ProjectPause(w http.ResponseWriter, r *http.Request) {
	a.projectAction(w, r, func(acct *escrow.Account) error {
		return acct.EmergencyPause(r.Context(), caller(r))
	})
}

func (a *App) ProjectUnpause(w http.ResponseWriter, r *http.Request) {
	a.projectAction(w, r, func(acct *escrow.Account) error {
		return acct.EmergencyUnpause(r.Context(), caller(r))
	})
}

func (a *App) ProjectFail(w http.ResponseWriter, r *http.Request) {
	a.projectAction(w, r, func(acct *escrow.Account) error {
		return acct.MarkAsFailed(r.Context(), caller(r))
	})
}

func (a *App) BeneficiaryUpdate(w http.ResponseWriter, r *http.Request) {
	var req beneficiaryRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	a.projectAction(w, r, func(acct *escrow.Account) error {
		next := common.Address{}
		if common.IsHexAddress(req.Beneficiary) {
			next = common.HexToAddress(req.Beneficiary)
		}
		return acct.UpdateScientist(r.Context(), caller(r), next)
	})
}

func (a *App) projectAction(w http.ResponseWriter, r *http.Request, fn func(*escrow.Account) error) {
	acct, err := a.project(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := fn(acct); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.projectView(acct.Snapshot()))
}
