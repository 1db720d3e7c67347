package handlers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"opencure/internal/domain"
	"opencure/internal/token"
)

var errFaucetDisabled = &domain.Error{Kind: domain.KindAuthorization, Code: "faucet_disabled", Message: "Faucet disabled"}

type approveRequest struct {
	// Either Spender or ProjectID; ProjectID resolves to the project's
	// custody address.
	Spender   string `json:"spender"`
	ProjectID string `json:"project_id"`
	Amount    uint64 `json:"amount"`
}

type mintRequest struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

func (a *App) TokenApprove(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	var spender common.Address
	if req.ProjectID != "" {
		acct, err := a.Registry.Project(req.ProjectID)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		spender = acct.Custody()
	} else {
		addr, err := parseAddress(req.Spender)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		spender = addr
	}
	owner := caller(r)
	if err := a.Ledger.Approve(r.Context(), owner, spender, req.Amount); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"owner":     owner.Hex(),
		"spender":   spender.Hex(),
		"allowance": req.Amount,
	})
}

// TokenMint is the development faucet.
func (a *App) TokenMint(w http.ResponseWriter, r *http.Request) {
	if !a.Faucet {
		a.fail(w, r, errFaucetDisabled)
		return
	}
	var req mintRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	to := caller(r)
	if req.To != "" {
		addr, err := parseAddress(req.To)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		to = addr
	}
	if err := a.Ledger.Mint(r.Context(), to, req.Amount); err != nil {
		a.fail(w, r, err)
		return
	}
	a.Logger.Info().Str("to", to.Hex()).Uint64("amount", req.Amount).Msg("faucet: minted")
	a.balance(w, r, to)
}

func (a *App) TokenBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddress(chi.URLParam(r, "address"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.balance(w, r, addr)
}

func (a *App) balance(w http.ResponseWriter, r *http.Request, addr common.Address) {
	bal, err := a.Ledger.BalanceOf(r.Context(), addr)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	resp := map[string]any{
		"address": addr.Hex(),
		"balance": bal,
		"display": token.FormatUnits(bal, a.Decimals),
	}
	if s := r.URL.Query().Get("spender"); s != "" {
		spender, err := parseAddress(s)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		allowance, err := a.Ledger.Allowance(r.Context(), addr, spender)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		resp["allowance"] = allowance
	}
	a.json(w, http.StatusOK, resp)
}
