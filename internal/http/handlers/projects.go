package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"opencure/internal/domain"
	"opencure/internal/escrow"
)

type createProjectRequest struct {
	Name                   string `json:"name"`
	Description            string `json:"description"`
	Category               string `json:"category"`
	Beneficiary            string `json:"beneficiary"`
	GoalAmount             uint64 `json:"goal_amount"`
	FundingDurationSeconds int64  `json:"funding_duration_seconds"`
}

func (a *App) ProjectsCreate(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	beneficiary, err := parseAddress(req.Beneficiary)
	if err != nil {
		a.fail(w, r, domain.ErrInvalidScientist)
		return
	}
	duration, err := seconds(req.FundingDurationSeconds)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	acct, err := a.Registry.CreateProject(r.Context(), caller(r), escrow.CreateProjectInput{
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		Scientist:       beneficiary,
		GoalAmount:      req.GoalAmount,
		FundingDuration: duration,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, a.projectView(acct.Snapshot()))
}

func (a *App) ProjectsList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	items := make([]projectView, 0)
	for _, acct := range a.Registry.Projects() {
		snap := acct.Snapshot()
		if status != "" && string(snap.Status) != status {
			continue
		}
		items = append(items, a.projectView(snap))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) ProjectsGet(w http.ResponseWriter, r *http.Request) {
	acct, err := a.project(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	view := a.projectView(acct.Snapshot())
	balance, err := acct.Balance(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"project": view, "custody_balance": balance})
}

// EventsList serves the in-memory history, or the Postgres journal when
// ?source=journal is given and a journal is configured.
func (a *App) EventsList(w http.ResponseWriter, r *http.Request) {
	acct, err := a.project(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if r.URL.Query().Get("source") == "journal" {
		a.journalList(w, r, acct.ID())
		return
	}
	history := acct.History()
	items := make([]eventView, 0, len(history))
	for _, ev := range history {
		items = append(items, eventView{
			ID:         ev.ID,
			Sequence:   ev.Sequence,
			Type:       string(ev.Type),
			OccurredAt: ev.OccurredAt,
			Payload:    ev.Payload,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) journalList(w http.ResponseWriter, r *http.Request, projectID string) {
	limit, err := queryLimit(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if a.Journal == nil {
		a.error(w, http.StatusNotImplemented, "journal_unavailable", "event journal is not configured")
		return
	}
	entries, err := a.Journal.ListByProject(r.Context(), projectID, limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]eventView, 0, len(entries))
	for _, e := range entries {
		items = append(items, eventView{
			ID:         e.ID,
			Sequence:   e.Sequence,
			Type:       string(e.Type),
			OccurredAt: e.OccurredAt,
			Payload:    rawJSON(e.Payload),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items, "source": "journal"})
}

func rawJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return json.RawMessage(b)
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, domain.ErrInvalidAddress
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return common.Address{}, domain.ErrInvalidAddress
	}
	return addr, nil
}
