package handlers

import (
	"net/http"

	"opencure/internal/token"
)

// StatsSummary aggregates every project in the registry.
func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	var (
		raised, released, refunded uint64
		donors, milestones         int
		byStatus                   = map[string]int{}
	)
	projects := a.Registry.Projects()
	for _, acct := range projects {
		s := acct.Snapshot()
		byStatus[string(s.Status)]++
		raised += s.TotalRaised
		released += s.TotalReleased
		refunded += s.TotalRefunded
		donors += s.DonorCount
		milestones += s.MilestoneCount
	}
	a.json(w, http.StatusOK, map[string]any{
		"projects":          len(projects),
		"projects_by_state": byStatus,
		"donations":         donors,
		"milestones":        milestones,
		"total_raised":      raised,
		"total_released":    released,
		"total_refunded":    refunded,
		"raised_display":    token.FormatUnits(raised, a.Decimals),
		"released_display":  token.FormatUnits(released, a.Decimals),
	})
}
