package engine

import "github.com/DoyleJ11/cricket-auction-backend/internal/models"

func NewState() State {
	return State{Status: models.StatusNotStarted, Meta: models.EmptyMeta()}
}

// StateOf extracts the machine state from a persisted row.
func StateOf(a *models.Auction) State {
	return State{Status: a.Status, Meta: a.Meta()}
}

func groupPlayers(players []models.Player, group string) []models.Player {
	out := make([]models.Player, 0, len(players))
	for _, p := range players {
		if p.Group == group {
			out = append(out, p)
		}
	}
	return out
}

func countSold(players []models.Player) int {
	n := 0
	for _, p := range players {
		if p.Sold() {
			n++
		}
	}
	return n
}
