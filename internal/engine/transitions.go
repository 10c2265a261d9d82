package engine

import (
	"slices"

	"github.com/DoyleJ11/cricket-auction-backend/internal/models"
)

// Transitions lists the admin-triggerable successors of each status.
// Completed is reachable by no transition yet.
var Transitions = map[models.AuctionStatus][]models.AuctionStatus{
	models.StatusNotStarted: {models.StatusInProgress},
	models.StatusInProgress: {models.StatusPaused},
	models.StatusPaused:     {models.StatusInProgress},
	models.StatusCompleted:  {},
}

func CanTransition(from, to models.AuctionStatus) bool {
	return slices.Contains(Transitions[from], to)
}

// NextStatuses returns the statuses an admin may move to from the given one.
func NextStatuses(from models.AuctionStatus) []models.AuctionStatus {
	return slices.Clone(Transitions[from])
}
