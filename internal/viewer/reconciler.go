// Package viewer turns the stream of full auction snapshots into minimal
// local state updates.
package viewer

import (
	"time"

	"github.com/DoyleJ11/cricket-auction-backend/internal/models"
)

type Outcome string

const (
	OutcomeNoop   Outcome = "noop"
	OutcomeFull   Outcome = "full"
	OutcomeStatus Outcome = "status"
	OutcomeMeta   Outcome = "meta"
)

// State is what a viewer renders. LastUpdated is zero until the first
// snapshot has been applied.
type State struct {
	TournamentName string
	LogoURL        string
	BannerURL      string
	Status         models.AuctionStatus
	Meta           models.AuctionMeta
	LastUpdated    time.Time
}

// Reconciler holds the state of one viewer connection. It is not safe for
// concurrent use; a connection delivers its snapshots in order.
type Reconciler struct {
	state State
}

func NewReconciler() *Reconciler { return &Reconciler{} }

func (r *Reconciler) State() State {
	s := r.state
	s.Meta = s.Meta.Clone()
	return s
}

// Apply folds one snapshot into the local state and reports which part of
// it changed. A nil snapshot changes nothing.
func (r *Reconciler) Apply(a *models.Auction) Outcome {
	if a == nil {
		return OutcomeNoop
	}
	if r.state.LastUpdated.IsZero() {
		r.full(a)
		return OutcomeFull
	}
	if a.UpdatedAt.Equal(r.state.LastUpdated) {
		return OutcomeNoop
	}

	var out Outcome
	switch a.ChangeKey {
	case models.ChangeStatus:
		r.state.Status = a.Status
		out = OutcomeStatus
	case models.ChangeGroup, models.ChangePlayer:
		r.state.Meta = a.Meta()
		out = OutcomeMeta
	default:
		// INIT, or a key this viewer does not know: reload everything
		r.full(a)
		return OutcomeFull
	}
	r.state.LastUpdated = a.UpdatedAt
	return out
}

func (r *Reconciler) full(a *models.Auction) {
	s := State{
		Status:      a.Status,
		Meta:        a.Meta(),
		LastUpdated: a.UpdatedAt,
	}
	if t := a.Tournament; t != nil {
		s.TournamentName = t.Name
		s.LogoURL = t.LogoURL
		s.BannerURL = t.BannerURL
	}
	r.state = s
}
