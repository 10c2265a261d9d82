package viewer

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/DoyleJ11/cricket-auction-backend/internal/models"
)

var t0 = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

func snapshot(key models.ChangeKey, status models.AuctionStatus, meta models.AuctionMeta, at time.Time) *models.Auction {
	a := models.NewAuction("t1")
	a.ID = "a1"
	a.ChangeKey = key
	a.Status = status
	a.SetMeta(meta)
	a.UpdatedAt = at
	a.Tournament = &models.Tournament{ID: "t1", Name: "Weekend Cup", LogoURL: "/logo.png", BannerURL: "/banner.png"}
	return &a
}

func roundMeta() models.AuctionMeta {
	m := models.EmptyMeta()
	m.CurrentGroup = "A"
	m.CurrentPlayer = models.CurrentPlayer{ID: "P1", Name: "Rohit", Role: models.RoleBatsman}
	m.CurrentBid = 2000
	m.TotalPlayers = 3
	m.SoldPlayers = 1
	return m
}

func TestReconciler_ColdStartIsFullLoad(t *testing.T) {
	cases := []models.ChangeKey{models.ChangeInit, models.ChangeStatus, models.ChangeGroup, models.ChangePlayer}
	for _, key := range cases {
		t.Run(string(key), func(t *testing.T) {
			r := NewReconciler()
			out := r.Apply(snapshot(key, models.StatusInProgress, roundMeta(), t0))
			if out != OutcomeFull {
				t.Fatalf("outcome: got %q, want %q", out, OutcomeFull)
			}
			want := State{
				TournamentName: "Weekend Cup",
				LogoURL:        "/logo.png",
				BannerURL:      "/banner.png",
				Status:         models.StatusInProgress,
				Meta:           roundMeta(),
				LastUpdated:    t0,
			}
			if diff := cmp.Diff(want, r.State()); diff != "" {
				t.Fatalf("state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReconciler_SameUpdatedAtIsNoop(t *testing.T) {
	r := NewReconciler()
	snap := snapshot(models.ChangeInit, models.StatusNotStarted, models.EmptyMeta(), t0)
	r.Apply(snap)
	before := r.State()

	// a different body under the same timestamp is still ignored
	again := snapshot(models.ChangeStatus, models.StatusPaused, roundMeta(), t0)
	if out := r.Apply(again); out != OutcomeNoop {
		t.Fatalf("outcome: got %q, want noop", out)
	}
	if diff := cmp.Diff(before, r.State()); diff != "" {
		t.Fatalf("noop changed state (-before +after):\n%s", diff)
	}
}

func TestReconciler_StatusChangeLeavesMetaAlone(t *testing.T) {
	r := NewReconciler()
	r.Apply(snapshot(models.ChangeInit, models.StatusInProgress, roundMeta(), t0))
	before := r.State()

	// meta in the snapshot differs but must not be picked up
	at := t0.Add(time.Second)
	if out := r.Apply(snapshot(models.ChangeStatus, models.StatusPaused, models.EmptyMeta(), at)); out != OutcomeStatus {
		t.Fatalf("outcome: got %q, want status", out)
	}
	after := r.State()
	if after.Status != models.StatusPaused {
		t.Fatalf("status: got %q", after.Status)
	}
	if diff := cmp.Diff(before.Meta, after.Meta); diff != "" {
		t.Fatalf("meta changed on STATUS_CHANGE (-before +after):\n%s", diff)
	}
	if !after.LastUpdated.Equal(at) {
		t.Fatalf("lastUpdated: got %v, want %v", after.LastUpdated, at)
	}
}

func TestReconciler_MetaChangeLeavesStatusAlone(t *testing.T) {
	for _, key := range []models.ChangeKey{models.ChangeGroup, models.ChangePlayer} {
		t.Run(string(key), func(t *testing.T) {
			r := NewReconciler()
			r.Apply(snapshot(models.ChangeInit, models.StatusInProgress, models.EmptyMeta(), t0))

			out := r.Apply(snapshot(key, models.StatusPaused, roundMeta(), t0.Add(time.Second)))
			if out != OutcomeMeta {
				t.Fatalf("outcome: got %q, want meta", out)
			}
			got := r.State()
			if got.Status != models.StatusInProgress {
				t.Fatalf("status changed on %s: %q", key, got.Status)
			}
			if diff := cmp.Diff(roundMeta(), got.Meta); diff != "" {
				t.Fatalf("meta (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReconciler_InitAndUnknownKeyReload(t *testing.T) {
	for _, key := range []models.ChangeKey{models.ChangeInit, "BID_CHANGE"} {
		t.Run(string(key), func(t *testing.T) {
			r := NewReconciler()
			r.Apply(snapshot(models.ChangeInit, models.StatusNotStarted, models.EmptyMeta(), t0))

			next := snapshot(key, models.StatusInProgress, roundMeta(), t0.Add(time.Second))
			next.Tournament.Name = "Renamed Cup"
			if out := r.Apply(next); out != OutcomeFull {
				t.Fatalf("outcome: got %q, want full", out)
			}
			if got := r.State(); got.TournamentName != "Renamed Cup" || got.Status != models.StatusInProgress {
				t.Fatalf("not reloaded: %+v", got)
			}
		})
	}
}

func TestReconciler_NilSnapshotIsNoop(t *testing.T) {
	r := NewReconciler()
	if out := r.Apply(nil); out != OutcomeNoop {
		t.Fatalf("outcome: got %q", out)
	}
	if !r.State().LastUpdated.IsZero() {
		t.Fatalf("nil snapshot initialized the viewer")
	}
}

func TestReconciler_RepeatedPollsApplyOnce(t *testing.T) {
	r := NewReconciler()
	applied := 0
	stream := []*models.Auction{
		snapshot(models.ChangeInit, models.StatusNotStarted, models.EmptyMeta(), t0),
		snapshot(models.ChangeInit, models.StatusNotStarted, models.EmptyMeta(), t0),
		snapshot(models.ChangeStatus, models.StatusInProgress, models.EmptyMeta(), t0.Add(time.Second)),
		snapshot(models.ChangeStatus, models.StatusInProgress, models.EmptyMeta(), t0.Add(time.Second)),
		snapshot(models.ChangeStatus, models.StatusInProgress, models.EmptyMeta(), t0.Add(time.Second)),
	}
	for _, s := range stream {
		if r.Apply(s) != OutcomeNoop {
			applied++
		}
	}
	if applied != 2 {
		t.Fatalf("applied %d snapshots, want 2", applied)
	}
}
