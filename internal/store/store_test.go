package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/DoyleJ11/cricket-auction-backend/internal/models"
)

func strPtr(s string) *string { return &s }

// exerciseStore runs the contract every Store implementation must honour.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	suffix := models.NewID()

	tour := &models.Tournament{
		Name:          "Premier " + suffix,
		OtherSettings: datatypes.NewJSONType(models.OtherSettings{Groups: []string{"A", "B"}}),
	}
	require.NoError(t, s.CreateTournament(ctx, tour))
	require.NotEmpty(t, tour.ID)
	assert.Equal(t, models.PowerOverFirstX, tour.PowerOver)

	t.Run("duplicate tournament name conflicts", func(t *testing.T) {
		err := s.CreateTournament(ctx, &models.Tournament{Name: tour.Name})
		assert.ErrorIs(t, err, ErrConflict)
	})

	team := &models.Team{Name: "Lions " + suffix, OwnerName: "Asha", TournamentID: tour.ID}
	require.NoError(t, s.CreateTeam(ctx, team))

	sold := &models.Player{Name: "Sold " + suffix, TournamentID: tour.ID, Group: "A", TeamID: strPtr(team.ID)}
	free := &models.Player{Name: "Free " + suffix, TournamentID: tour.ID, Group: "A"}
	other := &models.Player{Name: "Other " + suffix, TournamentID: tour.ID, Group: "B"}
	for _, p := range []*models.Player{sold, free, other} {
		require.NoError(t, s.CreatePlayer(ctx, p))
	}
	assert.Equal(t, models.SizeL, free.TShirtSize)
	assert.Equal(t, models.RoleBatsman, free.Role)

	t.Run("player filters", func(t *testing.T) {
		inA, err := s.ListPlayers(ctx, PlayerFilter{TournamentID: tour.ID, Group: "A"})
		require.NoError(t, err)
		assert.Len(t, inA, 2)

		onTeam, err := s.ListPlayers(ctx, PlayerFilter{TeamID: team.ID})
		require.NoError(t, err)
		require.Len(t, onTeam, 1)
		assert.Equal(t, sold.ID, onTeam[0].ID)
	})

	t.Run("update missing record is not found", func(t *testing.T) {
		err := s.UpdatePlayer(ctx, &models.Player{ID: "missing", Name: "ghost " + suffix})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.DeleteTeam(ctx, "missing"), ErrNotFound)
	})

	a := models.NewAuction(tour.ID)
	a.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, s.CreateAuction(ctx, &a))

	t.Run("create auction sets tournament back reference", func(t *testing.T) {
		got, err := s.GetTournament(ctx, tour.ID)
		require.NoError(t, err)
		require.NotNil(t, got.CurrentAuctionID)
		assert.Equal(t, a.ID, *got.CurrentAuctionID)
	})

	t.Run("second auction for a tournament conflicts", func(t *testing.T) {
		second := models.NewAuction(tour.ID)
		err := s.CreateAuction(ctx, &second)
		assert.ErrorIs(t, err, ErrConflict)
		assert.ErrorIs(t, err, ErrAuctionExists)

		_, err = s.GetAuction(ctx, second.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		got, err := s.GetTournament(ctx, tour.ID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, *got.CurrentAuctionID)
	})

	t.Run("snapshot read joins tournament and checks both ids", func(t *testing.T) {
		snap, err := s.GetAuctionSnapshot(ctx, tour.ID, a.ID)
		require.NoError(t, err)
		require.NotNil(t, snap.Tournament)
		assert.Equal(t, tour.Name, snap.Tournament.Name)
		assert.Equal(t, models.StatusNotStarted, snap.Status)
		assert.Equal(t, models.ChangeInit, snap.ChangeKey)

		_, err = s.GetAuctionSnapshot(ctx, "other-tournament", a.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("mutate persists the whole change", func(t *testing.T) {
		next := a.UpdatedAt.Add(time.Second)
		updated, err := s.MutateAuction(ctx, a.ID, func(row *models.Auction) error {
			row.Status = models.StatusInProgress
			row.ChangeKey = models.ChangeStatus
			row.UpdatedAt = next
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusInProgress, updated.Status)

		got, err := s.GetAuction(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ChangeStatus, got.ChangeKey)
		assert.True(t, got.UpdatedAt.Equal(next), "updatedAt %v != %v", got.UpdatedAt, next)
	})

	t.Run("mutate error aborts the write", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := s.MutateAuction(ctx, a.ID, func(row *models.Auction) error {
			row.Status = models.StatusCompleted
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := s.GetAuction(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusInProgress, got.Status)
	})

	t.Run("mutate missing auction", func(t *testing.T) {
		_, err := s.MutateAuction(ctx, "missing", func(*models.Auction) error { return nil })
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("deleting a team cascades its players", func(t *testing.T) {
		require.NoError(t, s.DeleteTeam(ctx, team.ID))
		_, err := s.GetPlayer(ctx, sold.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetPlayer(ctx, free.ID)
		assert.NoError(t, err)
	})

	t.Run("deleting a tournament cascades", func(t *testing.T) {
		require.NoError(t, s.DeleteTournament(ctx, tour.ID))
		_, err := s.GetAuction(ctx, a.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetPlayer(ctx, free.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemory_CreateChildOfMissingTournament(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	assert.ErrorIs(t, m.CreateTeam(ctx, &models.Team{Name: "x", TournamentID: "nope"}), ErrNotFound)
	assert.ErrorIs(t, m.CreatePlayer(ctx, &models.Player{Name: "x", TournamentID: "nope"}), ErrNotFound)
	a := models.NewAuction("nope")
	assert.ErrorIs(t, m.CreateAuction(ctx, &a), ErrNotFound)
}

func TestMemory_ReadsAreCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	tour := &models.Tournament{Name: "T"}
	require.NoError(t, m.CreateTournament(ctx, tour))
	a := models.NewAuction(tour.ID)
	require.NoError(t, m.CreateAuction(ctx, &a))

	got, err := m.GetAuction(ctx, a.ID)
	require.NoError(t, err)
	meta := got.Meta()
	meta.CurrentGroup = "A"
	got.SetMeta(meta)
	got.Status = models.StatusPaused

	again, err := m.GetAuction(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotStarted, again.Status)
	assert.Empty(t, again.Meta().CurrentGroup)
}

func TestMemory_DeleteAuctionClearsBackReference(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	tour := &models.Tournament{Name: "T"}
	require.NoError(t, m.CreateTournament(ctx, tour))
	a := models.NewAuction(tour.ID)
	require.NoError(t, m.CreateAuction(ctx, &a))

	require.NoError(t, m.DeleteAuction(ctx, a.ID))
	got, err := m.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CurrentAuctionID)
	assert.ErrorIs(t, m.DeleteAuction(ctx, a.ID), ErrNotFound)
}

// TestGormStore needs a disposable Postgres database.
func TestGormStore(t *testing.T) {
	dsn := os.Getenv("AUCTION_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("AUCTION_TEST_DATABASE_URL not set")
	}
	db, err := Open(dsn, false)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	exerciseStore(t, NewGorm(db))
}
