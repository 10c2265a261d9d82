// Package store persists tournaments, teams, players and auctions.
//
// Two implementations share the Store contract: Gorm (Postgres) for the
// server and Memory for tests and local runs without a database.
package store

import (
	"context"
	"errors"

	"github.com/DoyleJ11/cricket-auction-backend/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with an existing one")

	// ErrAuctionExists is wrapped with ErrConflict when a tournament
	// already points at an auction.
	ErrAuctionExists = errors.New("tournament already has an auction")
)

// PlayerFilter narrows ListPlayers. Empty fields match everything.
type PlayerFilter struct {
	TournamentID string
	TeamID       string
	Group        string
}

// MutateFunc edits an auction in place. Returning an error aborts the write.
type MutateFunc func(a *models.Auction) error

type Store interface {
	CreateTournament(ctx context.Context, t *models.Tournament) error
	GetTournament(ctx context.Context, id string) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]models.Tournament, error)
	UpdateTournament(ctx context.Context, t *models.Tournament) error
	DeleteTournament(ctx context.Context, id string) error

	CreateTeam(ctx context.Context, t *models.Team) error
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	ListTeams(ctx context.Context, tournamentID string) ([]models.Team, error)
	UpdateTeam(ctx context.Context, t *models.Team) error
	DeleteTeam(ctx context.Context, id string) error

	CreatePlayer(ctx context.Context, p *models.Player) error
	GetPlayer(ctx context.Context, id string) (*models.Player, error)
	ListPlayers(ctx context.Context, f PlayerFilter) ([]models.Player, error)
	UpdatePlayer(ctx context.Context, p *models.Player) error
	DeletePlayer(ctx context.Context, id string) error

	// CreateAuction inserts a and points its tournament's CurrentAuctionID at
	// it in one transaction. It fails with ErrAuctionExists if the
	// tournament already has one.
	CreateAuction(ctx context.Context, a *models.Auction) error
	GetAuction(ctx context.Context, id string) (*models.Auction, error)
	// GetAuctionSnapshot reads the auction matching both ids with its
	// Tournament loaded.
	GetAuctionSnapshot(ctx context.Context, tournamentID, auctionID string) (*models.Auction, error)
	ListAuctions(ctx context.Context) ([]models.Auction, error)
	// MutateAuction runs fn on the current row and persists the result as a
	// single write. Readers never observe a partial update.
	MutateAuction(ctx context.Context, id string, fn MutateFunc) (*models.Auction, error)
	DeleteAuction(ctx context.Context, id string) error
}
