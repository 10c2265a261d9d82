// Package auction applies administrator transitions to a tournament's
// live auction and persists each one as a single versioned update.
package auction

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/DoyleJ11/cricket-auction-backend/internal/action"
	"github.com/DoyleJ11/cricket-auction-backend/internal/engine"
	"github.com/DoyleJ11/cricket-auction-backend/internal/metrics"
	"github.com/DoyleJ11/cricket-auction-backend/internal/models"
	"github.com/DoyleJ11/cricket-auction-backend/internal/store"
)

var ErrAuctionExists = store.ErrAuctionExists

// Notifier is told about every committed mutation.
type Notifier interface {
	Notify(auctionID string)
}

// UpdateRequest is the generic admin update: a status change or a meta
// change, tagged with the kind of change it is.
type UpdateRequest struct {
	ID          string                `json:"id"`
	Status      *models.AuctionStatus `json:"status,omitempty"`
	AuctionMeta *models.AuctionMeta   `json:"auctionMeta,omitempty"`
	ChangeKey   models.ChangeKey      `json:"changeKey"`
}

type Service struct {
	store    store.Store
	log      *action.Logger
	clock    *Clock
	notifier Notifier
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithClock(c *Clock) Option { return func(s *Service) { s.clock = c } }

func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func NewService(st store.Store, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store: st,
		log:   action.NewLogger(log),
		clock: NewClock(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAuction starts a tournament's auction in Not Started / INIT and
// records it as the tournament's current auction.
func (s *Service) CreateAuction(ctx context.Context, tournamentID string) action.Result {
	const name = "createAuction"
	req := map[string]string{"tournamentId": tournamentID}

	if tournamentID == "" {
		return s.failed(name, req, action.Validation("Tournament Id is required"))
	}
	t, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return s.failed(name, req, action.Classify(err, "tournament"))
	}
	if t.CurrentAuctionID != nil && *t.CurrentAuctionID != "" {
		return s.failed(name, req, fmt.Errorf("%w: %w %s", action.ErrConflict, ErrAuctionExists, *t.CurrentAuctionID))
	}

	a := models.NewAuction(tournamentID)
	a.UpdatedAt = s.clock.Next(a.UpdatedAt)
	if err := s.store.CreateAuction(ctx, &a); err != nil {
		// the store rechecks under its lock; a racing create lands here
		if errors.Is(err, store.ErrAuctionExists) {
			return s.failed(name, req, fmt.Errorf("%w: %w", action.ErrConflict, err))
		}
		return s.failed(name, req, action.Classify(err, "tournament"))
	}
	return s.done(name, req, &a, a.ID)
}

func (s *Service) ReadAuction(ctx context.Context, id string) action.Result {
	const name = "readAuction"
	if id == "" {
		return s.log.Failed(name, id, action.Validation("id is required"))
	}
	a, err := s.store.GetAuction(ctx, id)
	if err != nil {
		return s.log.Failed(name, id, action.Classify(err, "auction"))
	}
	return action.OK(a)
}

func (s *Service) ReadAllAuctions(ctx context.Context) action.Result {
	all, err := s.store.ListAuctions(ctx)
	if err != nil {
		return s.log.Failed("readAllAuctions", "", action.Classify(err, "auction"))
	}
	return action.OK(all)
}

func (s *Service) DeleteAuction(ctx context.Context, id string) action.Result {
	const name = "deleteAuction"
	req := map[string]string{"id": id}
	if id == "" {
		return s.failed(name, req, action.Validation("Auction ID is required for deletion"))
	}
	if err := s.store.DeleteAuction(ctx, id); err != nil {
		return s.failed(name, req, action.Classify(err, "auction"))
	}
	return s.done(name, req, id, id)
}

// UpdateAuction routes a generic update by its change key.
func (s *Service) UpdateAuction(ctx context.Context, req UpdateRequest) action.Result {
	const name = "updateAuction"
	switch {
	case req.ID == "":
		return s.failed(name, req, action.Validation("Auction ID is required"))
	case req.ChangeKey == models.ChangeStatus:
		if req.Status == nil {
			return s.failed(name, req, action.Validation("status is required for STATUS_CHANGE"))
		}
		return s.ApplyStatusChange(ctx, req.ID, *req.Status)
	case req.ChangeKey == models.ChangeGroup || req.ChangeKey == models.ChangePlayer:
		if req.AuctionMeta == nil {
			return s.failed(name, req, action.Validation("auctionMeta is required for "+string(req.ChangeKey)))
		}
		return s.ApplyMetaChange(ctx, req.ID, *req.AuctionMeta, req.ChangeKey)
	default:
		return s.failed(name, req, action.Validation(fmt.Sprintf("unsupported changeKey %q", req.ChangeKey)))
	}
}

// ApplyStatusChange moves the auction to target if target is a valid
// successor of the persisted status.
func (s *Service) ApplyStatusChange(ctx context.Context, auctionID string, target models.AuctionStatus) action.Result {
	req := map[string]string{"id": auctionID, "status": string(target)}
	return s.apply(ctx, "applyStatusChange", auctionID, req, engine.Command{Type: engine.CmdSetStatus, Status: target})
}

// ApplyMetaChange applies the part of meta that key names. Derived fields
// (counts, bid, player details) are recomputed here and never trusted from
// the caller.
func (s *Service) ApplyMetaChange(ctx context.Context, auctionID string, meta models.AuctionMeta, key models.ChangeKey) action.Result {
	const name = "applyMetaChange"
	req := map[string]any{"id": auctionID, "auctionMeta": meta, "changeKey": key}

	cmd, err := engine.CommandFromMeta(meta, key)
	if err != nil {
		return s.failed(name, req, action.Validation(err.Error()))
	}
	return s.apply(ctx, name, auctionID, req, cmd)
}

func (s *Service) SelectGroup(ctx context.Context, auctionID, group string) action.Result {
	req := map[string]string{"id": auctionID, "group": group}
	return s.apply(ctx, "selectGroup", auctionID, req, engine.Command{Type: engine.CmdSelectGroup, Group: group})
}

func (s *Service) SelectPlayer(ctx context.Context, auctionID, playerID string) action.Result {
	req := map[string]string{"id": auctionID, "playerId": playerID}
	return s.apply(ctx, "selectPlayer", auctionID, req, engine.Command{Type: engine.CmdSelectPlayer, PlayerID: playerID})
}

// ClearPlayer takes the current player off the block, keeping the group.
func (s *Service) ClearPlayer(ctx context.Context, auctionID string) action.Result {
	req := map[string]string{"id": auctionID}
	return s.apply(ctx, "clearPlayer", auctionID, req, engine.Command{Type: engine.CmdClearPlayer})
}

// ClearGroup ends the round so a new group can be chosen.
func (s *Service) ClearGroup(ctx context.Context, auctionID string) action.Result {
	req := map[string]string{"id": auctionID}
	return s.apply(ctx, "clearGroup", auctionID, req, engine.Command{Type: engine.CmdClearGroup})
}

func (s *Service) apply(ctx context.Context, name, auctionID string, req any, cmd engine.Command) action.Result {
	if auctionID == "" {
		return s.failed(name, req, action.Validation("Auction ID is required"))
	}

	roster, err := s.roster(ctx, auctionID, cmd.Type)
	if err != nil {
		return s.failed(name, req, err)
	}

	updated, err := s.store.MutateAuction(ctx, auctionID, func(a *models.Auction) error {
		key, next, err := engine.Apply(engine.StateOf(a), cmd, roster)
		if err != nil {
			return err
		}
		a.Status = next.Status
		a.SetMeta(next.Meta)
		a.ChangeKey = key
		a.UpdatedAt = s.clock.Next(a.UpdatedAt)
		return nil
	})
	if err != nil {
		return s.failed(name, req, classifyMutation(err))
	}
	return s.done(name, req, updated, updated.ID)
}

// roster loads what cmd is checked against. It is read before the row lock
// is taken; the machine still filters players by the locked row's group.
func (s *Service) roster(ctx context.Context, auctionID string, cmd engine.CommandType) (engine.Roster, error) {
	if cmd != engine.CmdSelectGroup && cmd != engine.CmdSelectPlayer {
		return engine.Roster{}, nil
	}
	a, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return engine.Roster{}, action.Classify(err, "auction")
	}

	var roster engine.Roster
	switch cmd {
	case engine.CmdSelectGroup:
		t, err := s.store.GetTournament(ctx, a.TournamentID)
		if err != nil {
			return engine.Roster{}, action.Classify(err, "tournament")
		}
		roster.Groups = t.Groups()
	case engine.CmdSelectPlayer:
		players, err := s.store.ListPlayers(ctx, store.PlayerFilter{TournamentID: a.TournamentID})
		if err != nil {
			return engine.Roster{}, action.Classify(err, "players")
		}
		roster.Players = players
	}
	return roster, nil
}

// classifyMutation keeps state machine rejections as they are and maps
// everything else through the storage taxonomy.
func classifyMutation(err error) error {
	for _, known := range []error{
		engine.ErrInvalidTransition,
		engine.ErrUnknownStatus,
		engine.ErrEmptyGroup,
		engine.ErrUnknownGroup,
		engine.ErrGroupAlreadySet,
		engine.ErrGroupNotSet,
		engine.ErrEmptyPlayer,
		engine.ErrPlayerAlreadySet,
		engine.ErrPlayerNotInGroup,
		engine.ErrUnsupportedCommand,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return action.Classify(err, "auction")
}

func (s *Service) done(name string, req, resp any, auctionID string) action.Result {
	s.log.Done(name, req, resp)
	s.metrics.Mutation(name, true)
	if s.notifier != nil {
		s.notifier.Notify(auctionID)
	}
	return action.OK(resp)
}

func (s *Service) failed(name string, req any, err error) action.Result {
	s.metrics.Mutation(name, false)
	return s.log.Failed(name, req, err)
}
