// Package records holds the admin create/read/update/delete actions for
// tournaments, teams and players.
package records

import (
	"context"

	"go.uber.org/zap"

	"github.com/DoyleJ11/cricket-auction-backend/internal/action"
	"github.com/DoyleJ11/cricket-auction-backend/internal/metrics"
	"github.com/DoyleJ11/cricket-auction-backend/internal/models"
	"github.com/DoyleJ11/cricket-auction-backend/internal/store"
)

type Service struct {
	store   store.Store
	log     *action.Logger
	metrics *metrics.Metrics
}

func NewService(st store.Store, log *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{store: st, log: action.NewLogger(log), metrics: m}
}

func (s *Service) done(name string, req, resp any) action.Result {
	s.log.Done(name, req, resp)
	s.metrics.Mutation(name, true)
	return action.OK(resp)
}

func (s *Service) failed(name string, req any, err error) action.Result {
	s.metrics.Mutation(name, false)
	return s.log.Failed(name, req, err)
}

// Tournaments

func (s *Service) CreateTournament(ctx context.Context, t models.Tournament) action.Result {
	const name = "createTournament"
	if t.Name == "" {
		return s.failed(name, t, action.Validation("Tournament name is required"))
	}
	if err := s.store.CreateTournament(ctx, &t); err != nil {
		return s.failed(name, t, action.Classify(err, "tournament"))
	}
	return s.done(name, t, &t)
}

func (s *Service) ReadTournament(ctx context.Context, id string) action.Result {
	if id == "" {
		return s.log.Failed("readTournament", id, action.Validation("id is required"))
	}
	t, err := s.store.GetTournament(ctx, id)
	if err != nil {
		return s.log.Failed("readTournament", id, action.Classify(err, "tournament"))
	}
	return action.OK(t)
}

func (s *Service) ReadAllTournaments(ctx context.Context) action.Result {
	all, err := s.store.ListTournaments(ctx)
	if err != nil {
		return s.log.Failed("readAllTournaments", "", action.Classify(err, "tournaments"))
	}
	return action.OK(all)
}

func (s *Service) UpdateTournament(ctx context.Context, t models.Tournament) action.Result {
	const name = "updateTournament"
	switch {
	case t.ID == "":
		return s.failed(name, t, action.Validation("Tournament ID is required for update"))
	case t.Name == "":
		return s.failed(name, t, action.Validation("Tournament name is required"))
	}

	// currentAuctionId is owned by createAuction and deleteAuction
	prev, err := s.store.GetTournament(ctx, t.ID)
	if err != nil {
		return s.failed(name, t, action.Classify(err, "tournament"))
	}
	t.CurrentAuctionID = prev.CurrentAuctionID

	if err := s.store.UpdateTournament(ctx, &t); err != nil {
		return s.failed(name, t, action.Classify(err, "tournament"))
	}
	return s.done(name, t, &t)
}

func (s *Service) DeleteTournament(ctx context.Context, id string) action.Result {
	const name = "deleteTournament"
	req := map[string]string{"id": id}
	if id == "" {
		return s.failed(name, req, action.Validation("Tournament ID is required for deletion"))
	}
	if err := s.store.DeleteTournament(ctx, id); err != nil {
		return s.failed(name, req, action.Classify(err, "tournament"))
	}
	return s.done(name, req, id)
}

// Teams

func (s *Service) CreateTeam(ctx context.Context, t models.Team) action.Result {
	const name = "createTeam"
	switch {
	case t.Name == "":
		return s.failed(name, t, action.Validation("Team name is required"))
	case t.TournamentID == "":
		return s.failed(name, t, action.Validation("Tournament Id is required"))
	}
	if err := s.store.CreateTeam(ctx, &t); err != nil {
		return s.failed(name, t, action.Classify(err, "team"))
	}
	return s.done(name, t, &t)
}

func (s *Service) ReadTeam(ctx context.Context, id string) action.Result {
	if id == "" {
		return s.log.Failed("readTeam", id, action.Validation("id is required"))
	}
	t, err := s.store.GetTeam(ctx, id)
	if err != nil {
		return s.log.Failed("readTeam", id, action.Classify(err, "team"))
	}
	return action.OK(t)
}

func (s *Service) ReadTeamsByTournament(ctx context.Context, tournamentID string) action.Result {
	if tournamentID == "" {
		return s.log.Failed("readTeams", tournamentID, action.Validation("Tournament Id is required"))
	}
	teams, err := s.store.ListTeams(ctx, tournamentID)
	if err != nil {
		return s.log.Failed("readTeams", tournamentID, action.Classify(err, "teams"))
	}
	return action.OK(teams)
}

func (s *Service) UpdateTeam(ctx context.Context, t models.Team) action.Result {
	const name = "updateTeam"
	switch {
	case t.ID == "":
		return s.failed(name, t, action.Validation("Team ID is required for update"))
	case t.Name == "" || t.TournamentID == "":
		return s.failed(name, t, action.Validation("Team name and Tournament Id are required"))
	}
	if err := s.store.UpdateTeam(ctx, &t); err != nil {
		return s.failed(name, t, action.Classify(err, "team"))
	}
	return s.done(name, t, &t)
}

func (s *Service) DeleteTeam(ctx context.Context, id string) action.Result {
	const name = "deleteTeam"
	req := map[string]string{"id": id}
	if id == "" {
		return s.failed(name, req, action.Validation("Team ID is required for deletion"))
	}
	if err := s.store.DeleteTeam(ctx, id); err != nil {
		return s.failed(name, req, action.Classify(err, "team"))
	}
	return s.done(name, req, id)
}

// Players

func (s *Service) CreatePlayer(ctx context.Context, p models.Player) action.Result {
	const name = "createPlayer"
	switch {
	case p.Name == "":
		return s.failed(name, p, action.Validation("Player name is required"))
	case p.TournamentID == "":
		return s.failed(name, p, action.Validation("Tournament Id is required"))
	case p.Role != "" && !p.Role.Valid():
		return s.failed(name, p, action.Validation("unknown role "+string(p.Role)))
	}
	if err := s.store.CreatePlayer(ctx, &p); err != nil {
		return s.failed(name, p, action.Classify(err, "player"))
	}
	return s.done(name, p, &p)
}

func (s *Service) ReadPlayer(ctx context.Context, id string) action.Result {
	if id == "" {
		return s.log.Failed("readPlayer", id, action.Validation("id is required"))
	}
	p, err := s.store.GetPlayer(ctx, id)
	if err != nil {
		return s.log.Failed("readPlayer", id, action.Classify(err, "player"))
	}
	return action.OK(p)
}

// ReadPlayers lists players of a tournament, optionally narrowed to one
// team or one group.
func (s *Service) ReadPlayers(ctx context.Context, f store.PlayerFilter) action.Result {
	if f.TournamentID == "" && f.TeamID == "" {
		return s.log.Failed("readPlayers", f, action.Validation("Tournament Id or Team Id is required"))
	}
	players, err := s.store.ListPlayers(ctx, f)
	if err != nil {
		return s.log.Failed("readPlayers", f, action.Classify(err, "players"))
	}
	return action.OK(players)
}

func (s *Service) UpdatePlayer(ctx context.Context, p models.Player) action.Result {
	const name = "updatePlayer"
	switch {
	case p.ID == "":
		return s.failed(name, p, action.Validation("Player ID is required for update"))
	case p.Name == "" || p.TournamentID == "":
		return s.failed(name, p, action.Validation("Player name and Tournament Id are required"))
	case p.Role != "" && !p.Role.Valid():
		return s.failed(name, p, action.Validation("unknown role "+string(p.Role)))
	}
	if err := s.store.UpdatePlayer(ctx, &p); err != nil {
		return s.failed(name, p, action.Classify(err, "player"))
	}
	return s.done(name, p, &p)
}

func (s *Service) DeletePlayer(ctx context.Context, id string) action.Result {
	const name = "deletePlayer"
	req := map[string]string{"id": id}
	if id == "" {
		return s.failed(name, req, action.Validation("Player ID is required for deletion"))
	}
	if err := s.store.DeletePlayer(ctx, id); err != nil {
		return s.failed(name, req, action.Classify(err, "player"))
	}
	return s.done(name, req, id)
}
