package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DoyleJ11/cricket-auction-backend/internal/models"
)

// Memory is a Store kept in process memory. It applies the same defaults,
// uniqueness rules and cascades as the Postgres schema.
type Memory struct {
	mu          sync.Mutex
	tournaments map[string]models.Tournament
	teams       map[string]models.Team
	players     map[string]models.Player
	auctions    map[string]models.Auction
	now         func() time.Time
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		tournaments: map[string]models.Tournament{},
		teams:       map[string]models.Team{},
		players:     map[string]models.Player{},
		auctions:    map[string]models.Auction{},
		now:         time.Now,
	}
}

func (m *Memory) CreateTournament(_ context.Context, t *models.Tournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.ID == "" {
		t.ID = models.NewID()
	}
	if _, ok := m.tournaments[t.ID]; ok {
		return ErrConflict
	}
	for _, other := range m.tournaments {
		if other.Name == t.Name {
			return ErrConflict
		}
	}
	if t.PowerOver == "" {
		t.PowerOver = models.PowerOverFirstX
	}
	now := m.now()
	t.CreatedAt, t.UpdatedAt = now, now
	m.tournaments[t.ID] = t.Clone()
	return nil
}

func (m *Memory) GetTournament(_ context.Context, id string) (*models.Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tournaments[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := t.Clone()
	return &out, nil
}

func (m *Memory) ListTournaments(_ context.Context) ([]models.Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Tournament, 0, len(m.tournaments))
	for _, t := range m.tournaments {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateTournament(_ context.Context, t *models.Tournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.tournaments[t.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range m.tournaments {
		if id != t.ID && other.Name == t.Name {
			return ErrConflict
		}
	}
	t.CreatedAt = prev.CreatedAt
	t.UpdatedAt = m.now()
	m.tournaments[t.ID] = t.Clone()
	return nil
}

func (m *Memory) DeleteTournament(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tournaments[id]; !ok {
		return ErrNotFound
	}
	delete(m.tournaments, id)
	for tid, team := range m.teams {
		if team.TournamentID == id {
			m.deleteTeamLocked(tid)
		}
	}
	for pid, p := range m.players {
		if p.TournamentID == id {
			delete(m.players, pid)
		}
	}
	for aid, a := range m.auctions {
		if a.TournamentID == id {
			delete(m.auctions, aid)
		}
	}
	return nil
}

func (m *Memory) CreateTeam(_ context.Context, t *models.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tournaments[t.TournamentID]; !ok {
		return ErrNotFound
	}
	if t.ID == "" {
		t.ID = models.NewID()
	}
	if _, ok := m.teams[t.ID]; ok {
		return ErrConflict
	}
	for _, other := range m.teams {
		if other.Name == t.Name {
			return ErrConflict
		}
	}
	now := m.now()
	t.CreatedAt, t.UpdatedAt = now, now
	m.teams[t.ID] = *t
	return nil
}

func (m *Memory) GetTeam(_ context.Context, id string) (*models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.teams[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *Memory) ListTeams(_ context.Context, tournamentID string) ([]models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Team{}
	for _, t := range m.teams {
		if tournamentID == "" || t.TournamentID == tournamentID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateTeam(_ context.Context, t *models.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.teams[t.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range m.teams {
		if id != t.ID && other.Name == t.Name {
			return ErrConflict
		}
	}
	t.CreatedAt = prev.CreatedAt
	t.UpdatedAt = m.now()
	m.teams[t.ID] = *t
	return nil
}

func (m *Memory) DeleteTeam(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.teams[id]; !ok {
		return ErrNotFound
	}
	m.deleteTeamLocked(id)
	return nil
}

// deleteTeamLocked removes a team and, as the schema cascades, its players.
func (m *Memory) deleteTeamLocked(id string) {
	delete(m.teams, id)
	for pid, p := range m.players {
		if p.TeamID != nil && *p.TeamID == id {
			delete(m.players, pid)
		}
	}
}

func (m *Memory) CreatePlayer(_ context.Context, p *models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tournaments[p.TournamentID]; !ok {
		return ErrNotFound
	}
	if p.TeamID != nil && *p.TeamID != "" {
		if _, ok := m.teams[*p.TeamID]; !ok {
			return ErrNotFound
		}
	}
	if p.ID == "" {
		p.ID = models.NewID()
	}
	if _, ok := m.players[p.ID]; ok {
		return ErrConflict
	}
	for _, other := range m.players {
		if other.Name == p.Name {
			return ErrConflict
		}
	}
	if p.TShirtSize == "" {
		p.TShirtSize = models.SizeL
	}
	if p.Role == "" {
		p.Role = models.RoleBatsman
	}
	now := m.now()
	p.CreatedAt, p.UpdatedAt = now, now
	m.players[p.ID] = p.Clone()
	return nil
}

func (m *Memory) GetPlayer(_ context.Context, id string) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := p.Clone()
	return &out, nil
}

func (m *Memory) ListPlayers(_ context.Context, f PlayerFilter) ([]models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Player{}
	for _, p := range m.players {
		if f.TournamentID != "" && p.TournamentID != f.TournamentID {
			continue
		}
		if f.TeamID != "" && (p.TeamID == nil || *p.TeamID != f.TeamID) {
			continue
		}
		if f.Group != "" && p.Group != f.Group {
			continue
		}
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdatePlayer(_ context.Context, p *models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.players[p.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range m.players {
		if id != p.ID && other.Name == p.Name {
			return ErrConflict
		}
	}
	if p.TeamID != nil && *p.TeamID != "" {
		if _, ok := m.teams[*p.TeamID]; !ok {
			return ErrNotFound
		}
	}
	p.CreatedAt = prev.CreatedAt
	p.UpdatedAt = m.now()
	m.players[p.ID] = p.Clone()
	return nil
}

func (m *Memory) DeletePlayer(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.players[id]; !ok {
		return ErrNotFound
	}
	delete(m.players, id)
	return nil
}

func (m *Memory) CreateAuction(_ context.Context, a *models.Auction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tournaments[a.TournamentID]
	if !ok {
		return ErrNotFound
	}
	if t.CurrentAuctionID != nil && *t.CurrentAuctionID != "" {
		return auctionExists(*t.CurrentAuctionID)
	}
	if a.ID == "" {
		a.ID = models.NewID()
	}
	if _, ok := m.auctions[a.ID]; ok {
		return ErrConflict
	}
	a.CreatedAt = m.now()
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	stored := a.Clone()
	stored.Tournament = nil
	m.auctions[a.ID] = stored

	id := a.ID
	t.CurrentAuctionID = &id
	t.UpdatedAt = m.now()
	m.tournaments[t.ID] = t
	return nil
}

func (m *Memory) GetAuction(_ context.Context, id string) (*models.Auction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.auctions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := a.Clone()
	return &out, nil
}

func (m *Memory) GetAuctionSnapshot(_ context.Context, tournamentID, auctionID string) (*models.Auction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.auctions[auctionID]
	if !ok || a.TournamentID != tournamentID {
		return nil, ErrNotFound
	}
	out := a.Clone()
	if t, ok := m.tournaments[tournamentID]; ok {
		tc := t.Clone()
		out.Tournament = &tc
	}
	return &out, nil
}

func (m *Memory) ListAuctions(_ context.Context) ([]models.Auction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Auction, 0, len(m.auctions))
	for _, a := range m.auctions {
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) MutateAuction(_ context.Context, id string, fn MutateFunc) (*models.Auction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.auctions[id]
	if !ok {
		return nil, ErrNotFound
	}
	work := cur.Clone()
	if err := fn(&work); err != nil {
		return nil, err
	}
	work.ID, work.TournamentID, work.CreatedAt = cur.ID, cur.TournamentID, cur.CreatedAt
	work.Tournament = nil
	m.auctions[id] = work.Clone()
	return &work, nil
}

func (m *Memory) DeleteAuction(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.auctions[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.auctions, id)
	if t, ok := m.tournaments[a.TournamentID]; ok && t.CurrentAuctionID != nil && *t.CurrentAuctionID == id {
		t.CurrentAuctionID = nil
		m.tournaments[t.ID] = t
	}
	return nil
}
