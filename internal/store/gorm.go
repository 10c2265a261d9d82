package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DoyleJ11/cricket-auction-backend/internal/models"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Gorm is the Postgres backed Store.
type Gorm struct {
	db *gorm.DB
}

var _ Store = (*Gorm)(nil)

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}

func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) CreateTournament(ctx context.Context, t *models.Tournament) error {
	if t.ID == "" {
		t.ID = models.NewID()
	}
	if t.PowerOver == "" {
		t.PowerOver = models.PowerOverFirstX
	}
	return translate(g.db.WithContext(ctx).Create(t).Error)
}

func (g *Gorm) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	var t models.Tournament
	if err := g.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (g *Gorm) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	var out []models.Tournament
	if err := g.db.WithContext(ctx).Order("created_at desc").Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (g *Gorm) UpdateTournament(ctx context.Context, t *models.Tournament) error {
	res := g.db.WithContext(ctx).
		Model(&models.Tournament{}).
		Where("id = ?", t.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(t)
	return affected(res)
}

// DeleteTournament relies on ON DELETE CASCADE for teams, players and auctions.
func (g *Gorm) DeleteTournament(ctx context.Context, id string) error {
	return affected(g.db.WithContext(ctx).Delete(&models.Tournament{}, "id = ?", id))
}

func (g *Gorm) CreateTeam(ctx context.Context, t *models.Team) error {
	if t.ID == "" {
		t.ID = models.NewID()
	}
	return translate(g.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error)
}

func (g *Gorm) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	var t models.Team
	if err := g.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (g *Gorm) ListTeams(ctx context.Context, tournamentID string) ([]models.Team, error) {
	q := g.db.WithContext(ctx).Order("created_at desc")
	if tournamentID != "" {
		q = q.Where("tournament_id = ?", tournamentID)
	}
	var out []models.Team
	if err := q.Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (g *Gorm) UpdateTeam(ctx context.Context, t *models.Team) error {
	res := g.db.WithContext(ctx).
		Model(&models.Team{}).
		Where("id = ?", t.ID).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(t)
	return affected(res)
}

func (g *Gorm) DeleteTeam(ctx context.Context, id string) error {
	return affected(g.db.WithContext(ctx).Delete(&models.Team{}, "id = ?", id))
}

func (g *Gorm) CreatePlayer(ctx context.Context, p *models.Player) error {
	if p.ID == "" {
		p.ID = models.NewID()
	}
	if p.TShirtSize == "" {
		p.TShirtSize = models.SizeL
	}
	if p.Role == "" {
		p.Role = models.RoleBatsman
	}
	return translate(g.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error)
}

func (g *Gorm) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	var p models.Player
	if err := g.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (g *Gorm) ListPlayers(ctx context.Context, f PlayerFilter) ([]models.Player, error) {
	q := g.db.WithContext(ctx).Order("created_at desc")
	if f.TournamentID != "" {
		q = q.Where("tournament_id = ?", f.TournamentID)
	}
	if f.TeamID != "" {
		q = q.Where("team_id = ?", f.TeamID)
	}
	if f.Group != "" {
		q = q.Where(`"group" = ?`, f.Group)
	}
	var out []models.Player
	if err := q.Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (g *Gorm) UpdatePlayer(ctx context.Context, p *models.Player) error {
	res := g.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("id = ?", p.ID).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(p)
	return affected(res)
}

func (g *Gorm) DeletePlayer(ctx context.Context, id string) error {
	return affected(g.db.WithContext(ctx).Delete(&models.Player{}, "id = ?", id))
}

func (g *Gorm) CreateAuction(ctx context.Context, a *models.Auction) error {
	if a.ID == "" {
		a.ID = models.NewID()
	}
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Tournament
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, "id = ?", a.TournamentID).Error; err != nil {
			return err
		}
		if t.CurrentAuctionID != nil && *t.CurrentAuctionID != "" {
			return auctionExists(*t.CurrentAuctionID)
		}
		if err := tx.Omit(clause.Associations).Create(a).Error; err != nil {
			return err
		}
		return tx.Model(&models.Tournament{}).
			Where("id = ?", a.TournamentID).
			Update("current_auction_id", a.ID).Error
	})
	return translate(err)
}

func auctionExists(id string) error {
	return fmt.Errorf("%w: %w %s", ErrConflict, ErrAuctionExists, id)
}

func (g *Gorm) GetAuction(ctx context.Context, id string) (*models.Auction, error) {
	var a models.Auction
	if err := g.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (g *Gorm) GetAuctionSnapshot(ctx context.Context, tournamentID, auctionID string) (*models.Auction, error) {
	var a models.Auction
	err := g.db.WithContext(ctx).
		Preload("Tournament").
		Where("id = ? AND tournament_id = ?", auctionID, tournamentID).
		First(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (g *Gorm) ListAuctions(ctx context.Context) ([]models.Auction, error) {
	var out []models.Auction
	if err := g.db.WithContext(ctx).Order("created_at desc").Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// MutateAuction locks the row for the duration of fn so the check and the
// write cannot interleave with another mutation.
func (g *Gorm) MutateAuction(ctx context.Context, id string, fn MutateFunc) (*models.Auction, error) {
	var a models.Auction
	var fnErr error

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, "id = ?", id).Error; err != nil {
			return err
		}
		if fnErr = fn(&a); fnErr != nil {
			return fnErr
		}
		return tx.Model(&models.Auction{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"status":       a.Status,
				"change_key":   a.ChangeKey,
				"auction_meta": a.AuctionMeta,
				"updated_at":   a.UpdatedAt,
			}).Error
	})
	if fnErr != nil {
		return nil, fnErr
	}
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (g *Gorm) DeleteAuction(ctx context.Context, id string) error {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := affected(tx.Delete(&models.Auction{}, "id = ?", id)); err != nil {
			return err
		}
		return tx.Model(&models.Tournament{}).
			Where("current_auction_id = ?", id).
			Update("current_auction_id", nil).Error
	})
	return translate(err)
}
