package models

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

type CurrentPlayer struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	ImgURL string     `json:"img_url"`
	Role   PlayerRole `json:"role"`
}

type BidTeam struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	ImgURL string `json:"img_url"`
}

type Bid struct {
	BidAmount int     `json:"bidAmount"`
	Team      BidTeam `json:"team"`
}

// AuctionMeta is the in-progress round: the group and player on the block.
// CurrentBidTeam and HistoryOfBids are carried but no transition fills them.
type AuctionMeta struct {
	CurrentGroup   string        `json:"currentGroup"`
	CurrentPlayer  CurrentPlayer `json:"currentPlayer"`
	CurrentBid     int           `json:"currentBid"`
	CurrentBidTeam BidTeam       `json:"currentBidTeam"`
	TotalPlayers   int           `json:"totalPlayers"`
	SoldPlayers    int           `json:"soldPlayers"`
	HistoryOfBids  []Bid         `json:"historyOfBids"`
}

func EmptyMeta() AuctionMeta {
	return AuctionMeta{HistoryOfBids: []Bid{}}
}

func (m AuctionMeta) Clone() AuctionMeta {
	m.HistoryOfBids = slices.Clone(m.HistoryOfBids)
	if m.HistoryOfBids == nil {
		m.HistoryOfBids = []Bid{}
	}
	return m
}

type Auction struct {
	ID           string                          `gorm:"primaryKey;size:16" json:"id"`
	CreatedAt    time.Time                       `json:"createdAt"`
	UpdatedAt    time.Time                       `gorm:"not null;autoUpdateTime:false" json:"updatedAt"`
	Status       AuctionStatus                   `gorm:"type:text;not null;default:'Not Started'" json:"status"`
	ChangeKey    ChangeKey                       `gorm:"type:text;not null;default:'INIT'" json:"changeKey"`
	AuctionMeta  datatypes.JSONType[AuctionMeta] `gorm:"type:jsonb" json:"auctionMeta"`
	TournamentID string                          `gorm:"size:16;not null;index" json:"tournamentId"`
	Tournament   *Tournament                     `gorm:"constraint:OnDelete:CASCADE" json:"tournament,omitempty"`
}

// NewAuction returns the initial row for a tournament's auction.
func NewAuction(tournamentID string) Auction {
	return Auction{
		ID:           NewID(),
		Status:       StatusNotStarted,
		ChangeKey:    ChangeInit,
		AuctionMeta:  datatypes.NewJSONType(EmptyMeta()),
		TournamentID: tournamentID,
	}
}

func (a *Auction) Meta() AuctionMeta {
	return a.AuctionMeta.Data()
}

func (a *Auction) SetMeta(m AuctionMeta) {
	a.AuctionMeta = datatypes.NewJSONType(m.Clone())
}

func (a Auction) Clone() Auction {
	a.AuctionMeta = datatypes.NewJSONType(a.Meta().Clone())
	if a.Tournament != nil {
		t := a.Tournament.Clone()
		a.Tournament = &t
	}
	return a
}
