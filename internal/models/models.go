package models

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

type AuctionStatus string

const (
	StatusNotStarted AuctionStatus = "Not Started"
	StatusInProgress AuctionStatus = "In Progress"
	StatusPaused     AuctionStatus = "Paused"
	StatusCompleted  AuctionStatus = "Completed"
)

func (s AuctionStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

// ChangeKey tags the kind of the most recent mutation on an Auction.
type ChangeKey string

const (
	ChangeInit   ChangeKey = "INIT"
	ChangeStatus ChangeKey = "STATUS_CHANGE"
	ChangeGroup  ChangeKey = "GROUP_CHANGE"
	ChangePlayer ChangeKey = "PLAYER_CHANGE"
)

func (k ChangeKey) Valid() bool {
	switch k {
	case ChangeInit, ChangeStatus, ChangeGroup, ChangePlayer:
		return true
	}
	return false
}

type PlayerRole string

const (
	RoleBatsman    PlayerRole = "Batsman"
	RoleBowler     PlayerRole = "Bowler"
	RoleAllRounder PlayerRole = "All-Rounder"
)

func (r PlayerRole) Valid() bool {
	switch r {
	case RoleBatsman, RoleBowler, RoleAllRounder:
		return true
	}
	return false
}

type TShirtSize string

const (
	SizeS   TShirtSize = "S"
	SizeM   TShirtSize = "M"
	SizeL   TShirtSize = "L"
	SizeXL  TShirtSize = "XL"
	Size2XL TShirtSize = "2XL"
	Size3XL TShirtSize = "3XL"
	Size4XL TShirtSize = "4XL"
)

type PowerOver string

const (
	PowerOverFirstX   PowerOver = "In first x Overs"
	PowerOverAny      PowerOver = "Any Over"
	PowerOverLastBall PowerOver = "Last ball of Every Over"
)

type TeamColor struct {
	TeamID string `json:"teamId"`
	Color  string `json:"color"`
}

type OtherSettings struct {
	Groups     []string    `json:"groups"`
	TeamColors []TeamColor `json:"teamColors,omitempty"`
}

type Tournament struct {
	ID               string                            `gorm:"primaryKey;size:16" json:"id"`
	CreatedAt        time.Time                         `json:"createdAt"`
	UpdatedAt        time.Time                         `json:"updatedAt"`
	Name             string                            `gorm:"not null;uniqueIndex" json:"name"`
	TotalTeams       int                               `gorm:"default:0" json:"totalTeams"`
	LogoURL          string                            `json:"logo_url"`
	BannerURL        string                            `json:"banner_url"`
	PlayersPerTeam   int                               `gorm:"default:0" json:"playersPerTeam"`
	NumOfOvers       int                               `gorm:"default:0" json:"numOfOvers"`
	Date             *time.Time                        `gorm:"type:date" json:"date,omitempty"`
	PowerOver        PowerOver                         `gorm:"type:text;not null;default:'In first x Overs'" json:"powerOver"`
	XOver            int                               `gorm:"default:0" json:"xOver"`
	TotalMatches     int                               `gorm:"default:0" json:"totalMatches"`
	OtherSettings    datatypes.JSONType[OtherSettings] `gorm:"type:jsonb" json:"otherSettings"`
	CurrentAuctionID *string                           `gorm:"size:16" json:"currentAuctionId"`
}

// Groups returns the configured group labels in order.
func (t *Tournament) Groups() []string {
	return t.OtherSettings.Data().Groups
}

func (t Tournament) Clone() Tournament {
	s := t.OtherSettings.Data()
	s.Groups = slices.Clone(s.Groups)
	s.TeamColors = slices.Clone(s.TeamColors)
	t.OtherSettings = datatypes.NewJSONType(s)
	if t.CurrentAuctionID != nil {
		id := *t.CurrentAuctionID
		t.CurrentAuctionID = &id
	}
	return t
}

type Team struct {
	ID           string      `gorm:"primaryKey;size:16" json:"id"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	Name         string      `gorm:"not null;uniqueIndex" json:"name"`
	OwnerName    string      `json:"ownerName"`
	ShirtColor   string      `json:"shirtColor"`
	ImgURL       string      `json:"img_url"`
	TournamentID string      `gorm:"size:16;not null;index" json:"tournamentId"`
	Tournament   *Tournament `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type Player struct {
	ID           string      `gorm:"primaryKey;size:16" json:"id"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	Name         string      `gorm:"not null;uniqueIndex" json:"name"`
	ImgURL       string      `json:"img_url"`
	TShirtSize   TShirtSize  `gorm:"column:size;type:text;not null;default:'L'" json:"tShirtSize"`
	Role         PlayerRole  `gorm:"type:text;not null;default:'Batsman'" json:"role"`
	BasePrice    *int        `json:"basePrice"`
	Group        string      `gorm:"index" json:"group"`
	TeamID       *string     `gorm:"size:16;index" json:"teamId"`
	Team         *Team       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	TournamentID string      `gorm:"size:16;not null;index" json:"tournamentId"`
	Tournament   *Tournament `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Sold reports whether a team has acquired the player.
func (p *Player) Sold() bool {
	return p.TeamID != nil && *p.TeamID != ""
}

func (p Player) Clone() Player {
	if p.BasePrice != nil {
		v := *p.BasePrice
		p.BasePrice = &v
	}
	if p.TeamID != nil {
		v := *p.TeamID
		p.TeamID = &v
	}
	return p
}
