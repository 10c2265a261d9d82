package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/DoyleJ11/cricket-auction-backend/internal/models"
)

var ErrInvalidTransition = errors.New("invalid status transition")
var ErrUnknownStatus = errors.New("unknown auction status")
var ErrEmptyGroup = errors.New("group label is required")
var ErrUnknownGroup = errors.New("group not configured for tournament")
var ErrGroupAlreadySet = errors.New("group already selected")
var ErrGroupNotSet = errors.New("group not selected")
var ErrEmptyPlayer = errors.New("player id is required")
var ErrPlayerAlreadySet = errors.New("player already selected")
var ErrPlayerNotInGroup = errors.New("player not in current group")
var ErrUnknownChangeKey = errors.New("unsupported change key")
var ErrUnsupportedCommand = errors.New("unsupported command")

type CommandType string

const (
	CmdSetStatus    CommandType = "SetStatus"
	CmdSelectGroup  CommandType = "SelectGroup"
	CmdSelectPlayer CommandType = "SelectPlayer"
	CmdClearPlayer  CommandType = "ClearPlayer"
	CmdClearGroup   CommandType = "ClearGroup"
)

type Command struct {
	Type     CommandType
	Status   models.AuctionStatus
	Group    string
	PlayerID string
}

// State is the mutable part of an Auction row.
type State struct {
	Status models.AuctionStatus
	Meta   models.AuctionMeta
}

// Roster is the tournament data a command is checked against.
// Players only needs to hold the players of the current group.
type Roster struct {
	Groups  []string
	Players []models.Player
}

// Apply validates cmd against s and returns the change key to persist with
// the new state. On error the original state is returned untouched.
func Apply(s State, cmd Command, roster Roster) (models.ChangeKey, State, error) {
	newState := State{Status: s.Status, Meta: s.Meta.Clone()}

	switch cmd.Type {
	case CmdSetStatus:
		if !cmd.Status.Valid() {
			return "", s, ErrUnknownStatus
		}
		if !CanTransition(s.Status, cmd.Status) {
			return "", s, fmt.Errorf("%w: %q to %q, allowed %q", ErrInvalidTransition, s.Status, cmd.Status, NextStatuses(s.Status))
		}
		newState.Status = cmd.Status
		return models.ChangeStatus, newState, nil

	case CmdSelectGroup:
		if s.Meta.CurrentGroup != "" {
			return "", s, ErrGroupAlreadySet
		}
		if cmd.Group == "" {
			return "", s, ErrEmptyGroup
		}
		if len(roster.Groups) > 0 && !slices.Contains(roster.Groups, cmd.Group) {
			return "", s, ErrUnknownGroup
		}
		newState.Meta.CurrentGroup = cmd.Group
		return models.ChangeGroup, newState, nil

	case CmdSelectPlayer:
		if s.Meta.CurrentGroup == "" {
			return "", s, ErrGroupNotSet
		}
		if playerSelected(s.Meta) {
			return "", s, ErrPlayerAlreadySet
		}
		if cmd.PlayerID == "" {
			return "", s, ErrEmptyPlayer
		}
		group := groupPlayers(roster.Players, s.Meta.CurrentGroup)
		idx := slices.IndexFunc(group, func(p models.Player) bool { return p.ID == cmd.PlayerID })
		if idx < 0 {
			return "", s, ErrPlayerNotInGroup
		}
		p := group[idx]

		newState.Meta.CurrentPlayer = models.CurrentPlayer{
			ID:     p.ID,
			Name:   p.Name,
			ImgURL: p.ImgURL,
			Role:   p.Role,
		}
		newState.Meta.CurrentBid = 0
		if p.BasePrice != nil {
			newState.Meta.CurrentBid = *p.BasePrice
		}
		newState.Meta.TotalPlayers = len(group)
		newState.Meta.SoldPlayers = countSold(group)
		return models.ChangePlayer, newState, nil

	case CmdClearPlayer:
		clearPlayer(&newState.Meta)
		return models.ChangePlayer, newState, nil

	case CmdClearGroup:
		newState.Meta = models.EmptyMeta()
		return models.ChangeGroup, newState, nil

	default:
		return "", s, ErrUnsupportedCommand
	}
}

// CommandFromMeta maps a whole-meta update tagged with key onto the command
// the machine understands. Only the field the key names is taken from meta.
func CommandFromMeta(meta models.AuctionMeta, key models.ChangeKey) (Command, error) {
	switch key {
	case models.ChangeGroup:
		return Command{Type: CmdSelectGroup, Group: meta.CurrentGroup}, nil
	case models.ChangePlayer:
		return Command{Type: CmdSelectPlayer, PlayerID: meta.CurrentPlayer.ID}, nil
	default:
		return Command{}, ErrUnknownChangeKey
	}
}

func playerSelected(m models.AuctionMeta) bool {
	return m.CurrentPlayer.ID != ""
}

func clearPlayer(m *models.AuctionMeta) {
	m.CurrentPlayer = models.CurrentPlayer{}
	m.CurrentBid = 0
	m.CurrentBidTeam = models.BidTeam{}
	m.HistoryOfBids = []models.Bid{}
}
