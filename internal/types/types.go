package types

import "github.com/DoyleJ11/cricket-auction-backend/internal/models"

const (
	MsgAuctionSnapshot = "AuctionSnapshot"
	MsgError           = "Error"
)

type ServerMessage struct {
	Type    string          `json:"type"` // "AuctionSnapshot" | "Error"
	Payload *models.Auction `json:"payload"`
	Error   string          `json:"error,omitempty"`
}

// ErrorResponse is the body of a rejected stream request.
type ErrorResponse struct {
	Error string `json:"error"`
}
