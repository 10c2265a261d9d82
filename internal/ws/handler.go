package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/cricket-auction-backend/internal/broadcast"
	"github.com/DoyleJ11/cricket-auction-backend/internal/metrics"
	"github.com/DoyleJ11/cricket-auction-backend/internal/types"
)

const writeTimeout = 3 * time.Second

// Handler streams the same snapshots as the SSE endpoint over a WebSocket,
// one AuctionSnapshot text frame per poll. Cross-origin viewers are accepted
// only when their host matches one of origins.
func Handler(p *broadcast.Poller, m *metrics.Metrics, log *zap.Logger, origins []string) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentID := r.URL.Query().Get("tournamentId")
		auctionID := r.URL.Query().Get("auctionId")
		if tournamentID == "" || auctionID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: "tournamentId and auctionId is required"})
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: origins})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.CloseNow()

		clientID := uuid.NewString()
		log := log.With(zap.String("clientId", clientID), zap.String("auctionId", auctionID))
		defer m.ViewerConnected("ws")()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Reader loop: viewers have nothing to send, a read error means they left.
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.Read(ctx); err != nil {
					return
				}
				_ = writeFrame(ctx, conn, types.ServerMessage{Type: types.MsgError, Error: "stream is read-only"})
			}
		}()

		err = p.Run(ctx, tournamentID, auctionID, func(ctx context.Context, snap broadcast.Snapshot) error {
			if err := writeFrame(ctx, conn, types.ServerMessage{Type: types.MsgAuctionSnapshot, Payload: snap.Payload}); err != nil {
				return err
			}
			m.SnapshotSent("ws")
			return nil
		})
		switch {
		case errors.Is(err, broadcast.ErrSustainedFailure):
			log.Error("closing viewer stream", zap.Error(err))
			conn.Close(websocket.StatusInternalError, "snapshot reads failing")
		case err != nil:
			log.Debug("viewer stream ended", zap.Error(err))
		default:
			conn.Close(websocket.StatusNormalClosure, "bye")
		}
	}
}

func writeFrame(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}
