package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/sse"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/cricket-auction-backend/internal/broadcast"
	"github.com/DoyleJ11/cricket-auction-backend/internal/metrics"
	"github.com/DoyleJ11/cricket-auction-backend/internal/types"
)

// AuctionSSE streams {payload: auction} events for one auction until the
// viewer disconnects.
func AuctionSSE(p *broadcast.Poller, m *metrics.Metrics, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		tournamentID := r.URL.Query().Get("tournamentId")
		auctionID := r.URL.Query().Get("auctionId")
		if tournamentID == "" || auctionID == "" {
			writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "tournamentId and auctionId is required"})
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{Error: "streaming unsupported"})
			return
		}

		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		log := log.With(zap.String("subscriberId", uuid.NewString()), zap.String("auctionId", auctionID))
		defer m.ViewerConnected("sse")()

		err := p.Run(r.Context(), tournamentID, auctionID, func(_ context.Context, snap broadcast.Snapshot) error {
			if err := sse.Encode(w, sse.Event{Data: snap}); err != nil {
				return err
			}
			flusher.Flush()
			m.SnapshotSent("sse")
			return nil
		})
		switch {
		case errors.Is(err, broadcast.ErrSustainedFailure):
			log.Error("closing viewer stream", zap.Error(err))
		case err != nil:
			log.Debug("viewer stream ended", zap.Error(err))
		}
	}
}
