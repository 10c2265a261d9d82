package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DoyleJ11/cricket-auction-backend/internal/auction"
	"github.com/DoyleJ11/cricket-auction-backend/internal/models"
)

func CreateAuction(svc *auction.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TournamentID string `json:"tournamentId"`
		}
		if err := decode(r, &body); err != nil {
			badBody(w, err)
			return
		}
		writeResult(w, http.StatusCreated, svc.CreateAuction(r.Context(), body.TournamentID))
	}
}

func ListAuctions(svc *auction.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, http.StatusOK, svc.ReadAllAuctions(r.Context()))
	}
}

func GetAuction(svc *auction.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, http.StatusOK, svc.ReadAuction(r.Context(), chi.URLParam(r, "id")))
	}
}

func UpdateAuction(svc *auction.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auction.UpdateRequest
		if err := decode(r, &req); err != nil {
			badBody(w, err)
			return
		}
		req.ID = chi.URLParam(r, "id")
		writeResult(w, http.StatusOK, svc.UpdateAuction(r.Context(), req))
	}
}

func DeleteAuction(svc *auction.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, http.StatusOK, svc.DeleteAuction(r.Context(), chi.URLParam(r, "id")))
	}
}

func SetAuctionStatus(svc *auction.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status models.AuctionStatus `json:"status"`
		}
		if err := decode(r, &body); err != nil {
			badBody(w, err)
			return
		}
		writeResult(w, http.StatusOK, svc.ApplyStatusChange(r.Context(), chi.URLParam(r, "id"), body.Status))
	}
}

func SelectGroup(svc *auction.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Group string `json:"group"`
		}
		if err := decode(r, &body); err != nil {
			badBody(w, err)
			return
		}
		writeResult(w, http.StatusOK, svc.SelectGroup(r.Context(), chi.URLParam(r, "id"), body.Group))
	}
}

func SelectPlayer(svc *auction.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PlayerID string `json:"playerId"`
		}
		if err := decode(r, &body); err != nil {
			badBody(w, err)
			return
		}
		writeResult(w, http.StatusOK, svc.SelectPlayer(r.Context(), chi.URLParam(r, "id"), body.PlayerID))
	}
}

func ClearPlayer(svc *auction.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, http.StatusOK, svc.ClearPlayer(r.Context(), chi.URLParam(r, "id")))
	}
}

func ClearGroup(svc *auction.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, http.StatusOK, svc.ClearGroup(r.Context(), chi.URLParam(r, "id")))
	}
}
