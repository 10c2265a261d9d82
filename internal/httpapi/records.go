package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DoyleJ11/cricket-auction-backend/internal/models"
	"github.com/DoyleJ11/cricket-auction-backend/internal/records"
	"github.com/DoyleJ11/cricket-auction-backend/internal/store"
)

func CreateTournament(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t models.Tournament
		if err := decode(r, &t); err != nil {
			badBody(w, err)
			return
		}
		writeResult(w, http.StatusCreated, svc.CreateTournament(r.Context(), t))
	}
}

func ListTournaments(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, http.StatusOK, svc.ReadAllTournaments(r.Context()))
	}
}

func GetTournament(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, http.StatusOK, svc.ReadTournament(r.Context(), chi.URLParam(r, "id")))
	}
}

func UpdateTournament(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t models.Tournament
		if err := decode(r, &t); err != nil {
			badBody(w, err)
			return
		}
		t.ID = chi.URLParam(r, "id")
		writeResult(w, http.StatusOK, svc.UpdateTournament(r.Context(), t))
	}
}

func DeleteTournament(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, http.StatusOK, svc.DeleteTournament(r.Context(), chi.URLParam(r, "id")))
	}
}

func CreateTeam(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t models.Team
		if err := decode(r, &t); err != nil {
			badBody(w, err)
			return
		}
		t.TournamentID = chi.URLParam(r, "id")
		writeResult(w, http.StatusCreated, svc.CreateTeam(r.Context(), t))
	}
}

func ListTeams(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, http.StatusOK, svc.ReadTeamsByTournament(r.Context(), chi.URLParam(r, "id")))
	}
}

func GetTeam(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, http.StatusOK, svc.ReadTeam(r.Context(), chi.URLParam(r, "id")))
	}
}

func UpdateTeam(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t models.Team
		if err := decode(r, &t); err != nil {
			badBody(w, err)
			return
		}
		t.ID = chi.URLParam(r, "id")
		writeResult(w, http.StatusOK, svc.UpdateTeam(r.Context(), t))
	}
}

func DeleteTeam(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, http.StatusOK, svc.DeleteTeam(r.Context(), chi.URLParam(r, "id")))
	}
}

func ListTeamPlayers(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := store.PlayerFilter{TeamID: chi.URLParam(r, "id")}
		writeResult(w, http.StatusOK, svc.ReadPlayers(r.Context(), f))
	}
}

func CreatePlayer(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p models.Player
		if err := decode(r, &p); err != nil {
			badBody(w, err)
			return
		}
		p.TournamentID = chi.URLParam(r, "id")
		writeResult(w, http.StatusCreated, svc.CreatePlayer(r.Context(), p))
	}
}

// ListPlayers takes an optional ?group= filter.
func ListPlayers(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := store.PlayerFilter{
			TournamentID: chi.URLParam(r, "id"),
			Group:        r.URL.Query().Get("group"),
		}
		writeResult(w, http.StatusOK, svc.ReadPlayers(r.Context(), f))
	}
}

func GetPlayer(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, http.StatusOK, svc.ReadPlayer(r.Context(), chi.URLParam(r, "id")))
	}
}

func UpdatePlayer(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p models.Player
		if err := decode(r, &p); err != nil {
			badBody(w, err)
			return
		}
		p.ID = chi.URLParam(r, "id")
		writeResult(w, http.StatusOK, svc.UpdatePlayer(r.Context(), p))
	}
}

func DeletePlayer(svc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, http.StatusOK, svc.DeletePlayer(r.Context(), chi.URLParam(r, "id")))
	}
}
