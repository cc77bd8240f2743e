package server

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/roach88/crease/internal/api"
	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/ir"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"engine":  ir.EngineVersion,
		"version": ir.WireVersion,
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, s.eng.Formats().Names())
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.eng.ListTeams(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, teams)
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var req api.CreateTeamRequest
	if !decode(w, r, &req) {
		return
	}
	team, err := s.eng.CreateTeam(r.Context(), req.Name, req.Players)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, team)
}

func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.eng.DeleteTeam(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, api.Deleted{ID: id})
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.eng.ListMatches(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, matches)
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req api.CreateMatchRequest
	if !decode(w, r, &req) {
		return
	}
	snap, err := s.eng.CreateMatch(r.Context(), engine.NewMatch{
		Team1ID:       req.Team1ID,
		Team2ID:       req.Team2ID,
		Format:        req.Format,
		TournamentID:  req.TournamentID,
		Venue:         req.Venue,
		ScheduledDate: req.ScheduledDate,
	})
	s.respondSnapshot(w, r, http.StatusCreated, snap, err)
}

func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.eng.DeleteMatch(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, api.Deleted{ID: id})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	snap, err := s.eng.LiveSnapshot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	etag := `"` + snap.Version + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeData(w, http.StatusOK, snap)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	snap, err := s.eng.UndoLastDelivery(r.Context(), mux.Vars(r)["id"])
	s.respondSnapshot(w, r, http.StatusOK, snap, err)
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	snap, err := s.eng.AbandonMatch(r.Context(), mux.Vars(r)["id"])
	s.respondSnapshot(w, r, http.StatusOK, snap, err)
}

func (s *Server) handleStartInnings(w http.ResponseWriter, r *http.Request) {
	var req api.StartInningsRequest
	if !decode(w, r, &req) {
		return
	}
	snap, err := s.eng.StartInnings(r.Context(), req.MatchID, req.BattingTeamID, req.BowlingTeamID, req.InningNumber)
	s.respondSnapshot(w, r, http.StatusCreated, snap, err)
}

func (s *Server) handleRecordDelivery(w http.ResponseWriter, r *http.Request) {
	var req api.RecordDeliveryRequest
	if !decode(w, r, &req) {
		return
	}
	snap, err := s.eng.RecordDelivery(r.Context(), engine.DeliveryInput{
		InningsID:   mux.Vars(r)["id"],
		OverNumber:  req.OverNumber,
		BallNumber:  req.BallNumber,
		RunsOffBat:  req.RunsOffBat,
		Extra:       req.ExtraType,
		Wicket:      req.WicketType,
		OutPlayerID: req.OutPlayerID,
	})
	s.respondSnapshot(w, r, http.StatusCreated, snap, err)
}

func (s *Server) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	var req api.AssignRoleRequest
	if !decode(w, r, &req) {
		return
	}
	snap, err := s.eng.AssignRole(r.Context(), mux.Vars(r)["id"], req.PlayerID, req.Role)
	s.respondSnapshot(w, r, http.StatusOK, snap, err)
}

func (s *Server) handleEndInnings(w http.ResponseWriter, r *http.Request) {
	var req api.EndInningsRequest
	if !decode(w, r, &req) {
		return
	}
	snap, err := s.eng.EndInnings(r.Context(), mux.Vars(r)["id"], req.Reason)
	s.respondSnapshot(w, r, http.StatusOK, snap, err)
}

func (s *Server) respondSnapshot(w http.ResponseWriter, r *http.Request, status int, snap *ir.Snapshot, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("ETag", `"`+snap.Version+`"`)
	writeData(w, status, snap)
}
