package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"showdown-vote/internal/constants"
	"showdown-vote/internal/middleware"
	"showdown-vote/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type voteRequest struct {
	UserID     string `json:"userId"`
	ShowdownID string `json:"showdownId"`
	Choice     string `json:"choice"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeErr renders rejections as-is and hides everything else behind a
// generic INTERNAL_ERROR.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var derr *service.DomainError
	if errors.As(err, &derr) {
		middleware.WriteError(w, derr)
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	middleware.WriteError(w, service.Internal())
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return service.InvalidInput("request body must be a JSON object")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("database not ready")
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "NOT_READY"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}

	userID, err := s.userSvc.Register(r.Context(), req.Name, req.Email)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"userId": userID})
}

func (s *Server) handleRelayState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.MaxSnapshotBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErr(w, r, &service.DomainError{
				Status:  http.StatusRequestEntityTooLarge,
				Code:    service.CodeInvalidInput,
				Message: "snapshot exceeds the size limit",
			})
			return
		}
		writeErr(w, r, service.InvalidInput("failed to read snapshot"))
		return
	}

	if _, err := s.ingestSvc.Ingest(r.Context(), body); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handlePublicState(w http.ResponseWriter, r *http.Request) {
	view, err := s.viewSvc.ActiveView(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCurrentShowdown(w http.ResponseWriter, r *http.Request) {
	current, err := s.viewSvc.CurrentShowdown(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, current)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}

	result, err := s.voteSvc.CastVote(r.Context(), req.UserID, req.ShowdownID, req.Choice)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	tally, err := s.voteSvc.Tally(r.Context(), mux.Vars(r)["showdownId"])
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tally)
}
