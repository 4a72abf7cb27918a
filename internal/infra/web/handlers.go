package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

type sessionCreateRequest struct {
	APIKey string `json:"api_key"`
}

// sessionCreateHandler exchanges the API key for a session cookie so
// browser dashboards don't have to hold the key past login.
func (s *Server) sessionCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		var req sessionCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(s.apiKey)) != 1 {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		token, err := s.auth.Mint(w)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to mint session")
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
	}
}

func (s *Server) sessionDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.auth.Clear(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

// statsHandler reports registry size, delivery state and the outcome of
// the most recent broadcast.
func (s *Server) statsHandler() http.HandlerFunc {
	type lastBroadcast struct {
		Total          int     `json:"total"`
		Sent           int     `json:"sent"`
		Unsent         int     `json:"unsent"`
		ElapsedSeconds float64 `json:"elapsed_seconds"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		count, err := s.userUC.Count(ctx)
		if err != nil {
			http.Error(w, "Failed to get totals", http.StatusInternalServerError)
			return
		}

		response := struct {
			TotalUsers       int            `json:"total_users"`
			BroadcastRunning bool           `json:"broadcast_running"`
			LastBroadcast    *lastBroadcast `json:"last_broadcast"`
			OutreachURL      string         `json:"outreach_url"`
		}{
			TotalUsers:       count,
			BroadcastRunning: s.broadcastUC.Busy(),
			OutreachURL:      s.settings.OutreachURL(),
		}
		if report := s.broadcastUC.LastReport(); report != nil {
			response.LastBroadcast = &lastBroadcast{
				Total:          report.Total,
				Sent:           report.Sent,
				Unsent:         report.Unsent,
				ElapsedSeconds: report.Elapsed.Seconds(),
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// usersHandler returns every registered Telegram id in registration
// order, the same order a broadcast visits them.
func (s *Server) usersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := s.userUC.ListIDs(r.Context())
		if err != nil {
			http.Error(w, "Failed to list users", http.StatusInternalServerError)
			return
		}
		if ids == nil {
			ids = []int64{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string][]int64{"ids": ids})
	}
}
