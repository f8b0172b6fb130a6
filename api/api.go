// Package api is the HTTP surface next to the websocket transport: login,
// deck listing, and the health endpoint the keep-alive ping targets.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/NelsWebDev/cwf-backend/config"
	"github.com/NelsWebDev/cwf-backend/game"
	"go.uber.org/zap"
)

type Server struct {
	game *game.Game
	repo game.DeckRepository
	cfg  *config.Config
}

func New(g *game.Game, repo game.DeckRepository, cfg *config.Config) *Server {
	return &Server{game: g, repo: repo, cfg: cfg}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", s.login)
	mux.HandleFunc("/api/decks", s.decks)
	mux.HandleFunc("/health", s.health)
	mux.HandleFunc("/", s.root)
	return mux
}

type loginBody struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// login either resumes an existing session by id or registers a new
// username against the shared game password.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body loginBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if body.ID != "" {
		user, ok := s.game.UserSnapshot(body.ID)
		if !ok {
			writeJSON(w, http.StatusBadRequest, loginResponse{Error: "Session expired. Please login again"})
			return
		}
		writeJSON(w, http.StatusOK, user)
		return
	}

	if body.Username == "" {
		writeJSON(w, http.StatusBadRequest, loginResponse{Error: "Username is required"})
		return
	}
	if body.Password == "" {
		writeJSON(w, http.StatusBadRequest, loginResponse{Error: "Password is required"})
		return
	}
	if body.Password != s.cfg.GamePassword {
		writeJSON(w, http.StatusBadRequest, loginResponse{Error: "invalid"})
		return
	}

	user, err := s.game.RegisterUser(body.Username)
	if err != nil {
		if errors.Is(err, game.ErrUsernameTaken) {
			writeJSON(w, http.StatusBadRequest, loginResponse{Error: err.Error()})
			return
		}
		zap.L().Error("login failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, loginResponse{Error: "Internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Success: true, User: &user})
}

func (s *Server) decks(w http.ResponseWriter, r *http.Request) {
	decks, err := s.repo.FetchAllDecks()
	if err != nil {
		zap.L().Error("list decks failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, loginResponse{Error: "Internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, decks)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.cfg.FrontendURL != "" {
		http.Redirect(w, r, s.cfg.FrontendURL, http.StatusFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type loginResponse struct {
	Success bool                 `json:"success"`
	User    *game.PlayerSnapshot `json:"user,omitempty"`
	Error   string               `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response failed", zap.Error(err))
	}
}
