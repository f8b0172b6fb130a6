package game

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/NelsWebDev/cwf-backend/config"
	"github.com/topfreegames/pitaya/v2"
	"github.com/topfreegames/pitaya/v2/component"
	"github.com/topfreegames/pitaya/v2/constants"
	"github.com/topfreegames/pitaya/v2/session"
	"go.uber.org/zap"
)

// Room is the pitaya component binding every inbound action to the engine.
// Handler method names, lowercased on the first rune, are the wire action
// names the frontend sends.
type Room struct {
	component.Base
	app  pitaya.Pitaya
	cfg  *config.Config
	game *Game

	mu       sync.Mutex
	sessions map[string]map[int64]session.Session
}

// RegisterRoom wires the engine to the pitaya app and returns the game it
// orchestrates.
func RegisterRoom(app pitaya.Pitaya, cfg *config.Config, repo DeckRepository, results ResultRecorder) *Game {
	if err := app.GroupCreate(context.Background(), config.GameRoomName); err != nil {
		panic(err)
	}
	r := &Room{
		app:      app,
		cfg:      cfg,
		sessions: make(map[string]map[int64]session.Session),
	}
	r.game = NewGame(repo, &notifier{app: app, cfg: cfg}, results, cfg.BackendURL)
	app.Register(r,
		component.WithName(config.GameRoomName),
		component.WithNameFunc(lowerCamel),
	)
	return r.game
}

func lowerCamel(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// notifier adapts pitaya's group broadcast and user push to the engine's
// outbound interface.
type notifier struct {
	app pitaya.Pitaya
	cfg *config.Config
}

func (n *notifier) Broadcast(event string, payload interface{}) {
	err := n.app.GroupBroadcast(context.Background(), n.cfg.FrontendType, config.GameRoomName, event, payload)
	if err != nil {
		zap.L().Error("broadcast failed", zap.String("event", event), zap.Error(err))
	}
}

func (n *notifier) SendToPlayer(playerID, event string, payload interface{}) {
	_, err := n.app.SendPushToUsers(event, payload, []string{playerID}, n.cfg.FrontendType)
	if err != nil {
		zap.L().Error("push to player failed", zap.String("event", event), zap.String("player_id", playerID), zap.Error(err))
	}
}

type LoginRequest struct {
	UserID string `json:"userId"`
}

type LoginResponse struct {
	Success bool            `json:"success"`
	User    *PlayerSnapshot `json:"user,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Login binds an already-registered user (see the HTTP login route) to this
// connection and brings them into the room.
func (r *Room) Login(ctx context.Context, msg []byte) (*LoginResponse, error) {
	s := r.app.GetSessionFromCtx(ctx)
	var req LoginRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		return &LoginResponse{Success: false, Error: "invalid login payload"}, nil
	}
	if _, ok := r.game.UserSnapshot(req.UserID); !ok {
		return &LoginResponse{Success: false, Error: "Invalid session. Please login again"}, nil
	}

	if err := s.Bind(ctx, req.UserID); err != nil && err != constants.ErrSessionAlreadyBound {
		return nil, pitaya.Error(err, "CWF-000", map[string]string{"failed": "bind"})
	}
	r.app.GroupAddMember(ctx, config.GameRoomName, s.UID())

	userID := req.UserID
	first := r.trackSession(userID, s)
	profile, err := r.game.PlayerConnected(userID, first)
	if err != nil {
		return &LoginResponse{Success: false, Error: err.Error()}, nil
	}
	s.Push(EventMyProfile, profile)

	s.OnClose(func() {
		r.app.GroupRemoveMember(context.Background(), config.GameRoomName, userID)
		if r.dropSession(userID, s) {
			r.game.PlayerDisconnected(userID)
		}
	})
	return &LoginResponse{Success: true, User: &profile}, nil
}

func (r *Room) Logout(ctx context.Context) {
	s := r.app.GetSessionFromCtx(ctx)
	userID := s.UID()
	if userID == "" {
		return
	}
	r.kickUser(ctx, userID)
	r.game.RemoveUser(userID)
}

func (r *Room) GetPlayers(ctx context.Context) {
	s := r.app.GetSessionFromCtx(ctx)
	s.Push(EventPlayers, r.game.PlayersSnapshot())
}

func (r *Room) KickPlayer(ctx context.Context, msg []byte) {
	var userID string
	if err := json.Unmarshal(msg, &userID); err != nil {
		r.fail(ctx, "", err)
		return
	}
	r.kickUser(ctx, userID)
}

func (r *Room) AddDeck(ctx context.Context, msg []byte) {
	var deckID string
	if err := json.Unmarshal(msg, &deckID); err != nil {
		r.fail(ctx, "", err)
		return
	}
	if err := r.game.AddDeck(deckID); err != nil {
		r.fail(ctx, "", err)
	}
}

func (r *Room) RemoveDeck(ctx context.Context, msg []byte) {
	var deckID string
	if err := json.Unmarshal(msg, &deckID); err != nil {
		r.fail(ctx, "", err)
		return
	}
	if err := r.game.RemoveDeck(deckID); err != nil {
		r.fail(ctx, "", err)
	}
}

func (r *Room) UpdateRules(ctx context.Context, msg []byte) {
	var patch RulesPatch
	if err := json.Unmarshal(msg, &patch); err != nil {
		r.fail(ctx, "", err)
		return
	}
	if err := r.game.UpdateRules(patch); err != nil {
		r.fail(ctx, "", err)
	}
}

func (r *Room) StartGame(ctx context.Context) {
	if err := r.game.Start(); err != nil {
		zap.L().Error("error starting game", zap.Error(err))
		r.fail(ctx, "Failed to start game", err)
	}
}

func (r *Room) EndGame(ctx context.Context) {
	r.game.EndGame()
}

func (r *Room) GetGame(ctx context.Context) {
	s := r.app.GetSessionFromCtx(ctx)
	s.Push(EventGame, r.game.Snapshot())
}

func (r *Room) MyHand(ctx context.Context) {
	s := r.app.GetSessionFromCtx(ctx)
	cards, err := r.game.MyHand(s.UID())
	if err != nil {
		r.fail(ctx, "", err)
		return
	}
	s.Push(EventMyHand, cards)
}

func (r *Room) PlayCards(ctx context.Context, msg []byte) {
	s := r.app.GetSessionFromCtx(ctx)
	var cards []WhiteCard
	if err := json.Unmarshal(msg, &cards); err != nil {
		r.fail(ctx, "", err)
		return
	}
	if err := r.game.PlayCards(s.UID(), cards); err != nil {
		r.fail(ctx, "", err)
	}
}

func (r *Room) UndoPlay(ctx context.Context) {
	s := r.app.GetSessionFromCtx(ctx)
	if err := r.game.UndoPlay(s.UID()); err != nil {
		r.fail(ctx, "", err)
	}
}

func (r *Room) PickWinner(ctx context.Context, msg []byte) {
	s := r.app.GetSessionFromCtx(ctx)
	var cardID string
	if err := json.Unmarshal(msg, &cardID); err != nil {
		r.fail(ctx, "", err)
		return
	}
	if err := r.game.PickWinner(s.UID(), cardID); err != nil {
		r.fail(ctx, "", err)
	}
}

func (r *Room) SkipBlackCard(ctx context.Context) {
	s := r.app.GetSessionFromCtx(ctx)
	if err := r.game.SkipBlackCard(s.UID()); err != nil {
		r.fail(ctx, "", err)
	}
}

func (r *Room) VoteToSkipBlackCard(ctx context.Context, msg []byte) {
	s := r.app.GetSessionFromCtx(ctx)
	vote := true
	if len(msg) > 0 {
		if err := json.Unmarshal(msg, &vote); err != nil {
			r.fail(ctx, "", err)
			return
		}
	}
	if err := r.game.VoteToSkip(s.UID(), vote); err != nil {
		r.fail(ctx, "", err)
	}
}

// fail contains a handler error: the originating connection gets a
// serverMessage, everyone else is unaffected.
func (r *Room) fail(ctx context.Context, title string, err error) {
	if title == "" {
		title = "Whoops!"
	}
	s := r.app.GetSessionFromCtx(ctx)
	zap.L().Error("action failed", zap.String("uid", s.UID()), zap.Error(err))
	if pushErr := s.Push(EventServerMessage, &ServerMessage{Title: title, Message: err.Error()}); pushErr != nil {
		zap.L().Error("push server message failed", zap.Error(pushErr))
	}
}

func (r *Room) kickUser(ctx context.Context, userID string) {
	r.mu.Lock()
	var targets []session.Session
	for _, s := range r.sessions[userID] {
		targets = append(targets, s)
	}
	r.mu.Unlock()
	for _, s := range targets {
		if err := s.Kick(ctx); err != nil {
			zap.L().Error("kick session failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

// trackSession reports whether this is the user's first live connection.
func (r *Room) trackSession(userID string, s session.Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[userID] == nil {
		r.sessions[userID] = make(map[int64]session.Session)
	}
	r.sessions[userID][s.ID()] = s
	return len(r.sessions[userID]) == 1
}

// dropSession reports whether this was the user's last live connection.
func (r *Room) dropSession(userID string, s session.Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions[userID], s.ID())
	if len(r.sessions[userID]) == 0 {
		delete(r.sessions, userID)
		return true
	}
	return false
}
