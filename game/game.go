package game

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const minPlayers = 3

// Timer windows, package-scoped so tests can shrink them.
var (
	revealDelay       = 5 * time.Second
	showWinnerDelay   = 8 * time.Second
	evictAfter        = 30 * time.Second
	keepAliveInterval = 14 * time.Minute
)

// Game is the top-level orchestrator of the single session this process
// hosts. One mutex guards the whole aggregate (pool, roster, round, score
// board); critical sections never block on external calls, and every timer
// callback re-validates the state it was scheduled against.
type Game struct {
	mu sync.Mutex

	repo       DeckRepository
	notifier   Notifier
	results    ResultRecorder
	backendURL string

	started   bool
	startedAt time.Time
	rules     Rules
	decks     []*Deck
	pool      *CardPool
	points    map[string]int
	// scoreOrder remembers who scored first; endGame ties resolve in its
	// favor.
	scoreOrder []string
	czar       *Player
	round      *Round
	roster     *Roster

	keepAliveStop chan struct{}
}

func NewGame(repo DeckRepository, notifier Notifier, results ResultRecorder, backendURL string) *Game {
	g := &Game{
		repo:       repo,
		notifier:   notifier,
		results:    results,
		backendURL: backendURL,
		rules:      DefaultRules(),
		pool:       NewCardPool(),
		points:     make(map[string]int),
	}
	g.roster = newRoster(g)
	return g
}

// afterRound schedules fn to run while g.round is still r. A superseded or
// ended round makes the timer a no-op, which stands in for cancellation.
func (g *Game) afterRound(r *Round, d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.round != r {
			return
		}
		fn()
	})
}

// ---- roster + connection lifecycle ----

func (g *Game) RegisterUser(username string) (PlayerSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, err := g.roster.RegisterUser(username)
	if err != nil {
		return PlayerSnapshot{}, err
	}
	return p.Snapshot(), nil
}

func (g *Game) UserSnapshot(id string) (PlayerSnapshot, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.roster.Get(id)
	if !ok {
		return PlayerSnapshot{}, false
	}
	return p.Snapshot(), true
}

func (g *Game) RemoveUser(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.roster.Remove(id)
}

// PlayerConnected marks the user active. first is true for the user's first
// live connection; only that one announces the join to the room.
func (g *Game) PlayerConnected(id string, first bool) (PlayerSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.roster.Get(id)
	if !ok {
		return PlayerSnapshot{}, ErrUserNotFound
	}
	if len(g.roster.ActiveUsers()) < minPlayers {
		g.notifier.Broadcast(EventCloseModal, nil)
	}
	p.SetActive(true)
	if first {
		g.notifier.Broadcast(EventPlayerJoined, p.Snapshot())
	}
	return p.Snapshot(), nil
}

// PlayerDisconnected runs when the user's last connection closed. A czar
// vanishing mid-collection would leave the round stuck waiting on a judge,
// so everyone's plays go back to their hands and the round advances.
func (g *Game) PlayerDisconnected(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.roster.Get(id)
	if !ok {
		return
	}
	p.SetActive(false)
	g.notifier.Broadcast(EventPlayerLeft, p.ID)

	if g.round != nil && g.round.Czar.ID == p.ID && g.round.status == WaitingForPlayers {
		for _, u := range g.roster.ActiveUsers() {
			g.round.returnPlayerCards(u)
		}
		g.nextRoundLocked()
	}
}

// ---- pre-game configuration ----

func (g *Game) AddDeck(deckID string) error {
	g.mu.Lock()
	for _, d := range g.decks {
		if d.ID == deckID {
			g.mu.Unlock()
			return nil
		}
	}
	if g.started {
		g.mu.Unlock()
		return ErrGameAlreadyStarted
	}
	g.mu.Unlock()

	deck, err := g.repo.FetchDeck(deckID)
	if err != nil {
		return err
	}
	if deck == nil {
		return ErrDeckNotFound
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	// The fetch yielded; the game may have started or the deck may have
	// been added by another connection in the meantime.
	if g.started {
		return ErrGameAlreadyStarted
	}
	for _, d := range g.decks {
		if d.ID == deckID {
			return nil
		}
	}
	g.decks = append(g.decks, deck)
	g.notifier.Broadcast(EventDecks, g.decks)
	return nil
}

func (g *Game) RemoveDeck(deckID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started {
		return ErrGameAlreadyStarted
	}
	for i, d := range g.decks {
		if d.ID == deckID {
			g.decks = append(g.decks[:i], g.decks[i+1:]...)
			g.notifier.Broadcast(EventDecks, g.decks)
			return nil
		}
	}
	return nil
}

func (g *Game) UpdateRules(patch RulesPatch) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started {
		return ErrGameAlreadyStarted
	}
	g.rules = g.rules.apply(patch)
	g.notifier.Broadcast(EventRules, g.rules)
	return nil
}

func (g *Game) Rules() Rules {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rules
}

// ---- lifecycle ----

// Start validates, fetches the selected decks' cards, builds the pools,
// deals hands and opens the first round. The card fetch happens outside the
// lock, so every precondition is checked again after it returns.
func (g *Game) Start() error {
	g.mu.Lock()
	if g.started {
		g.mu.Unlock()
		return ErrGameAlreadyStarted
	}
	if len(g.roster.ActiveUsers()) < minPlayers {
		g.mu.Unlock()
		return ErrNotEnoughPlayers
	}
	deckIDs := make([]string, 0, len(g.decks))
	for _, d := range g.decks {
		deckIDs = append(deckIDs, d.ID)
	}
	rules := g.rules
	g.mu.Unlock()

	blackCards, whiteCards, err := g.repo.FetchCards(deckIDs, rules)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started {
		return ErrGameAlreadyStarted
	}
	players := g.roster.ActiveUsers()
	if len(players) < minPlayers {
		return ErrNotEnoughPlayers
	}

	if len(blackCards) < MinBlackCards(len(players), g.rules.PointsToWin) {
		return ErrNotEnoughBlackCards
	}
	whitePool, err := buildWhitePool(whiteCards, WhiteCardsNeeded(len(players), g.rules.PointsToWin), g.rules.NumberOfCustomCards)
	if err != nil {
		return err
	}
	g.pool.LoadBlack(blackCards)
	g.pool.LoadWhite(whitePool)

	for _, p := range players {
		cards, err := g.pool.DrawWhite(cardsInHand)
		if err != nil {
			return err
		}
		p.AddCardsToHand(cards)
	}

	g.started = true
	g.startedAt = time.Now()
	g.moveToNextCzar()
	black, err := g.pool.DrawBlack()
	if err != nil {
		return err
	}
	g.round = newRound(g, black, g.czar)
	g.emitGameLocked()
	g.startKeepAlive()
	return nil
}

func (g *Game) EndGame() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.endGameLocked()
}

func (g *Game) endGameLocked() {
	g.stopKeepAlive()

	winnerName := ""
	if w := g.winningPlayerLocked(); w != nil {
		winnerName = w.Username
		if g.results != nil && g.started {
			points := g.points[w.ID]
			startedAt := g.startedAt
			go func() {
				if err := g.results.RecordResult(winnerName, points, startedAt, time.Now()); err != nil {
					zap.L().Error("record game result", zap.Error(err))
				}
			}()
		}
	}

	g.czar = nil
	g.points = make(map[string]int)
	g.scoreOrder = nil
	g.pool.Reset()
	g.started = false
	g.round = nil
	for _, p := range g.roster.AllUsers() {
		p.ClearHand()
	}
	g.notifier.Broadcast(EventGameEnded, winnerName)
	g.emitGameLocked()
}

// nextRoundLocked deals replacement cards to everyone who just played,
// rotates the czar and opens a fresh round on the next prompt.
func (g *Game) nextRoundLocked() {
	if !g.started {
		return
	}
	outgoing := g.round
	pick := outgoing.Black.Pick

	for _, cards := range outgoing.plays {
		g.pool.Recycle(cards)
	}
	for _, p := range g.roster.ActiveUsers() {
		if p.ID == outgoing.Czar.ID {
			continue
		}
		cards, err := g.pool.DrawWhite(pick)
		if err != nil {
			zap.L().Error("redraw cards for next round", zap.String("username", p.Username), zap.Error(err))
			continue
		}
		p.AddCardsToHand(cards)
	}

	g.moveToNextCzar()
	black, err := g.pool.DrawBlack()
	if err != nil {
		zap.L().Error("draw black card for next round", zap.Error(err))
		g.endGameLocked()
		return
	}
	g.round = newRound(g, black, g.czar)
	g.emitGameLocked()
}

// skipBlackCardLocked discards the current prompt, hands every submission
// back, and restarts the round with the same czar.
func (g *Game) skipBlackCardLocked() {
	outgoing := g.round
	outgoing.Black.State = CardSkipped
	czar := outgoing.Czar
	black, err := g.pool.DrawBlack()
	if err != nil {
		zap.L().Error("draw black card for skip", zap.Error(err))
		g.endGameLocked()
		return
	}
	for userID, cards := range outgoing.plays {
		for _, c := range cards {
			if c.IsCustom {
				c.Text = ""
			}
		}
		if p, ok := g.roster.Get(userID); ok {
			p.AddCardsToHand(cards)
		}
	}
	g.round = newRound(g, black, czar)
	g.emitGameLocked()
}

// ---- player actions ----

func (g *Game) player(id string) (*Player, error) {
	p, ok := g.roster.Get(id)
	if !ok {
		return nil, ErrUserNotFound
	}
	return p, nil
}

func (g *Game) PlayCards(userID string, cards []WhiteCard) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, err := g.player(userID)
	if err != nil {
		return err
	}
	if g.round == nil {
		return nil
	}
	return g.round.PlayCards(p, cards)
}

func (g *Game) UndoPlay(userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, err := g.player(userID)
	if err != nil {
		return err
	}
	if g.round == nil {
		return nil
	}
	return g.round.UndoPlay(p)
}

func (g *Game) PickWinner(userID, cardID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, err := g.player(userID)
	if err != nil {
		return err
	}
	if g.round == nil {
		return nil
	}
	return g.round.SelectWinner(p, cardID)
}

func (g *Game) VoteToSkip(userID string, vote bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, err := g.player(userID)
	if err != nil {
		return err
	}
	if g.round == nil {
		return nil
	}
	return g.round.VoteToSkip(p, vote)
}

func (g *Game) SkipBlackCard(userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, err := g.player(userID)
	if err != nil {
		return err
	}
	if g.round == nil {
		return nil
	}
	if g.round.Czar.ID != p.ID {
		return ErrNotCzar
	}
	g.skipBlackCardLocked()
	return nil
}

func (g *Game) MyHand(userID string) ([]*WhiteCard, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, err := g.player(userID)
	if err != nil {
		return nil, err
	}
	return p.HandCards(), nil
}

// ---- score board ----

func (g *Game) addPoint(userID string) int {
	if _, scored := g.points[userID]; !scored {
		g.scoreOrder = append(g.scoreOrder, userID)
	}
	g.points[userID]++
	return g.points[userID]
}

func (g *Game) highScore() int {
	high := 0
	for _, p := range g.points {
		if p > high {
			high = p
		}
	}
	return high
}

func (g *Game) winningPlayerLocked() *Player {
	high := g.highScore()
	if high == 0 {
		return nil
	}
	for _, userID := range g.scoreOrder {
		if g.points[userID] == high {
			if p, ok := g.roster.Get(userID); ok {
				return p
			}
		}
	}
	return nil
}

// ---- czar rotation ----

// moveToNextCzar advances round-robin over the current active ordering. The
// first ever czar is picked uniformly at random; a departed czar restarts
// rotation from the head of the list.
func (g *Game) moveToNextCzar() {
	active := g.roster.ActiveUsers()
	if len(active) == 0 {
		g.czar = nil
		return
	}
	if g.czar == nil {
		g.czar = active[rand.Intn(len(active))]
		return
	}
	current := -1
	for i, p := range active {
		if p.ID == g.czar.ID {
			current = i
			break
		}
	}
	if current == -1 {
		g.czar = active[0]
		return
	}
	g.czar = active[(current+1)%len(active)]
}

// ---- snapshots ----

func (g *Game) Snapshot() GameSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Game) snapshotLocked() GameSnapshot {
	active := g.roster.ActiveUsers()
	players := make([]PlayerSnapshot, 0, len(active))
	for _, p := range active {
		players = append(players, p.Snapshot())
	}
	snap := GameSnapshot{
		Started: g.started,
		Rules:   g.rules,
		Decks:   g.decks,
		Players: players,
	}
	if g.round != nil {
		snap.CurrentRound = g.round.Snapshot()
	}
	return snap
}

func (g *Game) PlayersSnapshot() []PlayerSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	active := g.roster.ActiveUsers()
	players := make([]PlayerSnapshot, 0, len(active))
	for _, p := range active {
		players = append(players, p.Snapshot())
	}
	return players
}

func (g *Game) emitGameLocked() {
	g.notifier.Broadcast(EventGame, g.snapshotLocked())
}

// ---- keep-alive ----

// The hosting platform reclaims idle processes; while a game is running a
// periodic ping keeps it warm. Purely operational, no game state involved.
func (g *Game) startKeepAlive() {
	if g.backendURL == "" {
		return
	}
	stop := make(chan struct{})
	g.keepAliveStop = stop
	url := g.backendURL + "/health"
	go func() {
		pingHealth(url)
		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				zap.L().Info("game health check while game is running")
				pingHealth(url)
			case <-stop:
				return
			}
		}
	}()
}

func (g *Game) stopKeepAlive() {
	if g.keepAliveStop != nil {
		close(g.keepAliveStop)
		g.keepAliveStop = nil
	}
}

func pingHealth(url string) {
	resp, err := http.Get(url)
	if err != nil {
		zap.L().Warn("health ping failed", zap.Error(err))
		return
	}
	resp.Body.Close()
}
