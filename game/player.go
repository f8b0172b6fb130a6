package game

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Player is one participant: identity, hand and presence. All methods expect
// the owning Game's mutex to be held.
type Player struct {
	ID       string
	Username string

	g      *Game
	active bool
	hand   map[string]*WhiteCard
	evict  *time.Timer
}

func newPlayer(g *Game, username string) *Player {
	p := &Player{
		ID:       uuid.NewString(),
		Username: username,
		g:        g,
		hand:     make(map[string]*WhiteCard),
	}
	// Late joiners of a running game get a hand right away. The player has
	// no connection yet, so the cards are dealt silently.
	if g.started {
		cards, err := g.pool.DrawWhite(cardsInHand)
		if err != nil {
			zap.L().Error("deal hand to new player", zap.String("username", username), zap.Error(err))
			return p
		}
		for _, c := range cards {
			p.hand[c.ID] = c
		}
	}
	return p
}

func (p *Player) Active() bool {
	return p.active
}

func (p *Player) HandCards() []*WhiteCard {
	cards := make([]*WhiteCard, 0, len(p.hand))
	for _, c := range p.hand {
		cards = append(cards, c)
	}
	return cards
}

func (p *Player) AddCardsToHand(cards []*WhiteCard) {
	for _, c := range cards {
		p.hand[c.ID] = c
	}
	p.g.notifier.SendToPlayer(p.ID, EventGivenCards, cards)
}

func (p *Player) RemoveCardsFromHand(cards []*WhiteCard) {
	for _, c := range cards {
		delete(p.hand, c.ID)
	}
	p.g.notifier.SendToPlayer(p.ID, EventMyHand, p.HandCards())
}

func (p *Player) ClearHand() {
	p.hand = make(map[string]*WhiteCard)
}

// SetActive tracks presence. Going inactive starts the eviction grace timer
// and, when a running game drops below quorum, signals observers to hold the
// game before the timer ever fires. Coming back cancels a pending eviction.
func (p *Player) SetActive(active bool) {
	if p.active == active {
		return
	}
	p.active = active

	if active {
		if p.evict != nil {
			p.evict.Stop()
			p.evict = nil
		}
		return
	}

	zap.L().Info("user went inactive", zap.String("username", p.Username))
	if p.g.started && len(p.g.roster.ActiveUsers()) < minPlayers {
		p.g.notifier.Broadcast(EventHoldGame, nil)
	}
	p.evict = time.AfterFunc(evictAfter, func() {
		p.g.mu.Lock()
		defer p.g.mu.Unlock()
		if p.active {
			return
		}
		if _, ok := p.g.roster.Get(p.ID); !ok {
			return
		}
		zap.L().Info("user deleted due to inactivity", zap.String("username", p.Username))
		p.g.roster.Remove(p.ID)
		if p.g.started && len(p.g.roster.ActiveUsers()) < minPlayers {
			p.g.endGameLocked()
		}
	})
}

func (p *Player) Snapshot() PlayerSnapshot {
	isCzar := p.g.czar != nil && p.g.czar.ID == p.ID
	return PlayerSnapshot{
		ID:         p.ID,
		Username:   p.Username,
		IsActive:   p.active,
		Points:     p.g.points[p.ID],
		IsCardCzar: isCzar,
	}
}
