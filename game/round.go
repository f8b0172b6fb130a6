package game

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RoundStatus string

const (
	WaitingForPlayers RoundStatus = "WAITING_FOR_PLAYERS"
	SelectingWinner   RoundStatus = "SELECTING_WINNER"
	ShowingWinner     RoundStatus = "SHOWING_WINNER"
)

// Round is one judged cycle. A round only ever moves forward through its
// statuses; advancing the game constructs a fresh Round instead of rewinding
// this one. All methods expect the Game mutex to be held.
type Round struct {
	ID    string
	Black *BlackCard
	Czar  *Player

	g       *Game
	status  RoundStatus
	plays   map[string][]*WhiteCard
	votes   map[string]bool
	winner  string
	skipped bool
}

func newRound(g *Game, black *BlackCard, czar *Player) *Round {
	return &Round{
		ID:     uuid.NewString(),
		Black:  black,
		Czar:   czar,
		g:      g,
		status: WaitingForPlayers,
		plays:  make(map[string][]*WhiteCard),
		votes:  make(map[string]bool),
	}
}

func (r *Round) Status() RoundStatus {
	return r.status
}

// PlayCards moves the named cards from the player's hand into the round.
// Submitted text only sticks to custom card slots. Once every non-czar
// active player has played, the reveal timer is scheduled; its callback
// re-checks the submission count because undos and disconnects may happen
// in the interim.
func (r *Round) PlayCards(p *Player, submitted []WhiteCard) error {
	if p.ID == r.Czar.ID {
		return ErrCzarCannotPlay
	}
	if r.status != WaitingForPlayers {
		return ErrPlayPhase
	}
	if _, played := r.plays[p.ID]; played {
		return ErrAlreadyPlayed
	}

	cards := make([]*WhiteCard, 0, len(submitted))
	for _, s := range submitted {
		c, ok := p.hand[s.ID]
		if !ok {
			return ErrCardNotInHand
		}
		cards = append(cards, c)
	}
	for i, s := range submitted {
		if cards[i].IsCustom {
			cards[i].Text = s.Text
		}
	}

	r.plays[p.ID] = cards
	p.RemoveCardsFromHand(cards)

	if len(r.plays) == len(r.g.roster.ActiveUsers())-1 {
		r.g.afterRound(r, revealDelay, func() {
			if r.status != WaitingForPlayers {
				return
			}
			if len(r.plays) != len(r.g.roster.ActiveUsers())-1 {
				return
			}
			r.status = SelectingWinner
			r.g.emitGameLocked()
		})
	}
	r.g.emitGameLocked()
	return nil
}

func (r *Round) UndoPlay(p *Player) error {
	if p.ID == r.Czar.ID {
		return ErrCzarCannotPlay
	}
	if r.status != WaitingForPlayers {
		return ErrUndoPhase
	}
	r.returnPlayerCards(p)
	r.g.emitGameLocked()
	return nil
}

// returnPlayerCards hands a submission back to its owner, wiping any text
// written onto custom slots. No-op when the player has not played.
func (r *Round) returnPlayerCards(p *Player) {
	cards, ok := r.plays[p.ID]
	if !ok {
		return
	}
	delete(r.plays, p.ID)
	for _, c := range cards {
		if c.IsCustom {
			c.Text = ""
		}
	}
	p.AddCardsToHand(cards)
}

// VoteToSkip records a vote against the current black card. The skip fires
// at most once per round, when yes votes strictly exceed half of the
// non-czar active players.
func (r *Round) VoteToSkip(p *Player, vote bool) error {
	if r.status != WaitingForPlayers {
		return ErrVotePhase
	}
	r.votes[p.ID] = vote

	yes := 0
	for _, v := range r.votes {
		if v {
			yes++
		}
	}
	voters := len(r.g.roster.ActiveUsers()) - 1
	zap.L().Info("skip vote recorded", zap.Int("yes", yes), zap.Int("voters", voters))
	r.g.emitGameLocked()
	if !r.skipped && voters > 0 && float64(yes)/float64(voters) > 0.5 {
		r.skipped = true
		zap.L().Info("skipping black card")
		r.g.skipBlackCardLocked()
	}
	return nil
}

// SelectWinner resolves the submitter of the chosen card, awards the point
// and shows the winner. Only the round's czar may call it; the check lives
// here so no caller can forget it.
func (r *Round) SelectWinner(caller *Player, cardID string) error {
	if caller.ID != r.Czar.ID {
		return ErrNotCzar
	}
	if r.status != SelectingWinner {
		return ErrSelectPhase
	}

	winnerID := ""
	for userID, cards := range r.plays {
		for _, c := range cards {
			if c.ID == cardID {
				winnerID = userID
			}
		}
	}
	if winnerID == "" {
		return ErrCardNotFound
	}
	winner, ok := r.g.roster.Get(winnerID)
	if !ok || !winner.Active() {
		return ErrUserNotFound
	}

	points := r.g.addPoint(winnerID)
	zap.L().Info("round won", zap.String("username", winner.Username), zap.Int("points", points))

	r.winner = winnerID
	r.status = ShowingWinner
	r.g.notifier.Broadcast(EventWinnerSelected, winnerID)
	r.Black.State = CardPlayedPreviously

	r.g.afterRound(r, showWinnerDelay, func() {
		if !r.g.started {
			return
		}
		if r.g.highScore() >= r.g.rules.PointsToWin {
			r.g.endGameLocked()
			return
		}
		r.g.nextRoundLocked()
	})
	return nil
}

// Snapshot reports each submitter with an empty card list while plays are
// still being collected, so answers never leak before the reveal.
func (r *Round) Snapshot() *RoundSnapshot {
	plays := make(map[string][]*WhiteCard, len(r.plays))
	for userID, cards := range r.plays {
		if r.status == WaitingForPlayers {
			plays[userID] = []*WhiteCard{}
			continue
		}
		plays[userID] = cards
	}
	votes := make(map[string]bool, len(r.votes))
	for userID, v := range r.votes {
		votes[userID] = v
	}
	return &RoundSnapshot{
		ID:          r.ID,
		BlackCard:   r.Black,
		CardCzarID:  r.Czar.ID,
		Status:      r.status,
		WinnerID:    r.winner,
		Plays:       plays,
		VotesToSkip: votes,
	}
}
