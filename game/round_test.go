package game

import (
	"testing"

	"github.com/bmizerany/assert"
)

func TestPlayCardsMovesCardsIntoRound(t *testing.T) {
	g, _, ids := startedGame(t, 3, nil)
	others := nonCzarIDs(g, ids)

	card := playAnyCard(t, g, others[0])

	hand, err := g.MyHand(others[0])
	assert.Equal(t, nil, err)
	assert.Equal(t, cardsInHand-1, len(hand))
	for _, c := range hand {
		assert.NotEqual(t, card.ID, c.ID)
	}

	g.mu.Lock()
	played := g.round.plays[others[0]]
	g.mu.Unlock()
	assert.Equal(t, 1, len(played))
	assert.Equal(t, card.ID, played[0].ID)
}

func TestPlaysCensoredWhileWaiting(t *testing.T) {
	g, _, ids := startedGame(t, 3, nil)
	others := nonCzarIDs(g, ids)

	playAnyCard(t, g, others[0])

	snap := g.Snapshot()
	assert.Equal(t, WaitingForPlayers, snap.CurrentRound.Status)
	cards, present := snap.CurrentRound.Plays[others[0]]
	assert.Equal(t, true, present)
	assert.Equal(t, 0, len(cards))
}

func TestCzarCannotPlay(t *testing.T) {
	g, _, _ := startedGame(t, 3, nil)
	czar := czarID(g)
	hand, err := g.MyHand(czar)
	assert.Equal(t, nil, err)
	err = g.PlayCards(czar, []WhiteCard{{ID: hand[0].ID}})
	assert.Equal(t, ErrCzarCannotPlay, err)
}

func TestPlayTwiceFails(t *testing.T) {
	g, _, ids := startedGame(t, 3, nil)
	others := nonCzarIDs(g, ids)

	playAnyCard(t, g, others[0])
	hand, err := g.MyHand(others[0])
	assert.Equal(t, nil, err)
	err = g.PlayCards(others[0], []WhiteCard{{ID: hand[0].ID}})
	assert.Equal(t, ErrAlreadyPlayed, err)
}

func TestPlayUnownedCardFailsWithoutSideEffects(t *testing.T) {
	g, _, ids := startedGame(t, 3, nil)
	others := nonCzarIDs(g, ids)

	hand, err := g.MyHand(others[0])
	assert.Equal(t, nil, err)
	// one owned card plus one that is not in the hand
	err = g.PlayCards(others[0], []WhiteCard{{ID: hand[0].ID}, {ID: "stranger"}})
	assert.Equal(t, ErrCardNotInHand, err)

	after, err := g.MyHand(others[0])
	assert.Equal(t, nil, err)
	assert.Equal(t, cardsInHand, len(after))
	g.mu.Lock()
	_, played := g.round.plays[others[0]]
	g.mu.Unlock()
	assert.Equal(t, false, played)
}

func TestRevealAfterAllPlayed(t *testing.T) {
	shortTimers(t)
	g, _, ids := startedGame(t, 3, nil)
	others := nonCzarIDs(g, ids)

	playAnyCard(t, g, others[0])
	playAnyCard(t, g, others[1])
	assert.Equal(t, WaitingForPlayers, roundStatus(g))

	settle()
	assert.Equal(t, SelectingWinner, roundStatus(g))

	// plays are visible once selection opens
	snap := g.Snapshot()
	assert.Equal(t, 1, len(snap.CurrentRound.Plays[others[0]]))
}

func TestUndoDuringRevealWindowKeepsRoundOpen(t *testing.T) {
	shortTimers(t)
	g, _, ids := startedGame(t, 3, nil)
	others := nonCzarIDs(g, ids)

	playAnyCard(t, g, others[0])
	card := playAnyCard(t, g, others[1])
	assert.Equal(t, nil, g.UndoPlay(others[1]))

	settle()
	assert.Equal(t, WaitingForPlayers, roundStatus(g))

	hand, err := g.MyHand(others[1])
	assert.Equal(t, nil, err)
	found := false
	for _, c := range hand {
		if c.ID == card.ID {
			found = true
		}
	}
	assert.Equal(t, true, found)
}

func TestUndoClearsCustomText(t *testing.T) {
	g, _, ids := startedGame(t, 3, nil)
	others := nonCzarIDs(g, ids)

	custom := &WhiteCard{ID: "custom-1", IsCustom: true, State: CardInUse}
	g.mu.Lock()
	p, _ := g.roster.Get(others[0])
	p.hand[custom.ID] = custom
	g.mu.Unlock()

	err := g.PlayCards(others[0], []WhiteCard{{ID: custom.ID, Text: "something rude"}})
	assert.Equal(t, nil, err)
	assert.Equal(t, "something rude", custom.Text)

	assert.Equal(t, nil, g.UndoPlay(others[0]))
	assert.Equal(t, "", custom.Text)
}

func TestVoteToSkipBelowThresholdDoesNothing(t *testing.T) {
	g, _, ids := startedGame(t, 3, nil)
	others := nonCzarIDs(g, ids)
	round := currentRoundID(g)

	// 1 yes of 2 voters is exactly 50%, not strictly above
	assert.Equal(t, nil, g.VoteToSkip(others[0], true))
	assert.Equal(t, round, currentRoundID(g))
}

func TestVoteToSkipReplacesBlackCard(t *testing.T) {
	g, _, ids := startedGame(t, 3, nil)
	czar := czarID(g)
	others := nonCzarIDs(g, ids)
	round := currentRoundID(g)
	g.mu.Lock()
	oldBlack := g.round.Black
	g.mu.Unlock()

	played := playAnyCard(t, g, others[0])

	assert.Equal(t, nil, g.VoteToSkip(others[0], true))
	assert.Equal(t, nil, g.VoteToSkip(others[1], true))

	assert.NotEqual(t, round, currentRoundID(g))
	assert.Equal(t, czar, czarID(g))
	assert.Equal(t, WaitingForPlayers, roundStatus(g))
	assert.Equal(t, CardSkipped, oldBlack.State)

	// the pending play went back to its owner
	hand, err := g.MyHand(others[0])
	assert.Equal(t, nil, err)
	assert.Equal(t, cardsInHand, len(hand))
	found := false
	for _, c := range hand {
		if c.ID == played.ID {
			found = true
		}
	}
	assert.Equal(t, true, found)
}

func TestVoteToSkipRetractedVote(t *testing.T) {
	g, _, ids := startedGame(t, 3, nil)
	others := nonCzarIDs(g, ids)
	round := currentRoundID(g)

	assert.Equal(t, nil, g.VoteToSkip(others[0], true))
	assert.Equal(t, nil, g.VoteToSkip(others[0], false))
	assert.Equal(t, nil, g.VoteToSkip(others[1], true))
	assert.Equal(t, round, currentRoundID(g))
}

func TestSelectWinnerOnlyCzar(t *testing.T) {
	shortTimers(t)
	g, _, ids := startedGame(t, 3, nil)
	others := nonCzarIDs(g, ids)

	card := playAnyCard(t, g, others[0])
	playAnyCard(t, g, others[1])
	settle()

	assert.Equal(t, ErrNotCzar, g.PickWinner(others[0], card.ID))
}

func TestSelectWinnerWrongPhase(t *testing.T) {
	g, _, ids := startedGame(t, 3, nil)
	czar := czarID(g)
	others := nonCzarIDs(g, ids)

	card := playAnyCard(t, g, others[0])
	assert.Equal(t, ErrSelectPhase, g.PickWinner(czar, card.ID))
}

func TestSelectWinnerUnknownCard(t *testing.T) {
	shortTimers(t)
	g, _, ids := startedGame(t, 3, nil)
	czar := czarID(g)
	others := nonCzarIDs(g, ids)

	playAnyCard(t, g, others[0])
	playAnyCard(t, g, others[1])
	settle()

	assert.Equal(t, ErrCardNotFound, g.PickWinner(czar, "no-such-card"))
}

func TestSelectWinnerAwardsPointAndAdvances(t *testing.T) {
	shortTimers(t)
	g, n, ids := startedGame(t, 3, nil)
	czar := czarID(g)
	others := nonCzarIDs(g, ids)
	round := currentRoundID(g)

	card := playAnyCard(t, g, others[0])
	playAnyCard(t, g, others[1])
	settle()

	g.mu.Lock()
	black := g.round.Black
	g.mu.Unlock()

	assert.Equal(t, nil, g.PickWinner(czar, card.ID))
	assert.Equal(t, ShowingWinner, roundStatus(g))
	won, ok := n.lastBroadcast(EventWinnerSelected)
	assert.Equal(t, true, ok)
	assert.Equal(t, others[0], won.payload)
	assert.Equal(t, CardPlayedPreviously, black.State)

	settle()
	assert.NotEqual(t, round, currentRoundID(g))
	assert.Equal(t, WaitingForPlayers, roundStatus(g))
	assert.NotEqual(t, czar, czarID(g))
	assert.Equal(t, true, g.Snapshot().Started)

	for _, p := range g.PlayersSnapshot() {
		if p.ID == others[0] {
			assert.Equal(t, 1, p.Points)
		} else {
			assert.Equal(t, 0, p.Points)
		}
	}
}

func TestSelectWinnerEndsGameAtThreshold(t *testing.T) {
	shortTimers(t)
	g, n, ids := newTestGame(t, 3, nil)
	points := 1
	assert.Equal(t, nil, g.UpdateRules(RulesPatch{PointsToWin: &points}))
	assert.Equal(t, nil, g.Start())

	czar := czarID(g)
	others := nonCzarIDs(g, ids)
	card := playAnyCard(t, g, others[0])
	playAnyCard(t, g, others[1])
	settle()

	assert.Equal(t, nil, g.PickWinner(czar, card.ID))
	settle()

	assert.Equal(t, false, g.Snapshot().Started)
	ended, ok := n.lastBroadcast(EventGameEnded)
	assert.Equal(t, true, ok)
	g.mu.Lock()
	winner, _ := g.roster.Get(others[0])
	g.mu.Unlock()
	assert.Equal(t, winner.Username, ended.payload)
}

func TestSupersededRoundTimerIsNoOp(t *testing.T) {
	shortTimers(t)
	g, _, ids := startedGame(t, 3, nil)
	others := nonCzarIDs(g, ids)

	playAnyCard(t, g, others[0])
	playAnyCard(t, g, others[1])

	// skipping supersedes the round before the reveal timer fires
	g.mu.Lock()
	g.skipBlackCardLocked()
	fresh := g.round.ID
	g.mu.Unlock()

	settle()
	assert.Equal(t, fresh, currentRoundID(g))
	assert.Equal(t, WaitingForPlayers, roundStatus(g))
}
