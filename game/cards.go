package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

type CardState string

const (
	CardAvailable        CardState = "AVAILABLE"
	CardInUse            CardState = "IN_USE"
	CardPlayedPreviously CardState = "PLAYED_PREVIOUSLY"
	CardSkipped          CardState = "SKIPPED"
)

const cardsInHand = 10

type BlackCard struct {
	ID        string    `json:"id"`
	DeckID    string    `json:"deckId"`
	Text      string    `json:"text"`
	Pick      int       `json:"pick"`
	State     CardState `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type WhiteCard struct {
	ID        string    `json:"id"`
	DeckID    string    `json:"deckId,omitempty"`
	Text      string    `json:"text"`
	IsCustom  bool      `json:"isCustom"`
	State     CardState `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Deck struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	NumberOfWhiteCards int       `json:"numberOfWhiteCards"`
	NumberOfBlackCards int       `json:"numberOfBlackCards"`
	ImportedDeckID     string    `json:"importedDeckId,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// CardPool owns the working set of black and white cards for one game.
// It is not safe for concurrent use; the owning Game serializes access.
type CardPool struct {
	rng   *rand.Rand
	black []*BlackCard
	white []*WhiteCard
}

func NewCardPool() *CardPool {
	return &CardPool{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (p *CardPool) LoadBlack(cards []*BlackCard) {
	for _, c := range cards {
		c.State = CardAvailable
	}
	p.black = cards
	p.ShuffleBlack()
}

func (p *CardPool) LoadWhite(cards []*WhiteCard) {
	for _, c := range cards {
		c.State = CardAvailable
	}
	p.white = cards
	p.ShuffleWhite()
}

func (p *CardPool) Reset() {
	p.black = nil
	p.white = nil
}

// ShuffleBlack resets every black card that is not currently held by a round
// back to AVAILABLE and randomizes the draw order.
func (p *CardPool) ShuffleBlack() {
	for _, c := range p.black {
		if c.State != CardInUse {
			c.State = CardAvailable
		}
	}
	p.rng.Shuffle(len(p.black), func(i, j int) {
		p.black[i], p.black[j] = p.black[j], p.black[i]
	})
}

// ShuffleWhite recycles eligible cards back into circulation. Custom cards
// that were played previously stay out so their text is never reused.
func (p *CardPool) ShuffleWhite() {
	for _, c := range p.white {
		if c.State == CardAvailable || (c.State == CardPlayedPreviously && !c.IsCustom) {
			c.State = CardAvailable
		}
	}
	p.rng.Shuffle(len(p.white), func(i, j int) {
		p.white[i], p.white[j] = p.white[j], p.white[i]
	})
}

// DrawBlack returns one available black card, reshuffling once if the pool
// ran dry. Failing after a reshuffle means the start-time sizing check was
// wrong; callers treat that as a logic error, not a recoverable condition.
func (p *CardPool) DrawBlack() (*BlackCard, error) {
	for attempt := 0; attempt < 2; attempt++ {
		for _, c := range p.black {
			if c.State == CardAvailable {
				c.State = CardInUse
				return c, nil
			}
		}
		p.ShuffleBlack()
	}
	return nil, ErrNotEnoughBlackCards
}

// DrawWhite returns exactly n available white cards marked IN_USE. If the
// pool cannot satisfy the draw even after one reshuffle the partial draw is
// rolled back and ErrNotEnoughWhiteCards is returned.
func (p *CardPool) DrawWhite(n int) ([]*WhiteCard, error) {
	drawn := make([]*WhiteCard, 0, n)
	take := func() {
		for _, c := range p.white {
			if len(drawn) == n {
				return
			}
			if c.State == CardAvailable {
				c.State = CardInUse
				drawn = append(drawn, c)
			}
		}
	}
	take()
	if len(drawn) < n {
		p.ShuffleWhite()
		take()
	}
	if len(drawn) < n {
		for _, c := range drawn {
			c.State = CardAvailable
		}
		return nil, ErrNotEnoughWhiteCards
	}
	return drawn, nil
}

// Recycle takes cards that were discarded unplayed or superseded with their
// round. They re-enter circulation at the next shuffle, never immediately.
func (p *CardPool) Recycle(cards []*WhiteCard) {
	for _, c := range cards {
		if c.IsCustom {
			c.Text = ""
		}
		c.State = CardPlayedPreviously
	}
}

func (p *CardPool) AvailableWhite() int {
	n := 0
	for _, c := range p.white {
		if c.State == CardAvailable {
			n++
		}
	}
	return n
}

func MakeBlankWhiteCards(n int) []*WhiteCard {
	cards := make([]*WhiteCard, 0, n)
	now := time.Now()
	for i := 0; i < n; i++ {
		cards = append(cards, &WhiteCard{
			ID:        uuid.NewString(),
			Text:      "",
			IsCustom:  true,
			State:     CardAvailable,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return cards
}

// maxRounds is the longest possible game: every player one point short of
// winning, plus the deciding round.
func maxRounds(players, pointsToWin int) int {
	return players*(pointsToWin-1) + 1
}

// WhiteCardsNeeded is the sizing rule checked before a game starts: initial
// hands plus one card per non-czar player for every possible round.
func WhiteCardsNeeded(players, pointsToWin int) int {
	return players*cardsInHand + maxRounds(players, pointsToWin)*(players-1)
}

// MinBlackCards is one prompt per possible round.
func MinBlackCards(players, pointsToWin int) int {
	return maxRounds(players, pointsToWin)
}

// buildWhitePool combines the fetched deck cards with synthesized blanks.
// Blanks only fill the shortfall, capped by the rules' custom card budget.
func buildWhitePool(cards []*WhiteCard, need, customBudget int) ([]*WhiteCard, error) {
	if len(cards) < need {
		blanks := need - len(cards)
		if blanks > customBudget {
			blanks = customBudget
		}
		cards = append(cards, MakeBlankWhiteCards(blanks)...)
	}
	if len(cards) < need {
		return nil, fmt.Errorf("need %d white cards but only got %d: %w", need, len(cards), ErrNotEnoughWhiteCards)
	}
	return cards, nil
}
