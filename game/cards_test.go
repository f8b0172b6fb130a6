package game

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bmizerany/assert"
)

func blackCards(n int) []*BlackCard {
	cards := make([]*BlackCard, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, &BlackCard{ID: fmt.Sprintf("b%d", i), Text: fmt.Sprintf("prompt %d", i), Pick: 1})
	}
	return cards
}

func whiteCards(n int) []*WhiteCard {
	cards := make([]*WhiteCard, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, &WhiteCard{ID: fmt.Sprintf("w%d", i), Text: fmt.Sprintf("answer %d", i)})
	}
	return cards
}

func TestDrawBlackMarksInUse(t *testing.T) {
	p := NewCardPool()
	p.LoadBlack(blackCards(3))

	c, err := p.DrawBlack()
	assert.Equal(t, nil, err)
	assert.Equal(t, CardInUse, c.State)
}

func TestDrawBlackReshufflesPlayed(t *testing.T) {
	p := NewCardPool()
	p.LoadBlack(blackCards(1))

	first, err := p.DrawBlack()
	assert.Equal(t, nil, err)
	first.State = CardPlayedPreviously

	second, err := p.DrawBlack()
	assert.Equal(t, nil, err)
	assert.Equal(t, first, second)
	assert.Equal(t, CardInUse, second.State)
}

func TestDrawBlackExhausted(t *testing.T) {
	p := NewCardPool()
	p.LoadBlack(blackCards(1))

	_, err := p.DrawBlack()
	assert.Equal(t, nil, err)
	// the only card is still held by a round, reshuffling cannot free it
	_, err = p.DrawBlack()
	assert.Equal(t, ErrNotEnoughBlackCards, err)
}

func TestDrawWhiteCount(t *testing.T) {
	p := NewCardPool()
	p.LoadWhite(whiteCards(5))

	cards, err := p.DrawWhite(3)
	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(cards))
	for _, c := range cards {
		assert.Equal(t, CardInUse, c.State)
	}
	assert.Equal(t, 2, p.AvailableWhite())
}

func TestDrawWhiteRecyclesPlayed(t *testing.T) {
	p := NewCardPool()
	p.LoadWhite(whiteCards(3))

	cards, err := p.DrawWhite(3)
	assert.Equal(t, nil, err)
	p.Recycle(cards)

	again, err := p.DrawWhite(3)
	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(again))
}

func TestDrawWhiteRollsBackOnShortage(t *testing.T) {
	p := NewCardPool()
	p.LoadWhite(whiteCards(3))

	_, err := p.DrawWhite(2)
	assert.Equal(t, nil, err)

	_, err = p.DrawWhite(2)
	assert.Equal(t, ErrNotEnoughWhiteCards, err)
	// the one available card was not consumed by the failed draw
	assert.Equal(t, 1, p.AvailableWhite())
}

func TestShuffleWhiteKeepsPlayedCustomOut(t *testing.T) {
	p := NewCardPool()
	cards := whiteCards(2)
	custom := &WhiteCard{ID: "custom", IsCustom: true}
	p.LoadWhite(append(cards, custom))

	cards[0].State = CardPlayedPreviously
	custom.State = CardPlayedPreviously

	p.ShuffleWhite()
	assert.Equal(t, CardAvailable, cards[0].State)
	assert.Equal(t, CardPlayedPreviously, custom.State)
}

func TestRecycleClearsCustomText(t *testing.T) {
	p := NewCardPool()
	custom := &WhiteCard{ID: "custom", IsCustom: true, Text: "player written", State: CardInUse}
	plain := &WhiteCard{ID: "plain", Text: "printed", State: CardInUse}

	p.Recycle([]*WhiteCard{custom, plain})
	assert.Equal(t, "", custom.Text)
	assert.Equal(t, "printed", plain.Text)
	assert.Equal(t, CardPlayedPreviously, custom.State)
	assert.Equal(t, CardPlayedPreviously, plain.State)
}

func TestSizingFormulas(t *testing.T) {
	// 3 players to 8 points: 22 possible rounds
	assert.Equal(t, 22, MinBlackCards(3, 8))
	// 30 hand cards plus 22 rounds of 2 replacements
	assert.Equal(t, 74, WhiteCardsNeeded(3, 8))
	assert.Equal(t, 1, MinBlackCards(4, 1))
}

func TestBuildWhitePoolFillsWithBlanks(t *testing.T) {
	pool, err := buildWhitePool(whiteCards(5), 8, 10)
	assert.Equal(t, nil, err)
	assert.Equal(t, 8, len(pool))
	blanks := 0
	for _, c := range pool {
		if c.IsCustom {
			blanks++
		}
	}
	assert.Equal(t, 3, blanks)
}

func TestBuildWhitePoolBudgetExceeded(t *testing.T) {
	_, err := buildWhitePool(whiteCards(5), 8, 1)
	assert.Equal(t, true, errors.Is(err, ErrNotEnoughWhiteCards))
}

func TestMakeBlankWhiteCards(t *testing.T) {
	blanks := MakeBlankWhiteCards(3)
	assert.Equal(t, 3, len(blanks))
	seen := make(map[string]bool)
	for _, c := range blanks {
		assert.Equal(t, true, c.IsCustom)
		assert.Equal(t, "", c.Text)
		assert.Equal(t, CardAvailable, c.State)
		assert.Equal(t, false, seen[c.ID])
		seen[c.ID] = true
	}
}
