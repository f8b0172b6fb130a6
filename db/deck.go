package db

import (
	"errors"

	"github.com/NelsWebDev/cwf-backend/game"
	"github.com/NelsWebDev/cwf-backend/model"
	"gorm.io/gorm"
)

type deck db

// FetchCards loads the cards of the given decks, tagged AVAILABLE for the
// card pool. Black cards are limited to single-answer prompts unless the
// rules allow multi-answer ones.
func (d *deck) FetchCards(deckIDs []string, rules game.Rules) ([]*game.BlackCard, []*game.WhiteCard, error) {
	var blacks []model.BlackCard
	q := d.db.Where("deck_id IN ?", deckIDs)
	if !rules.AllowMultipleAnswerBlackCards {
		q = q.Where("pick = ?", 1)
	}
	if err := q.Order("created_at asc").Find(&blacks).Error; err != nil {
		return nil, nil, err
	}

	var whites []model.WhiteCard
	if err := d.db.Where("deck_id IN ?", deckIDs).Order("created_at asc").Find(&whites).Error; err != nil {
		return nil, nil, err
	}

	blackCards := make([]*game.BlackCard, 0, len(blacks))
	for _, c := range blacks {
		blackCards = append(blackCards, &game.BlackCard{
			ID:        c.ID,
			DeckID:    c.DeckID,
			Text:      c.Text,
			Pick:      c.Pick,
			State:     game.CardAvailable,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	whiteCards := make([]*game.WhiteCard, 0, len(whites))
	for _, c := range whites {
		whiteCards = append(whiteCards, &game.WhiteCard{
			ID:        c.ID,
			DeckID:    c.DeckID,
			Text:      c.Text,
			IsCustom:  false,
			State:     game.CardAvailable,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return blackCards, whiteCards, nil
}

func (d *deck) DeckExists(id string) (bool, error) {
	var count int64
	if err := d.db.Model(&model.Deck{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FetchDeck returns nil, nil when no deck matches.
func (d *deck) FetchDeck(id string) (*game.Deck, error) {
	var m model.Deck
	err := d.db.First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d.toDeck(m)
}

func (d *deck) FetchAllDecks() ([]*game.Deck, error) {
	var ms []model.Deck
	if err := d.db.Order("created_at asc").Find(&ms).Error; err != nil {
		return nil, err
	}
	decks := make([]*game.Deck, 0, len(ms))
	for _, m := range ms {
		deck, err := d.toDeck(m)
		if err != nil {
			return nil, err
		}
		decks = append(decks, deck)
	}
	return decks, nil
}

func (d *deck) toDeck(m model.Deck) (*game.Deck, error) {
	var blackCount, whiteCount int64
	if err := d.db.Model(&model.BlackCard{}).Where("deck_id = ?", m.ID).Count(&blackCount).Error; err != nil {
		return nil, err
	}
	if err := d.db.Model(&model.WhiteCard{}).Where("deck_id = ?", m.ID).Count(&whiteCount).Error; err != nil {
		return nil, err
	}
	return &game.Deck{
		ID:                 m.ID,
		Name:               m.Name,
		Description:        m.Description,
		NumberOfBlackCards: int(blackCount),
		NumberOfWhiteCards: int(whiteCount),
		ImportedDeckID:     m.ImportedDeckID,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}, nil
}
