package game

import "time"

// Outbound event routes. These names are the wire contract shared with the
// frontend and must not change.
const (
	EventMyProfile      = "myProfile"
	EventMyHand         = "myHand"
	EventPlayerJoined   = "playerJoined"
	EventPlayerLeft     = "playerLeft"
	EventPlayers        = "players"
	EventRules          = "rules"
	EventDecks          = "decks"
	EventGame           = "game"
	EventServerMessage  = "serverMessage"
	EventGivenCards     = "givenCards"
	EventGameEnded      = "gameEnded"
	EventCloseModal     = "closeModal"
	EventHoldGame       = "holdGame"
	EventWinnerSelected = "winnerSelected"
)

type PlayerSnapshot struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	IsActive   bool   `json:"isActive"`
	Points     int    `json:"points"`
	IsCardCzar bool   `json:"isCardCzar"`
}

type RoundSnapshot struct {
	ID          string                  `json:"id"`
	BlackCard   *BlackCard              `json:"blackCard"`
	CardCzarID  string                  `json:"cardCzarId"`
	Status      RoundStatus             `json:"status"`
	WinnerID    string                  `json:"winnerId,omitempty"`
	Plays       map[string][]*WhiteCard `json:"plays"`
	VotesToSkip map[string]bool         `json:"votesToSkip"`
}

type GameSnapshot struct {
	Started      bool             `json:"started"`
	Rules        Rules            `json:"rules"`
	Decks        []*Deck          `json:"decks"`
	CurrentRound *RoundSnapshot   `json:"currentRound,omitempty"`
	Players      []PlayerSnapshot `json:"players"`
}

type ServerMessage struct {
	Title     string `json:"title,omitempty"`
	Message   string `json:"message"`
	Autoclose int    `json:"autoclose,omitempty"`
	CanClose  bool   `json:"canClose,omitempty"`
}

// Notifier is the outbound half of the transport layer. The pitaya room
// implements it; tests substitute a recorder.
type Notifier interface {
	Broadcast(event string, payload interface{})
	SendToPlayer(playerID, event string, payload interface{})
}

// DeckRepository provides decks and cards by id. Implemented by the db
// package over postgres; the engine never touches storage directly.
type DeckRepository interface {
	// FetchCards returns the cards of the given decks, black cards filtered
	// to single-answer prompts unless the rules allow multi-answer.
	FetchCards(deckIDs []string, rules Rules) ([]*BlackCard, []*WhiteCard, error)
	DeckExists(id string) (bool, error)
	// FetchDeck returns nil, nil when no deck matches.
	FetchDeck(id string) (*Deck, error)
	FetchAllDecks() ([]*Deck, error)
}

// ResultRecorder persists the outcome of a finished game. May be nil.
type ResultRecorder interface {
	RecordResult(winner string, points int, startedAt, endedAt time.Time) error
}
