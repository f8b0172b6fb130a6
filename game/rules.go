package game

type Rules struct {
	PointsToWin                   int  `json:"pointsToWin"`
	CanUndo                       bool `json:"canUndo"`
	NumberOfCustomCards           int  `json:"numberOfCustomCards"`
	MaxNumberOfPlayers            int  `json:"maxNumberOfPlayers"`
	AllowMultipleAnswerBlackCards bool `json:"allowMultipleAnswerBlackCards"`
}

func DefaultRules() Rules {
	return Rules{
		PointsToWin:                   8,
		CanUndo:                       true,
		NumberOfCustomCards:           0,
		MaxNumberOfPlayers:            10,
		AllowMultipleAnswerBlackCards: true,
	}
}

// RulesPatch is a partial rules update; nil fields keep their current value.
type RulesPatch struct {
	PointsToWin                   *int  `json:"pointsToWin"`
	CanUndo                       *bool `json:"canUndo"`
	NumberOfCustomCards           *int  `json:"numberOfCustomCards"`
	MaxNumberOfPlayers            *int  `json:"maxNumberOfPlayers"`
	AllowMultipleAnswerBlackCards *bool `json:"allowMultipleAnswerBlackCards"`
}

func (r Rules) apply(p RulesPatch) Rules {
	if p.PointsToWin != nil {
		r.PointsToWin = *p.PointsToWin
	}
	if p.CanUndo != nil {
		r.CanUndo = *p.CanUndo
	}
	if p.NumberOfCustomCards != nil {
		r.NumberOfCustomCards = *p.NumberOfCustomCards
	}
	if p.MaxNumberOfPlayers != nil {
		r.MaxNumberOfPlayers = *p.MaxNumberOfPlayers
	}
	if p.AllowMultipleAnswerBlackCards != nil {
		r.AllowMultipleAnswerBlackCards = *p.AllowMultipleAnswerBlackCards
	}
	return r
}
