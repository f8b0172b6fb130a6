package db

import (
	"time"

	"github.com/NelsWebDev/cwf-backend/model"
)

type gameResult db

func (g *gameResult) RecordResult(winner string, points int, startedAt, endedAt time.Time) error {
	return g.db.Create(&model.GameResult{
		StartTime:  startedAt,
		EndTime:    endedAt,
		WinnerName: winner,
		Points:     points,
	}).Error
}
