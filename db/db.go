package db

import (
	"github.com/NelsWebDev/cwf-backend/config"
	"github.com/NelsWebDev/cwf-backend/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type db struct {
	db *gorm.DB
}

type Client struct {
	Deck deck
	Game gameResult
}

func NewClient(cfg config.Database) *Client {
	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		panic(err)
	}
	if err := gdb.AutoMigrate(
		&model.Deck{},
		&model.BlackCard{},
		&model.WhiteCard{},
		&model.GameResult{},
	); err != nil {
		panic(err)
	}
	c := db{db: gdb}
	return &Client{
		Deck: deck(c),
		Game: gameResult(c),
	}
}
