package config

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	GameRoomName = "game"
)

type Database struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
}

func (d Database) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable", d.Host, d.User, d.Password, d.DBName, d.Port)
}

type Config struct {
	Database     Database `json:"database"`
	FrontendType string   `json:"frontend_type"`
	WSAddr       string   `json:"ws_addr"`
	HTTPAddr     string   `json:"http_addr"`
	BackendURL   string   `json:"backend_url"`
	FrontendURL  string   `json:"frontend_url"`
	GamePassword string   `json:"game_password"`
}

func Read(configPath string) *Config {
	b, err := os.ReadFile(configPath)
	if err != nil {
		panic(err)
	}
	var config Config
	if err := json.Unmarshal(b, &config); err != nil {
		panic(err)
	}
	return &config
}
