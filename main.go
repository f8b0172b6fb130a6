package main

import (
	"flag"
	"net/http"
	"time"

	"github.com/NelsWebDev/cwf-backend/api"
	cfg "github.com/NelsWebDev/cwf-backend/config"
	"github.com/NelsWebDev/cwf-backend/db"
	"github.com/NelsWebDev/cwf-backend/game"
	"github.com/topfreegames/pitaya/v2"
	"github.com/topfreegames/pitaya/v2/acceptor"
	"github.com/topfreegames/pitaya/v2/config"
	"github.com/topfreegames/pitaya/v2/groups"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "./config/local.json", "Path to config file")
)

func main() {
	flag.Parse()
	cfg := cfg.Read(*configPath)

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	builder := pitaya.NewDefaultBuilder(true, cfg.FrontendType, pitaya.Standalone, map[string]string{}, configApp())
	builder.AddAcceptor(acceptor.NewWSAcceptor(cfg.WSAddr))
	builder.Groups = groups.NewMemoryGroupService(*config.NewDefaultMemoryGroupConfig())
	app := builder.Build()

	defer app.Shutdown()

	database := db.NewClient(cfg.Database)

	g := game.RegisterRoom(app, cfg, &database.Deck, &database.Game)

	go func() {
		srv := api.New(g, &database.Deck, cfg)
		if err := http.ListenAndServe(cfg.HTTPAddr, srv.Handler()); err != nil {
			zap.L().Fatal("http server stopped", zap.Error(err))
		}
	}()

	app.Start()
}

func configApp() config.BuilderConfig {
	conf := config.NewDefaultBuilderConfig()
	conf.Pitaya.Heartbeat.Interval = time.Duration(3 * time.Second)
	conf.Pitaya.Buffer.Agent.Messages = 32
	conf.Pitaya.Handler.Messages.Compression = false
	conf.Metrics.Prometheus.Enabled = true
	return *conf
}
