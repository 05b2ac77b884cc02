package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DrDelphi/EgldRaffle/api"
	"github.com/DrDelphi/EgldRaffle/bot"
	"github.com/DrDelphi/EgldRaffle/config"
	"github.com/DrDelphi/EgldRaffle/metrics"
	"github.com/DrDelphi/EgldRaffle/network"
	"github.com/DrDelphi/EgldRaffle/oracle"
	"github.com/DrDelphi/EgldRaffle/raffle"
	"github.com/DrDelphi/EgldRaffle/storage"
	"github.com/DrDelphi/EgldRaffle/utils"
	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli"
)

var log = logger.GetOrCreate("main")

func main() {
	app := cli.NewApp()
	app.Name = "EgldRaffle"
	app.Usage = "periodic eGLD raffle with verifiable randomness and a Telegram front-end"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "path to the json or toml configuration file",
			Value: utils.DefaultConfigPath,
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "logger level, e.g. *:DEBUG",
		},
		cli.StringFlag{
			Name:  "db",
			Usage: "path to the raffle database, overrides the configured one",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Error("raffle stopped", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.NewConfig(c.String("config"))
	if err != nil {
		return err
	}
	if level := c.String("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if db := c.String("db"); db != "" {
		cfg.Storage.Path = db
	}
	if err := logger.SetLogLevel(cfg.LogLevel); err != nil {
		return err
	}

	raffleCfg, err := config.RaffleConfig(cfg)
	if err != nil {
		return err
	}

	store, err := storage.NewBoltStore(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	networkManager, err := network.NewNetworkManager(cfg, utils.GetPrivateKeyFromSeed(cfg.Seedphrase, 0))
	if err != nil {
		return err
	}

	if raffleCfg.TransferCost.Sign() == 0 {
		raffleCfg.TransferCost = networkManager.TransferCost()
	}

	coordinator, err := oracle.NewLocalCoordinator(utils.GetPrivateKeyFromSeed(cfg.Seedphrase, cfg.Oracle.SeedIndex))
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(registry)
	if err != nil {
		return err
	}
	announcer := bot.NewAnnouncer(0)

	owner := cfg.Raffle.Owner
	if owner == "" {
		owner = networkManager.CustodyAddress()
	}
	r, err := raffle.New(raffleCfg, owner, store, coordinator, networkManager,
		raffle.WithEventSink(raffle.MultiSink{collector, announcer}))
	if err != nil {
		return err
	}
	log.Info("raffle started", "custody", networkManager.CustodyAddress(), "owner", owner,
		"fee", raffleCfg.EntranceFee.String(), "interval", raffleCfg.Interval.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go coordinator.Run(ctx, time.Duration(cfg.Oracle.Period)*time.Second)

	var server *api.Server
	if cfg.API.Listen != "" {
		server = api.NewServer(cfg.API.Listen, api.Handler(r, registry, collector))
		server.Start()
	}

	if cfg.Bot.Token != "" {
		tgBot, err := bot.NewBot(cfg, r, networkManager, announcer)
		if err != nil {
			return err
		}
		tgBot.StartTasks(ctx)
	} else {
		log.Warn("no bot token configured, running without telegram")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	log.Info("shutting down", "signal", sig.String())

	cancel()
	if server != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := server.Close(shutdownCtx); err != nil {
			log.Warn("api server close", "error", err)
		}
	}

	return nil
}
