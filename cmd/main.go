package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docanalyze/internal/config"
	"docanalyze/internal/history"
	"docanalyze/internal/localstore"
	"docanalyze/internal/prompt"
	"docanalyze/internal/server"
	"docanalyze/internal/session"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	blobs, err := localstore.Open(cfg.Store.Path, cfg.Store.Debug)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening local store")
	}
	defer blobs.Close()

	if err := blobs.Init(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Error initializing local store")
	}

	prompts, err := prompt.NewClient(&cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing prompt client")
	}

	store := history.NewStore(blobs)
	controller := session.NewController(prompts, store)

	srv := server.New(&cfg.Server, controller, store)
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
