package main

import (
	"flag"
	"log"
	"os"

	"rosterforge/internal/api"
	"rosterforge/internal/api/handler"
	"rosterforge/internal/auth"
	"rosterforge/internal/config"
	"rosterforge/internal/drive"
	"rosterforge/internal/logging"
	"rosterforge/internal/store"
	"rosterforge/internal/task"
	"rosterforge/pkg/router"
)

// @title RosterForge API
// @version 1.0
// @description Roster-driven generation of feedback spreadsheets in Google Drive, with PDF export of the results.
// @BasePath /
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if os.IsNotExist(err) {
		cfg = config.Default()
	} else if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.NewOrDie(cfg.Logs.Dir, "rosterforge.log")
	defer logger.Close()

	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	reg := task.NewRegistry(cfg.TaskRetention(), st, logger)
	if err := reg.StartSweeper(cfg.Tasks.SweepSchedule); err != nil {
		log.Fatalf("sweeper: %v", err)
	}
	defer reg.Stop()

	oa := &auth.OAuth{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		RedirectURI:  cfg.OAuth.RedirectURI,
		StateSecret:  cfg.OAuth.StateSecret,
		TokenFile:    cfg.OAuth.TokenFile,
	}

	h := handler.New(reg, st, cfg, oa, logger, func(token string) drive.Gateway {
		return drive.NewClient(token)
	})

	r := router.New()
	r.AllowOrigin(cfg.Server.FrontendOrigin)
	api.RegisterRoutes(r, h)

	log.Fatal(r.Start(cfg.Server.Addr))
}
