package main

import (
	"flag"

	"repairdesk/config"
	"repairdesk/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	down := flag.Int("down", 0, "roll back this many migrations instead of migrating up")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	url := database.URL(cfg.DB)

	if *down > 0 {
		if err := database.MigrateDown(url, *down); err != nil {
			logrus.Fatalf("Migration failed: %v", err)
		}
		logrus.Infof("Rolled back %d migration(s)", *down)
		return
	}

	if err := database.MigrateUp(url); err != nil {
		logrus.Fatalf("Migration failed: %v", err)
	}
}
