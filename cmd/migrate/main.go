package main

import (
	"flag"
	"log"

	"github.com/andrewpaige1/brickstat-api/config"
	"github.com/andrewpaige1/brickstat-api/logger"
)

func main() {
	dsn := flag.String("database-url", "", "database to migrate (defaults to DATABASE_URL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *dsn != "" {
		cfg.DatabaseURL = *dsn
	}

	db, err := config.Connect(cfg.DatabaseURL, logger.New(cfg.LogLevel, ""))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL database: %v", err)
	}
	defer sqlDB.Close()

	if err := config.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Tables created (if not existing)")
}
