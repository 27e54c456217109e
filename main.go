package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"invoicemerge/cmd"
	"invoicemerge/internal/config"
	"invoicemerge/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Commands report the error; logging still needs to work
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting invoicemerge")

	cmd.Execute(cfg, err)

	log.Debug().Msg("invoicemerge finished")
	os.Exit(0)
}
