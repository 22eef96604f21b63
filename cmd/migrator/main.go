package main

import (
	"log"

	"github.com/yhk1105/114-1-DBFinal/pkg/config"
	"github.com/yhk1105/114-1-DBFinal/pkg/database"
)

func main() {
	cfg := config.New()

	url := database.URL("pgx5", cfg.PostgresAddr, cfg.PostgresDB, cfg.PostgresUser, cfg.PostgresPassword)

	if err := database.Migrate(url, cfg.MigrateDown); err != nil {
		log.Fatalf("### Can't migrate: %v", err)
	}

	if cfg.MigrateDown {
		log.Println("migrations downed successfully")
		return
	}

	log.Println("migrations applied successfully")
}
