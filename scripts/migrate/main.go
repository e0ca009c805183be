// Command migrate applies, rolls back or lists the SQL migrations in migrations/.
//
//	go run ./scripts/migrate up
//	go run ./scripts/migrate down [steps]
//	go run ./scripts/migrate status
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-quality/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-quality/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: migrate up|down [steps]|status")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewPostgresDB(cfg, zap.NewNop())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	switch os.Args[1] {
	case "up":
		n, err := database.Migrate(db, migrate.Up, 0)
		if err != nil {
			log.Fatalf("❌ Migration failed: %v", err)
		}
		log.Printf("✅ Applied %d migration(s)", n)

	case "down":
		steps := 1
		if len(os.Args) > 2 {
			if steps, err = strconv.Atoi(os.Args[2]); err != nil || steps < 1 {
				log.Fatalf("invalid step count %q", os.Args[2])
			}
		}
		n, err := database.Migrate(db, migrate.Down, steps)
		if err != nil {
			log.Fatalf("❌ Rollback failed: %v", err)
		}
		log.Printf("✅ Rolled back %d migration(s)", n)

	case "status":
		records, err := database.MigrationStatus(db)
		if err != nil {
			log.Fatalf("Failed to read migration records: %v", err)
		}
		if len(records) == 0 {
			fmt.Println("No migrations applied")
			return
		}
		for _, r := range records {
			fmt.Printf("%-50s %s\n", r.Id, r.AppliedAt.Format("2006-01-02 15:04:05"))
		}

	default:
		log.Fatalf("unknown command %q (want up, down or status)", os.Args[1])
	}
}
