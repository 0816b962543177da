package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"memora/config"
	"memora/pkg/database"

	"gorm.io/gorm"
)

const usage = `
Memora - Database CLI Tool

Usage:
  migrate [flags] [command]

Commands:
  up          Run all migrations (GORM schema + SQL files)
  status      Show database connection status and table counts
  seed        Seed the database with a demo community, prompts and a poll
  truncate    Delete every row from every table (DANGEROUS)

Flags:
  -migrations string   Path to migrations directory (default "migrations")

Examples:
  go run ./cmd/migrate up
  go run ./cmd/migrate seed
  DB_DRIVER=sqlite go run ./cmd/migrate status
`

func main() {
	migrationsDir := flag.String("migrations", "migrations", "Path to migrations directory")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer database.Close()

	switch command {
	case "up":
		runMigrationsUp(db, *migrationsDir)
	case "status":
		showStatus(db)
	case "seed":
		runSeed(db)
	case "truncate":
		runTruncate(db)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(db *gorm.DB, migrationsDir string) {
	log.Println("🚀 Running migrations UP...")

	if err := database.RunFullMigration(db, migrationsDir); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Println("✅ Migrations completed successfully!")
}

func showStatus(db *gorm.DB) {
	log.Println("🔍 Checking database status...")

	if err := database.Ping(); err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	log.Println("✅ Database connection: OK")

	for _, table := range database.Tables {
		if !database.TableExists(db, table) {
			log.Printf("❌ Table %-20s does not exist", table)
			continue
		}
		count, err := database.GetTableCount(db, table)
		if err != nil {
			log.Printf("⚠️  Error counting table %s: %v", table, err)
			continue
		}
		log.Printf("✅ Table %-20s exists (%d rows)", table, count)
	}
}

func runSeed(db *gorm.DB) {
	log.Println("🌱 Seeding database...")

	result, err := database.Seed(db)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
	if result.AlreadyDone {
		log.Println("✅ Demo data already present, nothing to do")
		return
	}

	log.Println("📊 Seed Summary:")
	log.Printf("   - Users: %d", len(result.Users))
	log.Printf("   - Community: %s", result.Community.Slug)
	log.Printf("   - Prompts: %d", len(result.Prompts))
	log.Printf("   - Responses: %d", result.Responses)
	log.Println("✅ Seeding completed!")
}

func runTruncate(db *gorm.DB) {
	log.Println("⚠️  WARNING: This will delete every row in every table!")

	if err := database.TruncateAllTables(db); err != nil {
		log.Fatalf("❌ Truncate failed: %v", err)
	}

	log.Println("✅ All tables truncated!")
}
