package database

import (
	"fmt"
	"log"

	"memora/internal/domain/community"
	"memora/internal/domain/prompt"
	"memora/internal/domain/report"
	"memora/internal/domain/response"
	"memora/internal/domain/user"

	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&community.Community{},
		&prompt.Prompt{},
		&prompt.PollOption{},
		&prompt.PollVote{},
		&prompt.Like{},
		&response.Response{},
		&response.Upvote{},
		&report.Report{},
	}
}

// Tables lists table names in reverse dependency order, safe for truncation.
var Tables = []string{
	"reports", "upvotes", "responses", "likes", "poll_votes", "poll_options", "prompts", "communities", "users",
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// RunFullMigration applies the GORM schema, then the raw SQL files.
func RunFullMigration(db *gorm.DB, migrationsDir string) error {
	if err := AutoMigrate(db); err != nil {
		return err
	}
	log.Println("GORM schema migrated")
	if db.Dialector.Name() != "postgres" {
		log.Println("Skipping raw SQL migrations for non-postgres driver")
		return nil
	}
	return ApplyRawMigrations(db, migrationsDir)
}

func TableExists(db *gorm.DB, table string) bool {
	return db.Migrator().HasTable(table)
}

func GetTableCount(db *gorm.DB, table string) (int64, error) {
	var count int64
	err := db.Table(table).Count(&count).Error
	return count, err
}

// TruncateAllTables removes every row from every Memora table.
func TruncateAllTables(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range Tables {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("truncate %s: %w", table, err)
			}
		}
		return nil
	})
}
