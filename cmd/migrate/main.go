package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"boxplot/adapters/sqlstore"
	"boxplot/internal/config"
	"boxplot/internal/migration"
)

// migrate applies the chart store schema. The database comes from
// DATABASE_DRIVER/DATABASE_URL, or from the arguments: migrate [driver] <url>.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	driver, url := appConfig.Database.Driver, appConfig.Database.URL
	switch len(os.Args) {
	case 1:
	case 2:
		url = os.Args[1]
	case 3:
		driver, url = os.Args[1], os.Args[2]
	default:
		log.Fatal("Usage: migrate [driver] [database_url]")
	}

	log.Printf("Migrating %s database", driver)
	db, err := sqlstore.Open(context.Background(), driver, url)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	defer db.Close()

	log.Printf("Schema is at version %s", migration.NewRunner().Version())
}
