package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Applies the SQL migration for the tables this service writes to
// (cart_items, reservations, reservation_activities, stripe_sessions). The
// catalog tables and the stock functions are owned by the platform and
// migrated elsewhere.
func main() {
	envFileFlag := flag.String("env-file", "", "Path to .env file")
	migrationFlag := flag.String("migration", "migrate.sql", "Path to migration file")
	flag.Parse()

	if *envFileFlag != "" {
		if err := godotenv.Load(*envFileFlag); err != nil {
			log.Fatalf("Failed to load env file %s: %v", *envFileFlag, err)
		}
	} else if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "park_ticketing"),
		getEnv("DB_SSLMODE", "disable"),
	)

	db := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	fmt.Println("Connected to database successfully")

	migrationSQL, err := os.ReadFile(*migrationFlag)
	if err != nil {
		log.Fatalf("Failed to read migration file: %v", err)
	}

	fmt.Printf("Executing migration from %s\n", *migrationFlag)
	if _, err := db.Exec(string(migrationSQL)); err != nil {
		log.Fatalf("Failed to execute migration: %v", err)
	}

	fmt.Println("Migration completed successfully")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
