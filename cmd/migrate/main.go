package main

import (
	"os"

	"ai-studio-be/internal/model"
	"ai-studio-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		color.Yellow("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(dsn, true)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Migrating %d tables (enums, tables, constraints)...", len(model.All()))

	if err := model.Migrate(db); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}

	color.Green("✅ Success: Database migration completed.")
}
