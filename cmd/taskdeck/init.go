package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/huckwnmo101/taskdeck/internal/storage"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create the taskdeck database",
	Long: `Create the SQLite database and schema.

The path argument overrides the database path from the config file.

Example:
  taskdeck init                # Creates taskdeck.db (or the configured path)
  taskdeck init data/tasks.db  # Creates data/tasks.db`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		dbPath := cfg.Database.Path
		if len(args) > 0 {
			dbPath = args[0]
		}

		// Opening the store creates the schema
		ctx := context.Background()
		store, err := storage.NewStorage(ctx, &storage.Config{Path: dbPath})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to initialize database: %v\n", err)
			os.Exit(1)
		}
		_ = store.Close()

		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		fmt.Printf("\n%s Initialized taskdeck\n\n", green("✓"))
		fmt.Printf("  Database: %s\n", cyan(dbPath))
		fmt.Println()
	},
}
