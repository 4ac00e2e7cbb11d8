package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/huckwnmo101/taskdeck/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "taskdeck",
	Short: "Personal task and project management service",
	Long: `Taskdeck is a personal task/project management service.

Tasks are organized into projects and categories, broken into ordered
subtasks, and surfaced through a "today" view. Completing every subtask
of a task completes the task itself.

Run "taskdeck init" once to create the database, then "taskdeck serve"
to start the HTTP API.`,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "taskdeck.yml", "path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configured file, falling back to defaults when it
// does not exist
func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
