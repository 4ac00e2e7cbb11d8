package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/huckwnmo101/taskdeck/internal/stats"
	"github.com/huckwnmo101/taskdeck/internal/storage"
	"github.com/huckwnmo101/taskdeck/internal/types"
)

var (
	statsUser   string
	statsPeriod string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show completion statistics for a user",
	Long: `Display per-period and per-category completion statistics.

Example:
  taskdeck stats --user alice@example.com
  taskdeck stats --user alice@example.com --period month`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		period := types.Period(statsPeriod)
		if !period.IsValid() {
			fmt.Fprintf(os.Stderr, "Error: invalid period %q (must be day, week or month)\n", statsPeriod)
			os.Exit(1)
		}

		ctx := context.Background()
		store, err := storage.NewStorage(ctx, &storage.Config{Path: cfg.Database.Path})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		user, err := store.GetUserByEmail(ctx, statsUser)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if user == nil {
			fmt.Fprintf(os.Stderr, "Error: no user with email %s\n", statsUser)
			os.Exit(1)
		}

		tasks, err := store.ListTasks(ctx, user.ID, types.TaskFilter{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		categories, err := store.ListCategories(ctx, user.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		overview := stats.Overview(tasks, time.Now(), period)
		byCategory := stats.ByCategory(tasks, categories)

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan(fmt.Sprintf("=== Statistics for %s (%s) ===", user.Email, period)))
		fmt.Printf("%s\n", yellow("Overview:"))
		fmt.Printf("  Total:     %d\n", overview.Total)
		fmt.Printf("  Completed: %s\n", green(fmt.Sprintf("%d", overview.Completed)))
		fmt.Printf("  Rate:      %d%%\n", overview.CompletionRate)
		fmt.Println()

		fmt.Printf("%s\n", yellow("By category:"))
		if len(byCategory) == 0 {
			fmt.Printf("  %s\n", gray("No tasks"))
		}
		for _, bucket := range byCategory {
			rate := stats.CompletionRate(bucket.Completed, bucket.Total)
			fmt.Printf("  %-20s %3d total  %3d done  %3d%%\n",
				bucket.CategoryName, bucket.Total, bucket.Completed, rate)
		}
		fmt.Println()
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsUser, "user", "", "email of the user to report on")
	statsCmd.Flags().StringVar(&statsPeriod, "period", "week", "statistics period: day, week or month")
	_ = statsCmd.MarkFlagRequired("user")
}
