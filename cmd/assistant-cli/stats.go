package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"rentalassist-backend/internal/database"
	"rentalassist-backend/internal/repository"
	"rentalassist-backend/internal/services"
	"rentalassist-backend/internal/worker"
)

var (
	statsDatabaseURL string
	statsRedisURL    string
	statsDays        int
)

var statsCmd = &cobra.Command{
	Use:   "feedback-stats",
	Short: "Show helpful/unhelpful vote counts per reply category",
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsDatabaseURL == "" {
			return fmt.Errorf("--database-url or DATABASE_URL is required")
		}
		if statsDays < 1 {
			return fmt.Errorf("--days must be at least 1")
		}

		pool, err := database.NewPostgresPool(cmd.Context(), statsDatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		since := time.Now().AddDate(0, 0, -statsDays)
		rows, err := repository.NewFeedbackRepo(pool).CountByCategory(cmd.Context(), since)
		if err != nil {
			return fmt.Errorf("query feedback: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderStats(rows, statsDays))

		if statsRedisURL == "" {
			return nil
		}
		clients, err := database.NewRedisClients(cmd.Context(), statsRedisURL)
		if err != nil {
			return err
		}
		defer clients.Close()

		depths, err := clients.QueueDepths(cmd.Context(), services.FeedbackQueue, worker.DeadLetterQueue)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderBacklog(depths[services.FeedbackQueue], depths[worker.DeadLetterQueue]))
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsDatabaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")
	statsCmd.Flags().StringVar(&statsRedisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis connection string; adds the pending and dead-letter vote counts")
	statsCmd.Flags().IntVar(&statsDays, "days", 7, "look back this many days")
}

func renderStats(rows []repository.CategoryFeedback, days int) string {
	if len(rows) == 0 {
		return fmt.Sprintf("No feedback in the last %d days.", days)
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("CATEGORY", "HELPFUL", "UNHELPFUL", "HELPFUL %").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	for _, r := range rows {
		t.Row(r.Category, strconv.Itoa(r.Positive), strconv.Itoa(r.Negative), helpfulPercent(r))
	}

	return t.Render()
}

func renderBacklog(pending, dead int64) string {
	line := fmt.Sprintf("Votes waiting to be stored: %d", pending)
	if dead > 0 {
		line += lipgloss.NewStyle().Foreground(lipgloss.Color("9")).
			Render(fmt.Sprintf(" (%d dead-lettered)", dead))
	}
	return line
}

func helpfulPercent(r repository.CategoryFeedback) string {
	total := r.Positive + r.Negative
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", float64(r.Positive)*100/float64(total))
}
