package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rentalassist-backend/internal/conversation"
)

var (
	minDelay time.Duration
	maxDelay time.Duration
	logFile  string
)

var rootCmd = &cobra.Command{
	Use:   "assistant-cli",
	Short: "Chat with the equipment rental assistant in your terminal",
	Long: `assistant-cli runs a rental assistant conversation in-process.

Type a question and press Enter. Commands:
  /s N      send suggestion N
  /up N     rate message N helpful
  /down N   rate message N unhelpful
  /regen    ask for another reply to your last message
  /help     show this list
  /quit     exit`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if maxDelay < minDelay {
			return fmt.Errorf("--max-delay (%s) must not be below --min-delay (%s)", maxDelay, minDelay)
		}
		return runChat(cmd.Context(), chatOptions{
			MinDelay: minDelay,
			MaxDelay: maxDelay,
			LogFile:  logFile,
		})
	},
}

func init() {
	rootCmd.Flags().DurationVar(&minDelay, "min-delay", conversation.MinThinkingDelay, "shortest thinking delay before a reply")
	rootCmd.Flags().DurationVar(&maxDelay, "max-delay", conversation.MaxThinkingDelay, "longest thinking delay before a reply")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write session logs to this file")

	rootCmd.AddCommand(statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
