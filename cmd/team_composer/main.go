// Package main provides the team_composer CLI: compose project teams from a
// candidate pool, explore what-if alternatives and record feedback.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "team_composer",
	Short: "Compose project teams from a candidate pool",
	Long: "team_composer filters a candidate pool against the hard constraints of a project requirement, " +
		"selects a team that balances skill coverage, seniority mix, role fit and cost, and keeps the pool " +
		"snapshot so that what-if alternatives and feedback can refer back to the suggestion.",
	SilenceUsage: true,
}

var (
	configPath  string
	verbose     bool
	storageFlag string
	dbURLFlag   string
	redisFlag   string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print human-readable summaries")
	rootCmd.PersistentFlags().StringVar(&storageFlag, "storage", "", "Storage backend: memory, postgres or redis")
	rootCmd.PersistentFlags().StringVar(&dbURLFlag, "db-url", "", "Database URL (defaults to DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&redisFlag, "redis-addr", "", "Redis address (defaults to REDIS_ADDR)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
