package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/beaconworks/kb-chat-api/internal/bootstrap"
)

var (
	apiURL     string
	jsonOutput bool
)

const defaultAPIURL = "http://localhost:8080"

var rootCmd = &cobra.Command{
	Use:   "kbchat-admin",
	Short: "Operator CLI for the kbchat service",
	Long: `kbchat-admin performs operator tasks against a running kbchat service
and its identity directory.

Environment Variables:
  KBCHAT_API_URL      Service base URL (default: http://localhost:8080)
  KBCHAT_ADMIN_TOKEN  Bearer token for /admin endpoints`,
}

func main() {
	logger := bootstrap.InitLogger()
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Service base URL (overrides KBCHAT_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// getAPIURL returns the API URL from flag, env, or default (in priority order).
func getAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	if envURL := os.Getenv("KBCHAT_API_URL"); envURL != "" {
		return envURL
	}
	return defaultAPIURL
}
