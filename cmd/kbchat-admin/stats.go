package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/beaconworks/kb-chat-api/internal/ports"
)

var statsToken string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show user statistics from the admin endpoint",
	Long:  `Fetch /admin/stats from a running service and display the user counts per role.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStats(cmd.Context(), os.Stdout)
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsToken, "token", "", "Bearer token (overrides KBCHAT_ADMIN_TOKEN)")
	rootCmd.AddCommand(statsCmd)
}

func bearerToken() string {
	if statsToken != "" {
		return statsToken
	}
	return os.Getenv("KBCHAT_ADMIN_TOKEN")
}

func runStats(ctx context.Context, w io.Writer) error {
	token := bearerToken()
	if token == "" {
		return fmt.Errorf("no bearer token: set --token or KBCHAT_ADMIN_TOKEN")
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	url := strings.TrimSuffix(getAPIURL(), "/") + "/admin/stats"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch stats: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if jsonErr := json.Unmarshal(body, &envelope); jsonErr == nil && envelope.Error.Code != "" {
			return fmt.Errorf("%s: %s", envelope.Error.Code, envelope.Error.Message)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var stats ports.UserStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return fmt.Errorf("parse stats: %w", err)
	}

	if jsonOutput {
		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
		return nil
	}

	return printStats(w, stats)
}

func printStats(w io.Writer, stats ports.UserStats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total users:\t%d\n", stats.TotalUsers)

	roles := make([]string, 0, len(stats.UsersByRole))
	for role := range stats.UsersByRole {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		fmt.Fprintf(tw, "%s:\t%d\n", role, stats.UsersByRole[role])
	}
	if stats.Timestamp != "" {
		fmt.Fprintf(tw, "Computed at:\t%s\n", stats.Timestamp)
	}
	return tw.Flush()
}
