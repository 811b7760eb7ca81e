package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

func newHealthCommand(configFlag, serverFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the daemon is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := serverBaseURL(*configFlag, *serverFlag)
			if err != nil {
				return err
			}

			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Get(base + "/health")
			if err != nil {
				return fmt.Errorf("daemon unreachable: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("daemon returned %s", resp.Status)
			}
			var payload map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Daemon healthy at %s (status=%s)\n", base, payload["status"])
			return nil
		},
	}
}
