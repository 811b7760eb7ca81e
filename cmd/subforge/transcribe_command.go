package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"subforge/internal/server"
)

func newTranscribeCommand(configFlag, serverFlag *string) *cobra.Command {
	var itemID string
	var title string
	var downloadURL string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "transcribe <file-path>",
		Short: "Submit a media file for transcription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := serverBaseURL(*configFlag, *serverFlag)
			if err != nil {
				return err
			}

			payload := server.TranscriptionRequest{
				Title:             title,
				ItemID:            itemID,
				DownloadURL:       downloadURL,
				FilePath:          args[0],
				OverwriteExisting: overwrite,
			}
			body, err := json.Marshal(payload)
			if err != nil {
				return fmt.Errorf("encode request: %w", err)
			}

			client := &http.Client{Timeout: 30 * time.Second}
			resp, err := client.Post(base+"/transcribe", "application/json", bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("submit request: %w", err)
			}
			defer resp.Body.Close()

			out := cmd.OutOrStdout()
			if resp.StatusCode != http.StatusOK {
				data, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("daemon returned %s: %s", resp.Status, bytes.TrimSpace(data))
			}

			var result server.TranscriptionResponse
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			if result.Accepted {
				fmt.Fprintf(out, "Accepted: %s\n", result.MappedPath)
			} else {
				fmt.Fprintf(out, "Declined: %s\n", result.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&itemID, "item-id", "", "Media item identifier")
	cmd.Flags().StringVar(&title, "title", "", "Media title")
	cmd.Flags().StringVar(&downloadURL, "download-url", "", "Optional direct download URL")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing subtitle file")
	_ = cmd.MarkFlagRequired("item-id")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}
