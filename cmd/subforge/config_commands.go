package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"subforge/internal/config"
)

func newConfigCommand(configFlag *string) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigShowCommand(configFlag))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigShowCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults are shown")
			}

			rows := [][]string{
				{"model", cfg.Model},
				{"language", cfg.Language},
				{"device", cfg.Device},
				{"compute_type", cfg.ComputeType},
				{"srt_suffix", cfg.SRTSuffix},
				{"overwrite_existing", strconv.FormatBool(cfg.OverwriteExisting)},
				{"max_concurrent_jobs", strconv.Itoa(cfg.MaxConcurrentJobs)},
				{"bind", cfg.BindAddress()},
				{"mux_subtitles", strconv.FormatBool(cfg.MuxSubtitles)},
				{"ffmpeg_path", cfg.FFmpegPath},
				{"whisper_path", cfg.WhisperPath},
				{"log_level", cfg.LogLevel},
				{"log_format", cfg.LogFormat},
				{"log_dir", cfg.LogDir},
				{"hallucination_phrases", strconv.Itoa(len(cfg.HallucinationPhrases)) + " configured"},
			}
			for _, mapping := range cfg.PathMappings {
				kind := "prefix"
				if mapping.Regex {
					kind = "regex"
				}
				rows = append(rows, []string{"mapping (" + kind + ")", mapping.Source + " -> " + mapping.Target})
			}
			for ext, codec := range cfg.SubtitleCodecMap {
				rows = append(rows, []string{"codec " + ext, codec})
			}

			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows))
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit path_mappings to match your library layout before starting subforged.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}
