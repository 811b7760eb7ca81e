package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed sample_config.json
var sampleConfig string

// PathMapping rewrites an externally supplied media path into a locally
// accessible one. Mappings are evaluated in list order; the first rule that
// applies wins.
type PathMapping struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Regex  bool   `json:"regex"`
}

// Config encapsulates all configuration values for subforge.
//
// Sections by subsystem:
//   - request intake: path_mappings, host, port
//   - transcription: model, language, device, compute_type, whisper_path,
//     max_concurrent_jobs, hallucination_phrases
//   - subtitle output: srt_suffix, overwrite_existing
//   - muxing: mux_subtitles, ffmpeg_path, subtitle_codec_map
//   - logging: log_level, log_format, log_dir
type Config struct {
	PathMappings         []PathMapping     `json:"path_mappings"`
	Model                string            `json:"model"`
	Language             string            `json:"language"`
	Device               string            `json:"device"`
	ComputeType          string            `json:"compute_type"`
	OverwriteExisting    bool              `json:"overwrite_existing"`
	SRTSuffix            string            `json:"srt_suffix"`
	MaxConcurrentJobs    int               `json:"max_concurrent_jobs"`
	Host                 string            `json:"host"`
	Port                 int               `json:"port"`
	MuxSubtitles         bool              `json:"mux_subtitles"`
	FFmpegPath           string            `json:"ffmpeg_path"`
	WhisperPath          string            `json:"whisper_path"`
	SubtitleCodecMap     map[string]string `json:"subtitle_codec_map"`
	HallucinationPhrases []string          `json:"hallucination_phrases"`
	LogLevel             string            `json:"log_level"`
	LogFormat            string            `json:"log_format"`
	LogDir               string            `json:"log_dir"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/subforge/config.json")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and all values normalized. The boolean
// result reports whether a file existed at the resolved path; defaults are
// used when it does not.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		// Unmarshal merges into non-nil maps; clear the defaults so a
		// user-provided map or list replaces them entirely. normalize
		// restores the defaults when the key was absent.
		cfg.SubtitleCodecMap = nil
		cfg.HallucinationPhrases = nil
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("config.json")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// BindAddress returns the host:port pair the HTTP server listens on.
func (c *Config) BindAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
