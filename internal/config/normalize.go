package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if c.MaxConcurrentJobs < 1 {
		c.MaxConcurrentJobs = 1
	}

	c.SRTSuffix = strings.TrimSpace(c.SRTSuffix)
	if c.SRTSuffix == "" {
		c.SRTSuffix = defaultSRTSuffix
	}
	if !strings.HasPrefix(c.SRTSuffix, ".") {
		c.SRTSuffix = "." + c.SRTSuffix
	}

	c.Host = strings.TrimSpace(c.Host)
	if c.Host == "" {
		c.Host = defaultHost
	}
	if c.Port < 1 || c.Port > 65535 {
		c.Port = defaultPort
	}

	c.Model = strings.TrimSpace(c.Model)
	if c.Model == "" {
		c.Model = defaultModel
	}
	c.Language = strings.TrimSpace(c.Language)
	c.Device = strings.TrimSpace(c.Device)
	if c.Device == "" {
		c.Device = defaultDevice
	}
	c.ComputeType = strings.TrimSpace(c.ComputeType)
	if c.ComputeType == "" {
		c.ComputeType = defaultComputeType
	}

	c.FFmpegPath = strings.TrimSpace(c.FFmpegPath)
	if c.FFmpegPath == "" {
		c.FFmpegPath = defaultFFmpegPath
	}
	c.WhisperPath = strings.TrimSpace(c.WhisperPath)
	if c.WhisperPath == "" {
		c.WhisperPath = defaultWhisperPath
	}

	if c.SubtitleCodecMap == nil {
		c.SubtitleCodecMap = defaultSubtitleCodecMap()
	} else {
		normalized := make(map[string]string, len(c.SubtitleCodecMap))
		for ext, codec := range c.SubtitleCodecMap {
			ext = strings.ToLower(strings.TrimSpace(ext))
			codec = strings.TrimSpace(codec)
			if ext == "" || codec == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			normalized[ext] = codec
		}
		c.SubtitleCodecMap = normalized
	}

	if c.HallucinationPhrases == nil {
		c.HallucinationPhrases = append([]string(nil), defaultHallucinationPhrases...)
	}

	c.normalizeLogging()

	if c.LogDir != "" {
		expanded, err := expandPath(c.LogDir)
		if err != nil {
			return fmt.Errorf("log_dir: %w", err)
		}
		c.LogDir = expanded
	}

	return nil
}

func (c *Config) normalizeLogging() {
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	switch c.LogFormat {
	case "", "console":
		c.LogFormat = "console"
	case "json":
	default:
		c.LogFormat = "console"
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}
