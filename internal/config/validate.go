package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePathMappings(); err != nil {
		return err
	}
	if err := c.validateMux(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePathMappings() error {
	for i, mapping := range c.PathMappings {
		if strings.TrimSpace(mapping.Source) == "" {
			return fmt.Errorf("path_mappings[%d].source must be set", i)
		}
		if mapping.Regex {
			if _, err := regexp.Compile(mapping.Source); err != nil {
				return fmt.Errorf("path_mappings[%d].source is not a valid pattern: %w", i, err)
			}
		}
	}
	return nil
}

func (c *Config) validateMux() error {
	if !c.MuxSubtitles {
		return nil
	}
	if strings.TrimSpace(c.FFmpegPath) == "" {
		return errors.New("ffmpeg_path must be set when mux_subtitles is true")
	}
	return nil
}
