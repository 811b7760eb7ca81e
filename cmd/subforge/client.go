package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"subforge/internal/config"
)

// serverBaseURL resolves the daemon address: an explicit --server flag wins,
// otherwise the configured bind address is used with wildcard hosts rewritten
// to loopback.
func serverBaseURL(configFlag, serverFlag string) (string, error) {
	if trimmed := strings.TrimSpace(serverFlag); trimmed != "" {
		return strings.TrimRight(trimmed, "/"), nil
	}

	cfg, _, _, err := config.Load(configFlag)
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	host := cfg.Host
	if host == "0.0.0.0" || host == "::" || host == "" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(cfg.Port)), nil
}
