// Package config loads, normalizes, and validates the subforge service
// configuration from a JSON file. Configuration is read once at startup and
// passed by reference into the components that need it.
package config
