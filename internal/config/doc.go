// Package config loads taskdesk settings from defaults, an optional
// config.yaml and TASKDESK_* environment variables, then validates them.
package config
