// Package logging provides structured logging for Inventar Core.
//
// This package wraps Go's standard log/slog package so every component
// logs with the same shape: JSON in production, text during development,
// and the service/version fields on every entry.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("device issued", "device_id", 12, "personnel_no", 7)
//	logger.Error("failed to connect", "error", err)
//
// Never log DSNs, passwords or tokens.
package logging
