// Package logging provides structured logging for the brim tools.
//
// This package wraps zap logger with convenience functions for the logging
// patterns used throughout brim-cfg and brim-emu. It provides both general
// logging functions and specialized functions for preference and control
// endpoint events.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (message payloads, lookup misses)
//   - Info: Normal operations (connections, preference writes, sync runs)
//   - Warn: Non-fatal issues (connection drops, retries, rejected keys)
//   - Error: Fatal issues (startup failures, persistence errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Instance discovered",
//	    zap.String("name", "brim-study"),
//	    zap.String("addr", "192.168.1.30:8470"),
//	    zap.String("version", "1.4.0"),
//	)
//
// # Specialized Logging
//
// Connection logging:
//
//	logging.LogConnection(remoteAddr, "connection_accepted")
//	logging.LogConnection(remoteAddr, "websocket_upgraded")
//	logging.LogConnection(remoteAddr, "websocket_closed")
//
// Preference logging:
//
//	logging.LogPrefChange("blockPopups", true, false)
//
// Control message logging:
//
//	logging.LogControlMessage(remoteAddr, "received", "apply", payload)
//	logging.LogControlMessage(remoteAddr, "sent", "ack", payload)
//
// # Configuration
//
// Logging is silent by default so TUI output stays clean. Set BRIM_LOG_LEVEL
// (or pass --log-level to brim-emu) to enable it:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
