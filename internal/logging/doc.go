// Package logging provides structured logging for the DeathAdder tools.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the codebase. It provides both general logging
// functions and specialized functions for USB protocol debugging.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (hex dumps, control transfers)
//   - Info: Normal operations (device opened, setting applied)
//   - Warn: Non-fatal issues (checksum mismatches on read-back)
//   - Error: Fatal issues (device not found, transfer failures)
//
// # Configuration
//
// Logging is silent by default so CLI output stays clean. Set the
// DEATHADDER_LOG_LEVEL environment variable (or call Initialize with an
// explicit level) to enable output:
//
//	DEATHADDER_LOG_LEVEL=debug deathadder-cfg color ff00ff
//
// # Specialized Logging
//
// USB traffic can be traced per transfer:
//
//	logging.LogControlTransfer("set report", 0x09, 0x0300, 0, frameBytes)
//	logging.LogRawBytes("response frame", buf)
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
