// Package logger provides a structured logging facility based on Zap.
//
// Commands build one logger from the configuration and hand it down to every
// component; nothing logs through a global.
//
// # Context Awareness
//
// The WithRayID helper extracts the RayID from a Fiber context and attaches it to the
// log entry, so every line of an operations API request can be correlated.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Batch completed", zap.String("batch_id", id))
package logger
