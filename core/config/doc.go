// Package config provides configuration management for accounting-sync.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults live next to each field as `default:` struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: operations API settings (port, API key)
//   - Database: target connection (mysql, postgres or sqlite)
//   - Storage: S3/MinIO credentials and bucket for snapshots and report artifacts
//   - Log: Logging level and format
//   - Lock: Redis-backed singleton run guard
//   - Migration: snapshot location, report destinations and referential policy
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
