// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package loads a .env file from the working directory on first use and
// uses the caarlos0/env library for parsing environment variables into struct
// fields. Variables already present in the environment win over the file.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/notifykit/core/config"
//
//	type StoreConfig struct {
//		DBPath         string `env:"FAILED_EMAILS_DB" envDefault:"failedEmails.json"`
//		AttachmentsDir string `env:"FAILED_EMAILS_ATTACHMENTS_DIR"`
//		From           string `env:"EMAIL_FROM" envDefault:"no-reply@example.com"`
//	}
//
//	func main() {
//		var cfg StoreConfig
//
//		// Load with error handling
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&cfg)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime:
//
//	var cfg1 StoreConfig
//	config.Load(&cfg1) // Loads from environment
//
//	var cfg2 StoreConfig
//	config.Load(&cfg2) // Returns cached value, cfg1 == cfg2
//
// Different types are cached independently:
//
//	// Each type has its own cache entry
//	config.MustLoad(&smtp.Config{})
//	config.MustLoad(&telegram.Config{})
//
// Failed loads are not cached.
package config
