// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the user's config directory (~/.vernebot).
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PersonaStore: YAML persona profile, written with defaults on first use
//   - LoadEnv: .env loading for provider API keys
package file
