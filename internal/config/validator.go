// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `Config.Validate` calls `validateStruct` after the merged Koanf tree is
// unmarshalled and secrets are resolved.  Any tag mismatch aborts startup,
// so the binary never runs with partial or malformed configuration.
//
// Rules in use: `required`, `hostname_port` on the listen address, `oneof`
// on the backend selector, `required_if` tying DSN/Path to their backend,
// and `email` on the admin address.
package config

import "github.com/go-playground/validator/v10"

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
