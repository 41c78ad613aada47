// internal/config/model.go
//
// Typed configuration model for the Summit Voyage site.
//
// Context
// -------
// These structs define the shape of the tree that `loader.go` builds from
// three overlay layers:
//
//   • optional `conf/.env`                     – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `SUMMIT_`-prefixed environment overrides – highest precedence.
//
// Secret-bearing fields (database password, SMTP password) may hold a
// `vault:` reference, which secrets.ResolveConfig swaps for the real value
// before validation.  The model never stores Vault URIs past boot.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`; Koanf ignores `yaml` tags.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.
package config

import (
	"fmt"
	"strings"
)

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database selects and parameterizes the lead store backend.
//
// For the mariadb backend the DSN is a template carrying one `%s` verb where
// the password goes, so credentials stay out of YAML and git history; the
// password itself arrives via env or a `vault:` reference.  The sqlite
// backend only needs Path.
type Database struct {
	Backend  string `koanf:"backend"  validate:"required,oneof=mariadb sqlite"`
	DSN      string `koanf:"dsn"      validate:"required_if=Backend mariadb"`
	Password string `koanf:"password"`
	Path     string `koanf:"path"     validate:"required_if=Backend sqlite"`
}

// BuildDSN substitutes the password into the DSN template.  A template
// without the verb passes through unchanged, which keeps local setups with
// inline credentials working.
func (d Database) BuildDSN() string {
	if strings.Contains(d.DSN, "%s") {
		return fmt.Sprintf(d.DSN, d.Password)
	}
	return d.DSN
}

//
// SMTP section
//

// SMTP configures the transactional mailer.  All-empty, or the placeholder
// values from conf/.env.example, selects the recording dev transport.
type SMTP struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
	Admin    string `koanf:"admin" validate:"omitempty,email"`
}

//
// Analytics section
//

// Analytics configures optional request enrichment.  An empty GeoIPPath
// disables geolocation; UA parsing always runs.
type Analytics struct {
	GeoIPPath string `koanf:"geoip_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // SUMMIT_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	Database  Database  `koanf:"database"`
	SMTP      SMTP      `koanf:"smtp"`
	Analytics Analytics `koanf:"analytics"`
	Paths     Paths     `koanf:"-"`
}
