// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `<root>/conf/.env` dotenv file.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `SUMMIT_`, where `__` maps to “.”
     (e.g., `SUMMIT_SMTP__HOST → smtp.host`).

After merging, the tree is unmarshalled into strongly-typed structs and
enriched with the runtime root path.  Validation is a separate step
(`Validate`) because `vault:` secret references must be resolved first; main
runs Load → ResolveSecrets → Validate in that order, then the pointer is
cached for lock-free reads.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`, so
    `go run ./cmd/web` works from any sub-directory.
  • Logs go through the global sugared logger so early boot issues surface
    on the bootstrap console.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves SUMMIT_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to the bin/ executable heuristic for the production
// layout, then to cwd.
func rootDir() string {
	if r := os.Getenv("SUMMIT_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, and env overrides into a Config.  Call Validate
// after secrets are resolved, then Install to publish the pointer.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}

	// Env overrides: SUMMIT_DATABASE__BACKEND → database.backend
	if err := k.Load(env.Provider("SUMMIT_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "SUMMIT_")
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	return &cfg, nil
}

// Validate runs struct validation.  Separate from Load so `vault:` secret
// references can be resolved in between.
func (c *Config) Validate() error {
	if err := validateStruct(c); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return err
	}
	return nil
}

// Install caches the fully-resolved config for package-wide Get().
func Install(c *Config) {
	current.Store(c)
	zap.S().Infow("config loaded",
		"listen_addr", c.HTTP.ListenAddr,
		"backend", c.Database.Backend,
		"force_https", c.HTTP.ForceHTTPS,
		"root", c.Paths.Root,
	)
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// Get returns the last installed config, or nil before boot completes.
func Get() *Config { return current.Load() }
