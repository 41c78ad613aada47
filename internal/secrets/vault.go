// internal/secrets/vault.go
//
// Vault-backed secret resolution for configuration values.
//
// Context
// -------
//   - Wraps the HashiCorp Vault Go SDK behind a small concurrency-safe client
//     with KV-v2 helpers, per-key caching, and background token renewal.
//   - Config fields may carry a reference of the form
//     `vault:<mount>/<path>#<key>`; ResolveConfig swaps each reference for the
//     stored value before validation runs, so the rest of the app only ever
//     sees plain strings.
//
// Public workflow
// ---------------
//  1. cli, err := secrets.New(ctx)            // during boot, only when refs exist.
//  2. err = secrets.ResolveConfig(ctx, cli, cfg)
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – initial token (falls back to ~/.vault-token).
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/SummitVoyage/summit-site/internal/config"
)

// refPrefix marks a config value as a Vault reference.
const refPrefix = "vault:"

// cacheTTL bounds how long a resolved value is reused.
const cacheTTL = 5 * time.Minute

// IsRef reports whether a config value is a Vault reference.
func IsRef(v string) bool { return strings.HasPrefix(v, refPrefix) }

// Client is safe for concurrent use.  Create once at startup.
type Client struct {
	api *vault.Client

	cacheMu sync.RWMutex
	cache   map[string]cached // "<path>#<key>" → value + expiry
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a Vault client and starts a background token-renewal loop
// bound to ctx.
func New(ctx context.Context) (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	c := &Client{api: apiCli, cache: make(map[string]cached)}
	go c.renewLoop(ctx)
	return c, nil
}

// GetKV fetches one key from a KV-v2 secret, with caching.
func (c *Client) GetKV(ctx context.Context, secretPath, key string) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}
	canonical := secretPath + "#" + key

	c.cacheMu.RLock()
	if cv, ok := c.cache[canonical]; ok && time.Now().Before(cv.exp) {
		c.cacheMu.RUnlock()
		return cv.val, nil
	}
	c.cacheMu.RUnlock()

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}

	c.cacheMu.Lock()
	c.cache[canonical] = cached{val: sval, exp: time.Now().Add(cacheTTL)}
	c.cacheMu.Unlock()
	return sval, nil
}

// Resolve turns a `vault:mount/path#key` reference into its stored value.
// Non-reference strings pass through untouched.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	if !IsRef(ref) {
		return ref, nil
	}
	body := strings.TrimPrefix(ref, refPrefix)
	path, key, ok := strings.Cut(body, "#")
	if !ok {
		return "", fmt.Errorf("malformed vault reference %q, want vault:<path>#<key>", ref)
	}
	return c.GetKV(ctx, path, key)
}

// ResolveConfig rewrites every secret-bearing config field in place.  A nil
// client is an error only when a reference is actually present.
func ResolveConfig(ctx context.Context, c *Client, cfg *config.Config) error {
	fields := []*string{&cfg.Database.Password, &cfg.SMTP.Password}

	for _, f := range fields {
		if !IsRef(*f) {
			continue
		}
		if c == nil {
			return fmt.Errorf("config holds vault reference %q but no vault client is available", *f)
		}
		val, err := c.Resolve(ctx, *f)
		if err != nil {
			return err
		}
		*f = val
	}
	return nil
}

// HasRefs reports whether cfg carries any vault references, so main can skip
// client construction entirely on plain setups.
func HasRefs(cfg *config.Config) bool {
	return IsRef(cfg.Database.Password) || IsRef(cfg.SMTP.Password)
}

/*──────────────────────── background token renewal ─────────────────────────*/

// renewLoop keeps the token alive.  Non-renewable tokens are probed hourly in
// case the operator rotates them out of band.
func (c *Client) renewLoop(ctx context.Context) {
	for {
		sec, err := c.api.Auth().Token().RenewSelf(0)
		if err != nil {
			zap.S().Warnw("vault token renew failed", "err", err)
			if !sleep(ctx, 30*time.Second) {
				return
			}
			continue
		}
		if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
			if !sleep(ctx, time.Hour) {
				return
			}
			continue
		}

		// Renew at half the lease to leave headroom.
		lease := time.Duration(sec.Auth.LeaseDuration) * time.Second
		if lease < time.Minute {
			lease = time.Minute
		}
		if !sleep(ctx, lease/2) {
			return
		}
	}
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

func splitMount(p string) (mount, rel string) {
	parts := strings.SplitN(p, "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}

// sleep waits d or until ctx is done; reports whether the loop should go on.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
