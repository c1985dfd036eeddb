// Package secrets holds sensitive configuration for the gateway, such as the
// backend service-account credential, behind an atomically reloadable store
// with helpers to keep secret values out of log output.
package secrets

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// Loader fetches secret values from a source (environment, file, remote store).
type Loader func() (map[string]string, error)

// Vault is a read-mostly secret store. Reads take no lock; Reload swaps the
// whole snapshot atomically.
type Vault struct {
	snapshot atomic.Pointer[map[string]string]
	loader   Loader
	reloadMu sync.Mutex
}

// NewVault creates a Vault populated by one initial loader call.
func NewVault(loader Loader) (*Vault, error) {
	vals, err := loader()
	if err != nil {
		return nil, fmt.Errorf("initial secret load: %w", err)
	}
	v := &Vault{loader: loader}
	v.snapshot.Store(&vals)
	return v, nil
}

// Get returns the secret for key, or an empty string when absent.
func (v *Vault) Get(key string) string {
	return (*v.snapshot.Load())[key]
}

// Keys returns the names of all stored secrets, in no particular order.
func (v *Vault) Keys() []string {
	snap := *v.snapshot.Load()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	return keys
}

// Reload fetches fresh values and swaps them in. On loader failure the
// current snapshot stays in place.
func (v *Vault) Reload() error {
	v.reloadMu.Lock()
	defer v.reloadMu.Unlock()

	vals, err := v.loader()
	if err != nil {
		return fmt.Errorf("reload secrets: %w", err)
	}
	v.snapshot.Store(&vals)
	return nil
}

// Redacted returns a loggable form of the secret for key: the first two
// characters followed by a mask. Secrets of four characters or fewer are
// fully masked; a missing key yields an empty string.
func (v *Vault) Redacted(key string) string {
	return redact(v.Get(key))
}

// RedactString masks every stored secret value appearing in s. Values
// shorter than four characters are left alone to avoid mangling ordinary
// text.
func (v *Vault) RedactString(s string) string {
	for _, val := range *v.snapshot.Load() {
		if len(val) < 4 {
			continue
		}
		s = strings.ReplaceAll(s, val, redact(val))
	}
	return s
}

func redact(val string) string {
	switch {
	case val == "":
		return ""
	case len(val) <= 4:
		return "****"
	default:
		return val[:2] + "****"
	}
}
