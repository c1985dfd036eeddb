package secrets

import "os"

// EnvLoader builds a Loader over a fixed set of environment variables, the
// usual source for the gateway's service-account credential. Unset or empty
// variables are omitted rather than stored as empty secrets.
func EnvLoader(names ...string) Loader {
	return func() (map[string]string, error) {
		vals := make(map[string]string, len(names))
		for _, name := range names {
			if v := os.Getenv(name); v != "" {
				vals[name] = v
			}
		}
		return vals, nil
	}
}
