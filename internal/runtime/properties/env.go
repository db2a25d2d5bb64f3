package properties

import (
	"os"
	"sort"
	"strings"
)

// EnvSource exposes process environment variables as the highest-ordinal
// property tier. Dotted keys map to upper-snake variables, so
// "incoming.orders-in.connector" reads INCOMING_ORDERS_IN_CONNECTOR.
//
// Point lookups resolve any key, but enumeration is restricted to recognized
// property prefixes so snapshots never spill the whole process environment
// (PATH, HOME, credentials) into effective-property listings.
type EnvSource struct {
	lookup   func(string) (string, bool)
	environ  func() []string
	prefixes []string
}

// channelPrefixes are always enumerable; extra prefixes cover connector-wide
// keys such as "watermill-kafka.".
var channelPrefixes = []string{"incoming.", "outgoing."}

// NewEnvSource returns an EnvSource over the real process environment.
func NewEnvSource(extraPrefixes ...string) *EnvSource {
	return &EnvSource{
		lookup:   os.LookupEnv,
		environ:  os.Environ,
		prefixes: enumerablePrefixes(extraPrefixes),
	}
}

// NewEnvSourceFrom returns an EnvSource over a fixed variable map, for tests.
func NewEnvSourceFrom(vars map[string]string, extraPrefixes ...string) *EnvSource {
	return &EnvSource{
		lookup: func(key string) (string, bool) {
			v, ok := vars[key]
			return v, ok
		},
		environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		prefixes: enumerablePrefixes(extraPrefixes),
	}
}

func enumerablePrefixes(extra []string) []string {
	out := make([]string, 0, len(channelPrefixes)+len(extra))
	out = append(out, channelPrefixes...)
	for _, p := range extra {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (e *EnvSource) Name() string { return "environment" }

func (e *EnvSource) Ordinal() int { return OrdinalEnvironment }

// EnvKey translates a dotted property key into its environment variable form.
func EnvKey(key string) string {
	replaced := strings.NewReplacer(".", "_", "-", "_").Replace(key)
	return strings.ToUpper(replaced)
}

func (e *EnvSource) Value(key string) (string, bool) {
	return e.lookup(EnvKey(key))
}

func (e *EnvSource) Properties() map[string]string {
	out := make(map[string]string)
	for _, entry := range e.environ() {
		name, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		key, ok := e.recognizedKey(name)
		if !ok {
			continue
		}
		out[key] = v
	}
	return out
}

// recognizedKey maps a variable name back to a dotted property key when it
// falls under an enumerable prefix. The prefix keeps its original spelling so
// dashes inside it (e.g. "watermill-kafka.") survive the round trip.
func (e *EnvSource) recognizedKey(name string) (string, bool) {
	for _, prefix := range e.prefixes {
		envPrefix := EnvKey(prefix)
		if strings.HasPrefix(name, envPrefix) {
			return prefix + dottedKey(strings.TrimPrefix(name, envPrefix)), true
		}
	}
	return "", false
}

func (e *EnvSource) PropertyNames() []string {
	props := e.Properties()
	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// dottedKey is the reverse of EnvKey modulo dashes, which are not recoverable
// from the environment form. Lookups always go through EnvKey, so the lossy
// direction only affects name listings.
func dottedKey(envKey string) string {
	return strings.ToLower(strings.ReplaceAll(envKey, "_", "."))
}
