package properties

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverTierPrecedence(t *testing.T) {
	defaults := NewMapSource("defaults", OrdinalDefaults, map[string]string{
		"incoming.orders-in.connector": "default-connector",
		"only.in.defaults":             "d",
	})
	overlay := NewMapSource("overlay", OrdinalOverlay, map[string]string{
		"incoming.orders-in.connector": "watermill-kafka",
	})
	app := NewMapSource("application", OrdinalApplication, map[string]string{
		"incoming.orders-in.connector": "user-choice",
	})

	r := NewResolver(defaults, overlay)

	v, ok := r.Value("incoming.orders-in.connector")
	require.True(t, ok)
	assert.Equal(t, "watermill-kafka", v, "overlay must beat defaults")

	r.Add(app)
	v, _ = r.Value("incoming.orders-in.connector")
	assert.Equal(t, "user-choice", v, "application tier must beat the overlay")

	v, ok = r.Value("only.in.defaults")
	require.True(t, ok)
	assert.Equal(t, "d", v)

	_, ok = r.Value("missing.key")
	assert.False(t, ok, "missing keys delegate, they never error")
}

func TestResolverSnapshotAndNames(t *testing.T) {
	r := NewResolver(
		NewMapSource("defaults", OrdinalDefaults, map[string]string{"a": "1", "b": "low"}),
		NewMapSource("overlay", OrdinalOverlay, map[string]string{"b": "high"}),
	)

	snap := r.Snapshot()
	assert.Equal(t, map[string]string{"a": "1", "b": "high"}, snap)
	assert.Equal(t, []string{"a", "b"}, r.Names())
}

func TestHasNonBlank(t *testing.T) {
	r := NewResolver(NewMapSource("m", OrdinalDefaults, map[string]string{
		"set":   "value",
		"blank": "",
	}))

	assert.True(t, r.HasNonBlank("set"))
	assert.False(t, r.HasNonBlank("blank"), "blank values count as unset")
	assert.False(t, r.HasNonBlank("absent"))
}

func TestEnvSource(t *testing.T) {
	env := NewEnvSourceFrom(map[string]string{
		"INCOMING_ORDERS_IN_CONNECTOR": "watermill-kafka",
		"WATERMILL_KAFKA_REGISTRY_URL": "http://localhost:9999",
	})

	v, ok := env.Value("incoming.orders-in.connector")
	require.True(t, ok)
	assert.Equal(t, "watermill-kafka", v)

	v, ok = env.Value("watermill-kafka.registry.url")
	require.True(t, ok)
	assert.Equal(t, "http://localhost:9999", v)

	_, ok = env.Value("outgoing.orders-out.connector")
	assert.False(t, ok)
}

func TestEnvSourceEnumeratesOnlyRecognizedPrefixes(t *testing.T) {
	env := NewEnvSourceFrom(map[string]string{
		"PATH":                          "/usr/bin",
		"HOME":                          "/root",
		"AWS_SECRET_ACCESS_KEY":         "hunter2",
		"INCOMING_ORDERS_IN_CONNECTOR":  "watermill-kafka",
		"OUTGOING_ORDERS_OUT_CONNECTOR": "watermill-kafka",
		"WATERMILL_KAFKA_REGISTRY_URL":  "http://localhost:9999",
	}, "watermill-kafka.")

	assert.Equal(t, map[string]string{
		"incoming.orders.in.connector":  "watermill-kafka",
		"outgoing.orders.out.connector": "watermill-kafka",
		"watermill-kafka.registry.url":  "http://localhost:9999",
	}, env.Properties(), "only channel and connector keys are enumerable")

	assert.Equal(t, []string{
		"incoming.orders.in.connector",
		"outgoing.orders.out.connector",
		"watermill-kafka.registry.url",
	}, env.PropertyNames())

	// Point lookups stay unrestricted so any property can still be
	// overridden from the environment.
	v, ok := env.Value("home")
	require.True(t, ok)
	assert.Equal(t, "/root", v)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "INCOMING_ORDERS_IN_AUTO_OFFSET_RESET", EnvKey("incoming.orders-in.auto.offset.reset"))
}

func TestParseApplicationYAML(t *testing.T) {
	src, err := ParseApplicationYAML([]byte(`
incoming:
  orders-in:
    connector: user-kafka
    auto:
      offset:
        reset: latest
watermill-kafka:
  registry:
    url: http://registry.internal:8080
devservices:
  port: 9090
`))
	require.NoError(t, err)

	props := src.Properties()
	assert.Equal(t, "user-kafka", props["incoming.orders-in.connector"])
	assert.Equal(t, "latest", props["incoming.orders-in.auto.offset.reset"])
	assert.Equal(t, "http://registry.internal:8080", props["watermill-kafka.registry.url"])
	assert.Equal(t, "9090", props["devservices.port"])
	assert.Equal(t, OrdinalApplication, src.Ordinal())
}

func TestParseApplicationYAMLRejectsGarbage(t *testing.T) {
	_, err := ParseApplicationYAML([]byte("{not yaml"))
	assert.Error(t, err)
}
